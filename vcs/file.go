package vcs

import (
	"io/ioutil"
	"os"
)

// File is a version-controlled file. Each write lands as one audit entry.
type File interface {
	Read() ([]byte, error)
	Write(b []byte, message string) error
}

type file struct {
	path string
	repo Repository
}

func (a *auditRepo) File(path string) File {
	return &file{
		path: path,
		repo: a,
	}
}

func (f *file) Read() ([]byte, error) {
	buf, err := ioutil.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return buf, err
}

func (f *file) Write(b []byte, message string) error {
	return f.repo.CommitFiles(func() error {
		return ioutil.WriteFile(f.path, b, 0750)
	}, message, f.path)
}
