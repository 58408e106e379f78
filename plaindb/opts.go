package plaindb

import (
	"path/filepath"

	"github.com/mlandesman/sams/vcs"
)

// DBOpt configures the DB built by Open
type DBOpt interface {
	do(*database) error
}

type dbOpt func(*database) error

func (opt dbOpt) do(db *database) error {
	return opt(db)
}

// VersionControl commits every bucket save to a git repository at the DB path,
// so each change to the accounting data carries an audit trail entry naming
// the record type and client that changed, attributed to 'author'.
// If setRepo is non-nil, the opened repository is assigned to it.
func VersionControl(author vcs.Author, setRepo *vcs.Repository) DBOpt {
	return dbOpt(func(db *database) error {
		repo, err := vcs.Open(db.path, author)
		if err != nil {
			return err
		}
		if setRepo != nil {
			*setRepo = repo
		}
		if err := writeDataReadme(repo, db.path); err != nil {
			return err
		}
		db.saver = func(b *bucket) error {
			return repo.CommitFiles(func() error {
				return saveBucket(b)
			}, b.commitMessage(), b.path)
		}
		return nil
	})
}

const dataReadme = `# SAMS data directory

Accounting records for each managed association, one JSON bucket per record
type. Every change is committed to this repository, so the git log is the
bookkeeping audit trail. Do not edit these files by hand.
`

// writeDataReadme commits a README into a fresh data directory so anyone
// finding it on disk knows what the git history represents
func writeDataReadme(repo vcs.Repository, path string) error {
	readme := repo.File(filepath.Join(path, "README.md"))
	contents, err := readme.Read()
	if err != nil || len(contents) > 0 {
		return err
	}
	return readme.Write([]byte(dataReadme), "Describe the data directory")
}
