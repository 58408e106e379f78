package vcs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mlandesman/sams/pipe"
	"github.com/pkg/errors"
	"gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
	"gopkg.in/src-d/go-git.v4/plumbing/object"
)

// Author identifies who records bookkeeping changes in the audit history.
// Typically the property manager configured for this installation.
type Author struct {
	Name  string
	Email string
}

// Repository is a Git repository with thread-safe file operations.
// Every write to the accounting data directory lands as a commit, so the
// bookkeeping history doubles as an audit trail.
type Repository interface {
	// CommitFiles runs 'prepFiles' with exclusive access to the files at 'paths',
	// then stages them and records an audit entry with 'message'
	CommitFiles(prepFiles func() error, message string, paths ...string) error
	// File returns a version-controlled file, capable of writing and committing in one operation
	File(path string) File
}

// Open ensures a Git repo exists at 'path' and returns its Repository.
// Commits are attributed to 'author'.
func Open(path string, author Author) (Repository, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, err
	}
	a := &auditRepo{author: author}
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: false,
	})
	if err == git.ErrRepositoryNotExists {
		repo, err = a.initAuditLog(path)
	}
	a.repo = repo
	return a, err
}

type auditRepo struct {
	repo   *git.Repository
	author Author
	mu     sync.Mutex
}

func (a *auditRepo) signature() *object.Signature {
	name := a.author.Name
	if name == "" {
		name = "SAMS"
	}
	return &object.Signature{
		Name:  name,
		Email: a.author.Email,
		When:  time.Now(),
	}
}

// initAuditLog creates the repository and adopts any records already on disk
// into the first audit entry, so pre-existing data is not left untracked.
func (a *auditRepo) initAuditLog(path string) (*git.Repository, error) {
	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, err
	}
	tree, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := tree.Status()
	if err != nil {
		return nil, err
	}
	adopted := false
	for file, stat := range status {
		// skip hidden and tmp files
		if stat.Worktree != git.Untracked || strings.HasPrefix(file, ".") || strings.HasSuffix(file, ".tmp") {
			continue
		}
		if _, err := tree.Add(file); err != nil {
			return nil, err
		}
		adopted = true
	}
	if adopted {
		_, err = tree.Commit("Adopt existing records", &git.CommitOptions{Author: a.signature()})
	}
	return repo, err
}

// CommitFiles resets the repo index, then adds & commits the files at 'paths' with the 'message'.
// Gives exclusive lock to 'prepFiles' execution. Unchanged files commit nothing.
func (a *auditRepo) CommitFiles(prepFiles func() error, message string, paths ...string) error {
	if len(paths) == 0 {
		return errors.New("No files to commit")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	var tree *git.Worktree
	var repoStatus git.Status
	return pipe.OpFuncs{
		prepFiles,
		func() error {
			tree, err = a.repo.Worktree()
			return err
		},
		func() error {
			return a.unstageAll(tree)
		},
		func() error {
			paths, err = stagePaths(tree, paths)
			return err
		},
		func() error {
			repoStatus, err = tree.Status()
			return err
		},
		func() error {
			if !anyStaged(repoStatus, paths) {
				return nil
			}
			_, err = tree.Commit(message, &git.CommitOptions{
				Author: a.signature(),
			})
			return err
		},
	}.Do()
}

func (a *auditRepo) unstageAll(tree *git.Worktree) error {
	_, headErr := a.repo.Head()
	if headErr == plumbing.ErrReferenceNotFound {
		// nothing committed yet, so nothing is staged either
		return nil
	}
	if headErr != nil {
		return headErr
	}
	return tree.Reset(&git.ResetOptions{})
}

// stagePaths adds each path to the index and returns the repo-relative paths
func stagePaths(tree *git.Worktree, paths []string) ([]string, error) {
	rootPath, err := filepath.Abs(tree.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	staged := make([]string, 0, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(rootPath, abs)
		if err != nil {
			return nil, err
		}
		if _, err := tree.Add(rel); err != nil {
			return nil, errors.Wrapf(err, "Failed to add %s to the audit index", rel)
		}
		staged = append(staged, rel)
	}
	return staged, nil
}

func anyStaged(status git.Status, paths []string) bool {
	for _, path := range paths {
		if stat, ok := status[path]; ok && stat.Staging != git.Unmodified {
			return true
		}
	}
	return false
}
