// Package git provides the repository side of stepnotes: commit range walks, tag
// lookup and notes reading use the go-git library, while archival steps (notes
// add/remove, push) are run through the git CLI by Runner.
package git

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Repository reads commits, tags and notes from a git repository.
// It implements notes.Repository.
type Repository struct {
	repo *git.Repository
	root string

	notesMu sync.Mutex
	notes   map[plumbing.ReferenceName]*notesIndex
}

// New wraps an already opened go-git repository (for example an in-memory one).
func New(repo *git.Repository) *Repository {
	r := &Repository{repo: repo}
	if wt, err := repo.Worktree(); err == nil {
		r.root = wt.Filesystem.Root()
	}
	return r
}

// Open opens the repository containing path. An empty path means the current
// working directory; parent directories are searched for .git.
func Open(path string) (*Repository, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	return New(repo), nil
}

// openRepo opens a git repository at the specified path or current working directory.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// up the directory tree to find the repository root.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	logDebug("[git] repository opened successfully")
	return repo, nil
}

// IsGitRepository checks if path (or the current directory) is within a git repository.
func IsGitRepository(path string) bool {
	_, err := openRepo(path)
	result := err == nil
	logDebug("[git] IsGitRepository: %v", result)
	return result
}

// Root returns the worktree root, or "" for bare and in-memory repositories.
func (r *Repository) Root() string {
	return r.root
}

// RevisionError reports a revision that does not name a commit.
type RevisionError struct {
	Revision string
	Err      error
}

func (e *RevisionError) Error() string {
	return fmt.Sprintf("resolving %q: %v", e.Revision, e.Err)
}

func (e *RevisionError) Unwrap() error {
	return e.Err
}

// resolve turns a tag, branch, or full or abbreviated commit id into a commit hash.
// Annotated tags are peeled to the commit they point at.
func (r *Repository) resolve(rev string) (plumbing.Hash, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, &RevisionError{Revision: rev, Err: err}
	}
	logDebug("[git] resolved %s to %s", rev, hash)
	return *hash, nil
}
