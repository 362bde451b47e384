package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// DefaultFetchTimeout bounds FetchNotes when the caller's context has no deadline.
const DefaultFetchTimeout = 60 * time.Second

// NotesRefSpec force-updates every local notes namespace from the remote.
const NotesRefSpec = "+refs/notes/*:refs/notes/*"

// ErrSSHAgentUnavailable is returned when an SSH remote is fetched without SSH_AUTH_SOCK.
var ErrSSHAgentUnavailable = errors.New("ssh remote requires a running ssh agent (SSH_AUTH_SOCK is not set)")

// FetchNotes updates all notes namespaces from remote. Remote notes are not
// fetched by a plain `git fetch`, so this is needed before collecting on a
// fresh clone. An already up-to-date remote is not an error.
func (r *Repository) FetchNotes(ctx context.Context, remoteName string) error {
	if remoteName == "" {
		remoteName = "origin"
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultFetchTimeout)
		defer cancel()
	}

	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return fmt.Errorf("looking up remote %q: %w", remoteName, err)
	}

	cfg := remote.Config()
	if len(cfg.URLs) == 0 {
		return fmt.Errorf("remote %q has no URL", remoteName)
	}
	url := cfg.URLs[0]

	if isSSHURL(url) && !isSSHAgentAvailable() {
		return fmt.Errorf("fetching notes from %q: %w", remoteName, ErrSSHAgentUnavailable)
	}

	logDebug("[git] fetching notes from remote '%s' (%s)", remoteName, url)

	err = r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteName,
		Auth:       getAuthForURL(url),
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(NotesRefSpec)},
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		logDebug("[git] notes already up to date")
		return nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("fetching notes from %q: %w", remoteName, ctxErr)
		}
		return fmt.Errorf("fetching notes from %q: %w", remoteName, err)
	}
	return nil
}

// getAuthForURL returns the appropriate authentication method for a remote URL.
// SSH URLs use SSH agent auth, HTTPS URLs use environment credentials.
func getAuthForURL(url string) transport.AuthMethod {
	if isSSHURL(url) {
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			logDebug("[git] SSH agent auth failed: %v", err)
			return nil
		}
		return auth
	}

	username := os.Getenv("GIT_USERNAME")
	password := os.Getenv("GIT_PASSWORD")
	if username == "" {
		username = os.Getenv("GITHUB_TOKEN")
		if username != "" {
			password = "" // token goes in the username slot
		}
	}

	if username != "" {
		return &http.BasicAuth{
			Username: username,
			Password: password,
		}
	}

	return nil
}

// isSSHURL detects git@ (SCP-style), ssh:// and git+ssh:// remotes.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}

func isSSHAgentAvailable() bool {
	return strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")) != ""
}
