package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// testRepo is an on-disk repository with a linear history.
type testRepo struct {
	t       *testing.T
	dir     string
	repo    *gogit.Repository
	commits []plumbing.Hash // oldest first
	clock   time.Time
}

func newTestRepo(t *testing.T, n int) *testRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	tr := &testRepo{t: t, dir: dir, repo: repo, clock: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}

	wt, err := repo.Worktree()
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("file%d.txt", i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
		_, err := wt.Add(name)
		require.NoError(t, err)

		sig := tr.signature()
		h, err := wt.Commit(fmt.Sprintf("commit %d", i), &gogit.CommitOptions{Author: &sig, Committer: &sig})
		require.NoError(t, err)
		tr.commits = append(tr.commits, h)
	}
	return tr
}

func (r *testRepo) signature() object.Signature {
	r.clock = r.clock.Add(time.Minute)
	return object.Signature{Name: "Test", Email: "test@example.com", When: r.clock}
}

func (r *testRepo) tag(name string, h plumbing.Hash) {
	r.t.Helper()
	_, err := r.repo.CreateTag(name, h, nil)
	require.NoError(r.t, err)
}

// writeNotes stores a notes ref the way `git notes add` leaves it (flat tree).
func (r *testRepo) writeNotes(section string, notes map[plumbing.Hash]string) {
	r.t.Helper()
	storer := r.repo.Storer

	var entries []object.TreeEntry
	for commit, msg := range notes {
		blob := storer.NewEncodedObject()
		blob.SetType(plumbing.BlobObject)
		w, err := blob.Writer()
		require.NoError(r.t, err)
		_, err = w.Write([]byte(msg))
		require.NoError(r.t, err)
		require.NoError(r.t, w.Close())
		bh, err := storer.SetEncodedObject(blob)
		require.NoError(r.t, err)
		entries = append(entries, object.TreeEntry{Name: commit.String(), Mode: filemode.Regular, Hash: bh})
	}

	treeObj := storer.NewEncodedObject()
	require.NoError(r.t, (&object.Tree{Entries: sortEntries(entries)}).Encode(treeObj))
	th, err := storer.SetEncodedObject(treeObj)
	require.NoError(r.t, err)

	sig := r.signature()
	commitObj := storer.NewEncodedObject()
	require.NoError(r.t, (&object.Commit{Author: sig, Committer: sig, Message: "Notes added by 'git notes add'", TreeHash: th}).Encode(commitObj))
	ch, err := storer.SetEncodedObject(commitObj)
	require.NoError(r.t, err)

	require.NoError(r.t, storer.SetReference(plumbing.NewHashReference(plumbing.ReferenceName("refs/notes/"+section), ch)))
}

func (r *testRepo) writeConfig(content string) {
	r.t.Helper()
	path := filepath.Join(r.dir, ".stepnotes", "config.yml")
	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.t, os.WriteFile(path, []byte(content), 0o644))
}

func sortEntries(entries []object.TreeEntry) []object.TreeEntry {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// releaseRepo has five commits, v0.1.0 on the first, and notes on the second
// and fourth:
//
//	commits[1] changes: "first change"
//	commits[3] changes: "second change" with a nested detail line
//	commits[3] bugfixes: "fix crash on empty range"
func releaseRepo(t *testing.T) *testRepo {
	t.Helper()

	r := newTestRepo(t, 5)
	r.tag("v0.1.0", r.commits[0])
	r.writeNotes("changes", map[plumbing.Hash]string{
		r.commits[1]: "first change\n",
		r.commits[3]: "second change\n  detail\n",
	})
	r.writeNotes("bugfixes", map[plumbing.Hash]string{
		r.commits[3]: "fix crash on empty range\n",
	})
	return r
}

// executeCommand runs the root command with args and captures its output.
// rootCmd is global, so callers must not run in parallel.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	resetFlags(rootCmd)
	var outBuf, errBuf bytes.Buffer
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = Execute()
	return outBuf.String(), errBuf.String(), err
}

// resetFlags restores every flag to its default; cobra keeps parsed values
// between executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
