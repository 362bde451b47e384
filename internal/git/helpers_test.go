package git

import (
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// memRepo builds commit graphs and notes namespaces in an in-memory repository.
type memRepo struct {
	t     *testing.T
	repo  *git.Repository
	tree  plumbing.Hash
	clock time.Time
}

func newMemRepo(t *testing.T) *memRepo {
	t.Helper()

	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err)

	m := &memRepo{t: t, repo: repo, clock: epoch}
	m.tree = m.storeTree(nil)
	return m
}

func (m *memRepo) signature() object.Signature {
	m.clock = m.clock.Add(time.Minute)
	return object.Signature{Name: "Test", Email: "test@example.com", When: m.clock}
}

// commit stores a commit with an empty tree and returns its hash. Each call is
// one minute later than the previous one.
func (m *memRepo) commit(msg string, parents ...plumbing.Hash) plumbing.Hash {
	m.t.Helper()

	sig := m.signature()
	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      msg,
		TreeHash:     m.tree,
		ParentHashes: parents,
	}
	obj := m.repo.Storer.NewEncodedObject()
	require.NoError(m.t, c.Encode(obj))
	h, err := m.repo.Storer.SetEncodedObject(obj)
	require.NoError(m.t, err)
	return h
}

// linear creates n commits in a chain, points master at the last one and
// returns them oldest first.
func (m *memRepo) linear(n int) []plumbing.Hash {
	m.t.Helper()

	var hashes []plumbing.Hash
	var parents []plumbing.Hash
	for i := 0; i < n; i++ {
		h := m.commit("commit", parents...)
		hashes = append(hashes, h)
		parents = []plumbing.Hash{h}
	}
	m.setBranch("master", hashes[len(hashes)-1])
	return hashes
}

func (m *memRepo) setBranch(name string, h plumbing.Hash) {
	m.t.Helper()
	require.NoError(m.t, m.repo.Storer.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), h)))
}

func (m *memRepo) lightweightTag(name string, h plumbing.Hash) {
	m.t.Helper()
	require.NoError(m.t, m.repo.Storer.SetReference(plumbing.NewHashReference(plumbing.NewTagReferenceName(name), h)))
}

func (m *memRepo) annotatedTag(name string, h plumbing.Hash) {
	m.t.Helper()
	sig := m.signature()
	_, err := m.repo.CreateTag(name, h, &git.CreateTagOptions{Tagger: &sig, Message: "release " + name})
	require.NoError(m.t, err)
}

func (m *memRepo) storeBlob(content string) plumbing.Hash {
	m.t.Helper()

	obj := m.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	require.NoError(m.t, err)
	_, err = w.Write([]byte(content))
	require.NoError(m.t, err)
	require.NoError(m.t, w.Close())

	h, err := m.repo.Storer.SetEncodedObject(obj)
	require.NoError(m.t, err)
	return h
}

func (m *memRepo) storeTree(entries []object.TreeEntry) plumbing.Hash {
	m.t.Helper()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	tree := &object.Tree{Entries: entries}
	obj := m.repo.Storer.NewEncodedObject()
	require.NoError(m.t, tree.Encode(obj))
	h, err := m.repo.Storer.SetEncodedObject(obj)
	require.NoError(m.t, err)
	return h
}

// writeNotes replaces the notes namespace with the given commit → message map.
// With fanout set, entries are stored as ab/cdef... the way git does for large
// notes trees.
func (m *memRepo) writeNotes(section string, notes map[plumbing.Hash]string, fanout bool) {
	m.t.Helper()

	var entries []object.TreeEntry
	if !fanout {
		for commit, msg := range notes {
			entries = append(entries, object.TreeEntry{Name: commit.String(), Mode: filemode.Regular, Hash: m.storeBlob(msg)})
		}
	} else {
		dirs := make(map[string][]object.TreeEntry)
		for commit, msg := range notes {
			hex := commit.String()
			dirs[hex[:2]] = append(dirs[hex[:2]], object.TreeEntry{Name: hex[2:], Mode: filemode.Regular, Hash: m.storeBlob(msg)})
		}
		for dir, files := range dirs {
			entries = append(entries, object.TreeEntry{Name: dir, Mode: filemode.Dir, Hash: m.storeTree(files)})
		}
	}

	sig := m.signature()
	c := &object.Commit{Author: sig, Committer: sig, Message: "Notes added by 'git notes add'", TreeHash: m.storeTree(entries)}
	obj := m.repo.Storer.NewEncodedObject()
	require.NoError(m.t, c.Encode(obj))
	h, err := m.repo.Storer.SetEncodedObject(obj)
	require.NoError(m.t, err)

	require.NoError(m.t, m.repo.Storer.SetReference(plumbing.NewHashReference(NotesRef(section), h)))
}

func (m *memRepo) repository() *Repository {
	return New(m.repo)
}

func hashes(commits []plumbing.Hash) []string {
	out := make([]string, len(commits))
	for i, h := range commits {
		out[i] = h.String()
	}
	return out
}
