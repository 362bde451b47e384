package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// NotesRefPrefix is where git keeps notes namespaces.
const NotesRefPrefix = "refs/notes/"

// NotesRef returns the full reference name of a notes namespace.
func NotesRef(section string) plumbing.ReferenceName {
	return plumbing.ReferenceName(NotesRefPrefix + section)
}

// notesIndex maps annotated commit ids to note blobs for one notes commit.
type notesIndex struct {
	commit plumbing.Hash
	blobs  map[string]plumbing.Hash
}

// NotesFor returns the note attached to commit in the given namespace, or nil
// when the namespace does not exist or the commit has no note there. The note
// text is returned exactly as stored.
func (r *Repository) NotesFor(ctx context.Context, commit, section string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref, err := r.repo.Reference(NotesRef(section), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", NotesRef(section), err)
	}

	hash := commit
	if !plumbing.IsHash(commit) {
		h, err := r.resolve(commit)
		if err != nil {
			return nil, err
		}
		hash = h.String()
	}

	idx, err := r.notesIndex(ref)
	if err != nil {
		return nil, fmt.Errorf("indexing notes for %s: %w", section, err)
	}

	blobHash, ok := idx.blobs[hash]
	if !ok {
		return nil, nil
	}

	blob, err := r.repo.BlobObject(blobHash)
	if err != nil {
		return nil, fmt.Errorf("loading note for %s in %s: %w", hash, section, err)
	}
	contents, err := readBlob(blob)
	if err != nil {
		return nil, fmt.Errorf("reading note for %s in %s: %w", hash, section, err)
	}
	logDebug("[git] note found for %s in %s", hash, section)
	return []string{contents}, nil
}

func readBlob(blob *object.Blob) (string, error) {
	rd, err := blob.Reader()
	if err != nil {
		return "", err
	}
	defer rd.Close()

	data, err := io.ReadAll(rd)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// notesIndex returns the index for the notes commit ref points at, building it
// on first use. A ref that moved (after a fetch, say) gets a fresh index.
func (r *Repository) notesIndex(ref *plumbing.Reference) (*notesIndex, error) {
	r.notesMu.Lock()
	defer r.notesMu.Unlock()

	if idx, ok := r.notes[ref.Name()]; ok && idx.commit == ref.Hash() {
		return idx, nil
	}

	idx, err := r.buildNotesIndex(ref.Hash())
	if err != nil {
		return nil, err
	}
	if r.notes == nil {
		r.notes = make(map[plumbing.ReferenceName]*notesIndex)
	}
	r.notes[ref.Name()] = idx
	return idx, nil
}

// buildNotesIndex walks a notes tree once. Large notes trees fan out into
// directories named after leading hex pairs (ab/cdef...), possibly over several
// levels, so the path without separators is the annotated commit id.
func (r *Repository) buildNotesIndex(notesCommit plumbing.Hash) (*notesIndex, error) {
	c, err := r.repo.CommitObject(notesCommit)
	if err != nil {
		return nil, fmt.Errorf("loading notes commit %s: %w", notesCommit, err)
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading notes tree %s: %w", c.TreeHash, err)
	}

	idx := &notesIndex{commit: notesCommit, blobs: make(map[string]plumbing.Hash)}
	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()

	for {
		name, entry, err := walker.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if !entry.Mode.IsFile() {
			continue
		}
		idx.blobs[strings.ReplaceAll(name, "/", "")] = entry.Hash
	}

	logDebug("[git] indexed %d notes in %s", len(idx.blobs), notesCommit)
	return idx, nil
}
