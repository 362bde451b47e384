package notes

import (
	"context"

	"github.com/ariel-frischer/stepnotes/internal/config"
)

// Range bounds a note collection. From is exclusive and may be empty to start at
// the root commit. To is inclusive and required.
type Range struct {
	From string
	To   string
	// SkipArchived drops commits that already carry a note in the post-release
	// namespace, i.e. commits archived by an earlier "keep" run.
	SkipArchived bool
}

// Commit is one commit of a walked range. Depth is 1 for the commit at the end of
// the range and grows toward its start.
type Commit struct {
	Hash  string
	Depth int
}

// Repository is the read side of the version-control system.
type Repository interface {
	// CommitsInRange returns the commits reachable from to and not from from,
	// newest first, with their depth. An empty from walks to the root.
	CommitsInRange(ctx context.Context, from, to string) ([]Commit, error)
	// NotesFor returns the note messages attached to commit under refs/notes/<section>.
	// A commit without a note yields an empty slice and no error.
	NotesFor(ctx context.Context, commit, section string) ([]string, error)
}

// RawNote is a single note found while walking a range.
type RawNote struct {
	Depth   int
	Section string
	Count   int
	Commit  string
	Message string
}

// ObjectsWithNotes is the ordered result of a collection: every raw note, oldest
// commit first, plus the sections that were selected for the run.
type ObjectsWithNotes struct {
	sections []config.Section
	notes    []RawNote
}

// NewObjectsWithNotes builds a collection result from selected sections (in
// configured order) and notes already sorted by descending depth.
func NewObjectsWithNotes(sections []config.Section, notes []RawNote) *ObjectsWithNotes {
	return &ObjectsWithNotes{
		sections: append([]config.Section(nil), sections...),
		notes:    append([]RawNote(nil), notes...),
	}
}

// Notes returns a copy of the raw notes in collection order.
func (o *ObjectsWithNotes) Notes() []RawNote {
	return append([]RawNote(nil), o.notes...)
}

// Len returns the number of raw notes.
func (o *ObjectsWithNotes) Len() int {
	return len(o.notes)
}

// SelectedSections returns the section descriptors the collection ran with.
func (o *ObjectsWithNotes) SelectedSections() []config.Section {
	return append([]config.Section(nil), o.sections...)
}

// Sections returns the names of selected sections holding at least one note,
// in configured order.
func (o *ObjectsWithNotes) Sections() []string {
	populated := make(map[string]bool)
	for _, n := range o.notes {
		populated[n.Section] = true
	}

	var names []string
	for _, s := range o.sections {
		if populated[s.Name] {
			names = append(names, s.Name)
		}
	}
	return names
}

// Objects returns the distinct commit ids noted under section, in collection order.
func (o *ObjectsWithNotes) Objects(section string) []string {
	seen := make(map[string]bool)
	var objects []string
	for _, n := range o.notes {
		if n.Section != section || seen[n.Commit] {
			continue
		}
		seen[n.Commit] = true
		objects = append(objects, n.Commit)
	}
	return objects
}

// Aggregate deduplicates the collected notes. See Aggregate.
func (o *ObjectsWithNotes) Aggregate() *AggregatedNotes {
	return Aggregate(o)
}
