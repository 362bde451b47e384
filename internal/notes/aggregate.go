package notes

import "github.com/ariel-frischer/stepnotes/internal/config"

// Entry is one distinct note message within a section. Commit is the commit the
// message was first seen on; Count is how many notes carried the same text.
type Entry struct {
	Commit  string
	Message string
	Count   int
}

// AggregatedNotes maps sections to their distinct messages, in configured
// section order and first-seen message order.
type AggregatedNotes struct {
	sections []config.Section
	entries  map[string][]Entry
}

// Aggregate deduplicates notes by exact message text within each section.
// Sections without entries are left out.
func Aggregate(objs *ObjectsWithNotes) *AggregatedNotes {
	agg := &AggregatedNotes{entries: make(map[string][]Entry)}

	for _, section := range objs.sections {
		entries := aggregateSection(objs.notes, section.Name)
		if len(entries) == 0 {
			continue
		}
		agg.sections = append(agg.sections, section)
		agg.entries[section.Name] = entries
	}

	return agg
}

// aggregateSection folds the notes of one section into distinct entries.
func aggregateSection(notes []RawNote, section string) []Entry {
	var entries []Entry
	index := make(map[string]int)

	for _, n := range notes {
		if n.Section != section {
			continue
		}
		count := n.Count
		if count < 1 {
			count = 1
		}
		if i, ok := index[n.Message]; ok {
			entries[i].Count += count
			continue
		}
		index[n.Message] = len(entries)
		entries = append(entries, Entry{Commit: n.Commit, Message: n.Message, Count: count})
	}

	return entries
}

// Sections returns the names of sections with entries, in configured order.
func (a *AggregatedNotes) Sections() []string {
	names := make([]string, len(a.sections))
	for i, s := range a.sections {
		names[i] = s.Name
	}
	return names
}

// Entries returns the entries of a section, or nil if it has none.
func (a *AggregatedNotes) Entries(section string) []Entry {
	return append([]Entry(nil), a.entries[section]...)
}

// IsEmpty returns true if no section has entries.
func (a *AggregatedNotes) IsEmpty() bool {
	return len(a.sections) == 0
}
