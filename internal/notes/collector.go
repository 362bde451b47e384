package notes

import (
	"context"
	"fmt"
	"sort"

	"github.com/ariel-frischer/stepnotes/internal/config"
)

// Collector walks a commit range and gathers notes from the configured sections.
type Collector struct {
	repo Repository
	cfg  config.Notes
}

// NewCollector creates a Collector reading from repo with the given notes configuration.
func NewCollector(repo Repository, cfg config.Notes) *Collector {
	return &Collector{repo: repo, cfg: cfg}
}

// Collect is a convenience wrapper around NewCollector(repo, cfg).Collect.
func Collect(ctx context.Context, repo Repository, cfg config.Notes, r Range, sections ...string) (*ObjectsWithNotes, error) {
	return NewCollector(repo, cfg).Collect(ctx, r, sections...)
}

// Collect returns every note attached to commits in r, oldest commit first.
//
// sections restricts collection to a subset of the configured sections; an empty
// list selects all of them. Any name missing from configuration fails with an
// InvalidConfigError before the repository is queried. A repository error aborts
// the whole collection.
func (c *Collector) Collect(ctx context.Context, r Range, sections ...string) (*ObjectsWithNotes, error) {
	if r.To == "" {
		return nil, ErrMissingEndpoint
	}

	selected, err := c.selectSections(sections)
	if err != nil {
		return nil, err
	}

	commits, err := c.repo.CommitsInRange(ctx, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("listing commits in range: %w", err)
	}

	var records []RawNote
	for _, commit := range commits {
		if r.SkipArchived {
			archived, err := c.isArchived(ctx, commit.Hash)
			if err != nil {
				return nil, err
			}
			if archived {
				continue
			}
		}

		found, err := c.notesForCommit(ctx, commit, selected)
		if err != nil {
			return nil, err
		}
		records = append(records, found...)
	}

	// Stable: equal depths keep section order, then message order.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Depth > records[j].Depth
	})

	return &ObjectsWithNotes{sections: selected, notes: records}, nil
}

// notesForCommit reads one commit's notes from every selected section.
func (c *Collector) notesForCommit(ctx context.Context, commit Commit, selected []config.Section) ([]RawNote, error) {
	var records []RawNote
	for _, section := range selected {
		messages, err := c.repo.NotesFor(ctx, commit.Hash, section.Name)
		if err != nil {
			return nil, fmt.Errorf("reading %s notes for %s: %w", section.Name, commit.Hash, err)
		}
		for _, message := range messages {
			records = append(records, RawNote{
				Depth:   commit.Depth,
				Section: section.Name,
				Count:   1,
				Commit:  commit.Hash,
				Message: message,
			})
		}
	}
	return records, nil
}

// selectSections resolves a section filter into configured descriptors, keeping
// configuration order.
func (c *Collector) selectSections(filter []string) ([]config.Section, error) {
	if len(filter) == 0 {
		return append([]config.Section(nil), c.cfg.Sections...), nil
	}

	wanted := make(map[string]bool, len(filter))
	for _, name := range filter {
		if _, ok := c.cfg.Section(name); !ok {
			return nil, &InvalidConfigError{Kind: "section", Name: name, Known: c.cfg.SectionNames()}
		}
		wanted[name] = true
	}

	var selected []config.Section
	for _, s := range c.cfg.Sections {
		if wanted[s.Name] {
			selected = append(selected, s)
		}
	}
	return selected, nil
}

// isArchived reports whether commit already has a post-release note.
func (c *Collector) isArchived(ctx context.Context, commit string) (bool, error) {
	ns := c.cfg.AfterVersioned.Section
	if ns == "" {
		return false, nil
	}
	messages, err := c.repo.NotesFor(ctx, commit, ns)
	if err != nil {
		return false, fmt.Errorf("reading %s notes for %s: %w", ns, commit, err)
	}
	return len(messages) > 0, nil
}
