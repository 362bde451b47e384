package notes

import (
	"context"

	"github.com/ariel-frischer/stepnotes/internal/config"
)

const (
	commitRemoveFiles = "8299243c7dac8f27c3572424a348a7f83ef0ce28"
	commitSortTags    = "d7b0fa26ca547b963569d7a82afd7d7ca11b71ae"
	commitLoadYAML    = "2fb8a3281fb6777405aadcd699adb852b615a3e4"

	msgRemoveFiles = "removing files from gemspec\n  .gitignore\n  lastversion.gemspec\n"
	msgSortTags    = "sorting tags according to the mask parser\n"
	msgLoadYAML    = "loading default configuration yaml\n\nloading external configuration yaml\n"
)

// fakeRepo serves a fixed commit list and notes keyed by section then commit.
type fakeRepo struct {
	commits  []Commit
	notes    map[string]map[string][]string
	rangeErr error
	notesErr error

	rangeCalls int
	notesCalls int
	gotFrom    string
	gotTo      string
}

func (f *fakeRepo) CommitsInRange(_ context.Context, from, to string) ([]Commit, error) {
	f.rangeCalls++
	f.gotFrom, f.gotTo = from, to
	if f.rangeErr != nil {
		return nil, f.rangeErr
	}
	return f.commits, nil
}

func (f *fakeRepo) NotesFor(_ context.Context, commit, section string) ([]string, error) {
	f.notesCalls++
	if f.notesErr != nil {
		return nil, f.notesErr
	}
	return f.notes[section][commit], nil
}

// fixtureRepo mirrors a history of five commits where three carry notes.
func fixtureRepo() *fakeRepo {
	return &fakeRepo{
		commits: []Commit{
			{Hash: commitLoadYAML, Depth: 1},
			{Hash: commitSortTags, Depth: 2},
			{Hash: "f4cfcc2d0000000000000000000000000000003a", Depth: 3},
			{Hash: "f4cfcc2d0000000000000000000000000000004b", Depth: 4},
			{Hash: commitRemoveFiles, Depth: 5},
		},
		notes: map[string]map[string][]string{
			"test_changes": {
				commitRemoveFiles: {msgRemoveFiles},
				commitLoadYAML:    {msgLoadYAML},
			},
			"test_bugfixes": {
				commitSortTags: {msgSortTags},
			},
		},
	}
}

func testNotesConfig() config.Notes {
	return config.Notes{
		Remote: "origin",
		Sections: []config.Section{
			{Name: "test_changes"},
			{Name: "test_bugfixes"},
			{Name: "test_features"},
		},
		AfterVersioned: config.AfterVersioned{
			Strategy:         StrategyKeep,
			Section:          "test_versioning",
			ChangelogMessage: "available on {version}",
		},
	}
}
