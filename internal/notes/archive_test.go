package notes

import (
	"context"
	"errors"
	"testing"

	"github.com/ariel-frischer/stepnotes/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioConfig(strategy string) config.Notes {
	return config.Notes{
		Remote:   "origin",
		Sections: []config.Section{{Name: "changes"}, {Name: "bugfixes"}},
		AfterVersioned: config.AfterVersioned{
			Strategy:         strategy,
			Section:          "versioning",
			ChangelogMessage: "available on {version}",
		},
	}
}

func TestStepsForArchiving(t *testing.T) {
	t.Parallel()

	sections := scenarioConfig("").Sections
	tests := map[string]struct {
		strategy string
		notes    []RawNote
		want     []string
	}{
		"remove skips empty sections": {
			strategy: StrategyRemove,
			notes: []RawNote{
				{Depth: 2, Section: "changes", Count: 1, Commit: "c1", Message: "a"},
				{Depth: 1, Section: "changes", Count: 1, Commit: "c2", Message: "b"},
			},
			want: []string{
				"git notes --ref=changes remove c1",
				"git notes --ref=changes remove c2",
				"git push origin refs/notes/changes",
			},
		},
		"remove pushes each section after its deletions": {
			strategy: StrategyRemove,
			notes: []RawNote{
				{Depth: 3, Section: "bugfixes", Count: 1, Commit: "c3", Message: "fix"},
				{Depth: 2, Section: "changes", Count: 1, Commit: "c1", Message: "a"},
				{Depth: 1, Section: "bugfixes", Count: 1, Commit: "c1", Message: "fix too"},
			},
			want: []string{
				"git notes --ref=changes remove c1",
				"git push origin refs/notes/changes",
				"git notes --ref=bugfixes remove c3",
				"git notes --ref=bugfixes remove c1",
				"git push origin refs/notes/bugfixes",
			},
		},
		"remove deletes a commit once per section": {
			strategy: StrategyRemove,
			notes: []RawNote{
				{Depth: 1, Section: "changes", Count: 1, Commit: "c1", Message: "a"},
				{Depth: 1, Section: "changes", Count: 1, Commit: "c1", Message: "b"},
			},
			want: []string{
				"git notes --ref=changes remove c1",
				"git push origin refs/notes/changes",
			},
		},
		"keep archives shared commits once": {
			strategy: StrategyKeep,
			notes: []RawNote{
				{Depth: 3, Section: "bugfixes", Count: 1, Commit: "c1", Message: "fix"},
				{Depth: 3, Section: "changes", Count: 1, Commit: "c1", Message: "a"},
				{Depth: 2, Section: "changes", Count: 1, Commit: "c2", Message: "b"},
			},
			want: []string{
				`git notes --ref=versioning add -m "available on v1.0" c1`,
				`git notes --ref=versioning add -m "available on v1.0" c2`,
				"git push origin refs/notes/versioning",
			},
		},
		"keep orders by section then collection order": {
			strategy: StrategyKeep,
			notes: []RawNote{
				{Depth: 3, Section: "bugfixes", Count: 1, Commit: "c3", Message: "fix"},
				{Depth: 1, Section: "changes", Count: 1, Commit: "c1", Message: "a"},
			},
			want: []string{
				`git notes --ref=versioning add -m "available on v1.0" c1`,
				`git notes --ref=versioning add -m "available on v1.0" c3`,
				"git push origin refs/notes/versioning",
			},
		},
		"remove with no notes": {
			strategy: StrategyRemove,
			want:     nil,
		},
		"keep with no notes": {
			strategy: StrategyKeep,
			want:     nil,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			objs := NewObjectsWithNotes(sections, tt.notes)
			got, err := NewArchiver(scenarioConfig(tt.strategy)).StepsForArchiving(objs, "v1.0")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStepsForArchiving_UnknownStrategy(t *testing.T) {
	t.Parallel()

	objs := NewObjectsWithNotes(scenarioConfig("").Sections, []RawNote{
		{Depth: 1, Section: "changes", Count: 1, Commit: "c1", Message: "a"},
	})

	steps, err := NewArchiver(scenarioConfig("squash")).StepsForArchiving(objs, "v1.0")
	require.Error(t, err)
	assert.Nil(t, steps)

	var ice *InvalidConfigError
	require.True(t, errors.As(err, &ice))
	assert.Equal(t, "strategy", ice.Kind)
	assert.Equal(t, "squash", ice.Name)
	assert.Contains(t, ice.Known, StrategyKeep)
	assert.Contains(t, ice.Known, StrategyRemove)
	assert.Contains(t, err.Error(), `"squash"`)
}

func TestArchiver_Validate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		strategy string
		wantErr  bool
	}{
		"keep":       {strategy: StrategyKeep},
		"remove":     {strategy: StrategyRemove},
		"unknown":    {strategy: "squash", wantErr: true},
		"empty name": {strategy: "", wantErr: true},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := NewArchiver(scenarioConfig(tt.strategy)).Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ice *InvalidConfigError
			require.True(t, errors.As(err, &ice))
			assert.Equal(t, "strategy", ice.Kind)
			assert.Equal(t, tt.strategy, ice.Name)
		})
	}
}

func TestStepsForArchiving_Deterministic(t *testing.T) {
	t.Parallel()

	objs, err := Collect(context.Background(), fixtureRepo(), testNotesConfig(), Range{To: "HEAD"})
	require.NoError(t, err)

	for _, strategy := range []string{StrategyRemove, StrategyKeep} {
		cfg := testNotesConfig()
		cfg.AfterVersioned.Strategy = strategy
		archiver := NewArchiver(cfg)

		first, err := archiver.StepsForArchiving(objs, "v0.1.0")
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := archiver.StepsForArchiving(objs, "v0.1.0")
			require.NoError(t, err)
			assert.Equal(t, first, again, "strategy %s", strategy)
		}
	}
}

func TestStepsForArchiving_KeepFixture(t *testing.T) {
	t.Parallel()

	objs, err := Collect(context.Background(), fixtureRepo(), testNotesConfig(), Range{To: "f4cfcc2"})
	require.NoError(t, err)

	cfg := testNotesConfig()
	cfg.Remote = "upstream"
	steps, err := NewArchiver(cfg).StepsForArchiving(objs, "v0.1.0")
	require.NoError(t, err)

	assert.Equal(t, []string{
		`git notes --ref=test_versioning add -m "available on v0.1.0" ` + commitRemoveFiles,
		`git notes --ref=test_versioning add -m "available on v0.1.0" ` + commitLoadYAML,
		`git notes --ref=test_versioning add -m "available on v0.1.0" ` + commitSortTags,
		"git push upstream refs/notes/test_versioning",
	}, steps)
}

func TestNotesAddCommand_EscapesQuotes(t *testing.T) {
	t.Parallel()

	got := NotesAddCommand("versioning", `shipped in "v1" \o/`, "c1")
	assert.Equal(t, `git notes --ref=versioning add -m "shipped in \"v1\" \\o/" c1`, got)
}

func TestNotesPushCommand_DefaultRemote(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "git push origin refs/notes/changes", NotesPushCommand("", "changes"))
}

func TestStrategyRegistry(t *testing.T) {
	t.Parallel()

	names := Strategies()
	assert.Contains(t, names, StrategyKeep)
	assert.Contains(t, names, StrategyRemove)

	fn, err := LookupStrategy(StrategyRemove)
	require.NoError(t, err)
	assert.NotNil(t, fn)

	_, err = LookupStrategy("")
	assert.True(t, IsInvalidConfig(err))
}

func TestRegisterStrategy_Custom(t *testing.T) {
	t.Parallel()

	RegisterStrategy("test-noop", func(*ObjectsWithNotes, string, config.Notes) []string {
		return []string{"true"}
	})

	steps, err := NewArchiver(scenarioConfig("test-noop")).StepsForArchiving(NewObjectsWithNotes(nil, nil), "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"true"}, steps)
}
