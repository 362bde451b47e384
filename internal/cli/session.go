package cli

import (
	"errors"
	"strings"

	"github.com/ariel-frischer/stepnotes/internal/config"
	clierrors "github.com/ariel-frischer/stepnotes/internal/errors"
	"github.com/ariel-frischer/stepnotes/internal/git"
	"github.com/ariel-frischer/stepnotes/internal/notes"
	"github.com/spf13/cobra"
)

// session is the repository and configuration a command works on.
type session struct {
	cfg  *config.Configuration
	repo *git.Repository
}

// openSession opens the repository selected by --repo and loads configuration
// relative to its root.
func openSession(cmd *cobra.Command) (*session, error) {
	repoPath, _ := cmd.Flags().GetString("repo")
	repo, err := git.Open(repoPath)
	if err != nil {
		return nil, clierrors.NotGitRepository(repoPath, err)
	}

	cfg, err := loadConfig(cmd, repo.Root())
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, repo: repo}, nil
}

// loadConfig loads configuration with the project files taken from dir.
func loadConfig(cmd *cobra.Command, dir string) (*config.Configuration, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ProjectConfigPath: cfgPath,
		ProjectDir:        dir,
		WarningWriter:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, clierrors.ConfigLoadFailed(err)
	}
	return cfg, nil
}

// addRangeFlags registers the flags shared by every command that collects notes.
func addRangeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("from", "", "Start of the range, exclusive (tag, branch or commit; default: root commit)")
	f.Bool("since-last-tag", false, "Start the range at the most recent tag before --to")
	f.String("to", "HEAD", "End of the range, inclusive")
	f.StringSlice("sections", nil, "Only collect these sections, comma separated (default: all configured)")
	f.Bool("skip-archived", false, "Skip commits that already carry a post-release note")
	f.Bool("fetch", false, "Fetch refs/notes/* from the configured remote first")
}

// rangeFromFlags builds the collection range and section filter from flags.
func (s *session) rangeFromFlags(cmd *cobra.Command) (notes.Range, []string, error) {
	f := cmd.Flags()
	from, _ := f.GetString("from")
	to, _ := f.GetString("to")
	sinceLastTag, _ := f.GetBool("since-last-tag")
	skipArchived, _ := f.GetBool("skip-archived")
	sections, _ := f.GetStringSlice("sections")

	if from != "" && sinceLastTag {
		return notes.Range{}, nil, clierrors.ConflictingFlags("from", "since-last-tag")
	}
	if strings.TrimSpace(to) == "" {
		return notes.Range{}, nil, clierrors.NewArgumentError("--to cannot be empty", "Omit --to to use HEAD")
	}

	if sinceLastTag {
		tag, err := s.repo.LatestTag(cmd.Context(), to)
		if err != nil {
			if errors.Is(err, git.ErrNoTag) {
				return notes.Range{}, nil, clierrors.MissingRangeStart(err)
			}
			return notes.Range{}, nil, mapRepositoryError(err)
		}
		from = tag
	}

	return notes.Range{From: from, To: to, SkipArchived: skipArchived}, trimAll(sections), nil
}

// collect optionally fetches notes, then collects the range given by flags.
func (s *session) collect(cmd *cobra.Command) (*notes.ObjectsWithNotes, error) {
	if fetch, _ := cmd.Flags().GetBool("fetch"); fetch {
		if err := s.repo.FetchNotes(cmd.Context(), s.cfg.Notes.Remote); err != nil {
			return nil, clierrors.WrapWithMessage(err, clierrors.Runtime, "fetching notes",
				"Check that the remote exists and your credentials (SSH agent, GIT_USERNAME/GIT_PASSWORD or GITHUB_TOKEN)")
		}
	}

	r, sections, err := s.rangeFromFlags(cmd)
	if err != nil {
		return nil, err
	}

	objs, err := notes.Collect(cmd.Context(), s.repo, s.cfg.Notes, r, sections...)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return objs, nil
}

// mapRepositoryError turns core and repository errors into CLI errors.
func mapRepositoryError(err error) error {
	var ice *notes.InvalidConfigError
	if errors.As(err, &ice) {
		if ice.Kind == "strategy" {
			return clierrors.UnknownStrategy(ice.Name, ice.Known, err)
		}
		return clierrors.UnknownSection(ice.Name, ice.Known, err)
	}

	var revErr *git.RevisionError
	if errors.As(err, &revErr) {
		return clierrors.InvalidRevision(revErr.Revision, err)
	}

	if errors.Is(err, notes.ErrMissingEndpoint) {
		return clierrors.Wrap(err, clierrors.Argument)
	}
	return clierrors.Wrap(err, clierrors.Runtime)
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
