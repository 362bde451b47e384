package notes

import "github.com/ariel-frischer/stepnotes/internal/config"

// Archiver produces the steps that finalize notes for a release using the
// strategy named in configuration.
type Archiver struct {
	cfg config.Notes
}

// NewArchiver creates an Archiver for the given notes configuration.
func NewArchiver(cfg config.Notes) *Archiver {
	return &Archiver{cfg: cfg}
}

// Strategy returns the configured strategy name.
func (a *Archiver) Strategy() string {
	return a.cfg.AfterVersioned.Strategy
}

// Validate checks that the configured strategy is registered. Callers use it
// to reject a bad configuration before querying the repository.
func (a *Archiver) Validate() error {
	_, err := LookupStrategy(a.cfg.AfterVersioned.Strategy)
	return err
}

// StepsForArchiving returns the ordered git commands for tag. The caller runs them
// in order and must stop at the first failure. An unregistered strategy fails
// with an InvalidConfigError and no commands.
func (a *Archiver) StepsForArchiving(objs *ObjectsWithNotes, tag string) ([]string, error) {
	strategy, err := LookupStrategy(a.cfg.AfterVersioned.Strategy)
	if err != nil {
		return nil, err
	}
	return strategy(objs, tag, a.cfg), nil
}
