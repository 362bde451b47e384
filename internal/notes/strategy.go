package notes

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ariel-frischer/stepnotes/internal/config"
)

// Built-in archival strategy names.
const (
	StrategyRemove = "remove"
	StrategyKeep   = "keep"
)

// versionPlaceholder in after_versioned.changelog_message is replaced with the tag.
const versionPlaceholder = "{version}"

// StrategyFunc computes the git commands that finalize notes for a release tag.
// It must not execute anything and must be deterministic for equal inputs.
type StrategyFunc func(objs *ObjectsWithNotes, tag string, cfg config.Notes) []string

var (
	strategiesMu sync.RWMutex
	strategies   = make(map[string]StrategyFunc)
)

func init() {
	RegisterStrategy(StrategyRemove, removeNotes)
	RegisterStrategy(StrategyKeep, keepNotes)
}

// RegisterStrategy registers fn under name, replacing any previous registration.
func RegisterStrategy(name string, fn StrategyFunc) {
	strategiesMu.Lock()
	defer strategiesMu.Unlock()

	strategies[name] = fn
}

// LookupStrategy returns the strategy registered under name, or an
// InvalidConfigError listing the registered names.
func LookupStrategy(name string) (StrategyFunc, error) {
	strategiesMu.RLock()
	fn, ok := strategies[name]
	strategiesMu.RUnlock()

	if !ok {
		return nil, &InvalidConfigError{Kind: "strategy", Name: name, Known: Strategies()}
	}
	return fn, nil
}

// Strategies returns the registered strategy names, sorted.
func Strategies() []string {
	strategiesMu.RLock()
	defer strategiesMu.RUnlock()

	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// removeNotes deletes every collected note and pushes each touched notes ref.
func removeNotes(objs *ObjectsWithNotes, _ string, cfg config.Notes) []string {
	var commands []string
	for _, section := range objs.Sections() {
		objects := objs.Objects(section)
		for _, object := range objects {
			commands = append(commands, NotesRemoveCommand(section, object))
		}
		if len(objects) > 0 {
			commands = append(commands, NotesPushCommand(cfg.Remote, section))
		}
	}
	return commands
}

// keepNotes marks every noted commit once in the post-release namespace and
// pushes that namespace.
func keepNotes(objs *ObjectsWithNotes, tag string, cfg config.Notes) []string {
	ns := cfg.AfterVersioned.Section
	message := strings.ReplaceAll(cfg.AfterVersioned.ChangelogMessage, versionPlaceholder, tag)

	var commands []string
	seen := make(map[string]bool)
	for _, section := range objs.Sections() {
		for _, object := range objs.Objects(section) {
			if seen[object] {
				continue
			}
			seen[object] = true
			commands = append(commands, NotesAddCommand(ns, message, object))
		}
	}
	if len(seen) > 0 {
		commands = append(commands, NotesPushCommand(cfg.Remote, ns))
	}
	return commands
}

// NotesRemoveCommand deletes the note on object under refs/notes/<ref>.
func NotesRemoveCommand(ref, object string) string {
	return fmt.Sprintf("git notes --ref=%s remove %s", ref, object)
}

// NotesAddCommand attaches message to object under refs/notes/<ref>.
func NotesAddCommand(ref, message, object string) string {
	return fmt.Sprintf("git notes --ref=%s add -m \"%s\" %s", ref, quoteEscaper.Replace(message), object)
}

// NotesPushCommand publishes refs/notes/<ref> to remote.
func NotesPushCommand(remote, ref string) string {
	if remote == "" {
		remote = "origin"
	}
	return fmt.Sprintf("git push %s refs/notes/%s", remote, ref)
}

// quoteEscaper keeps a message a single double-quoted argument.
var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
