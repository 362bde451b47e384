// Package config provides hierarchical configuration management for stepnotes using koanf.
// Configuration is loaded with priority: environment variables > project config (.stepnotes/config.yml)
// > user config (~/.config/stepnotes/config.yml) > defaults. Project configuration may also be
// written as JSON (.stepnotes/config.json).
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the prefix for environment overrides. Nested keys use a double
// underscore: STEPNOTES_NOTES__REMOTE -> notes.remote.
const envPrefix = "STEPNOTES_"

// Configuration represents the stepnotes configuration
type Configuration struct {
	// Timeout bounds each archival step in seconds. 0 disables the timeout.
	Timeout int `koanf:"timeout" yaml:"timeout" validate:"min=0"`

	// Notes holds the section layout and the post-release policy.
	Notes Notes `koanf:"notes" yaml:"notes"`
}

// Notes configures which git notes refs are read and how they are archived.
type Notes struct {
	// Remote is the remote that notes refs are pushed to after archival.
	Remote string `koanf:"remote" yaml:"remote" validate:"required"`

	// Sections is the ordered list of notes refs. The order drives both the
	// changelog layout and the order archival commands are emitted in.
	Sections []Section `koanf:"sections" yaml:"sections" validate:"required,min=1,dive"`

	// AfterVersioned describes what happens to notes once a release is tagged.
	AfterVersioned AfterVersioned `koanf:"after_versioned" yaml:"after_versioned"`
}

// Section is one notes category, stored under refs/notes/<Name>.
type Section struct {
	Name  string `koanf:"name" yaml:"name" validate:"required"`
	Label string `koanf:"label" yaml:"label,omitempty"`
}

// AfterVersioned selects the archival strategy and, for "keep", the namespace
// and message template used to mark archived commits.
type AfterVersioned struct {
	Strategy string `koanf:"strategy" yaml:"strategy" validate:"required"`
	// Section is the post-release notes ref used by the keep strategy.
	Section string `koanf:"section" yaml:"section"`
	// ChangelogMessage is the note text written by the keep strategy.
	// Every {version} is replaced with the release tag.
	ChangelogMessage string `koanf:"changelog_message" yaml:"changelog_message"`
}

// Title returns the human readable section heading, without the trailing colon.
// A configured label wins; otherwise the name is humanized (test_changes -> Test changes).
func (s Section) Title() string {
	if label := strings.TrimSuffix(strings.TrimSpace(s.Label), ":"); label != "" {
		return label
	}
	return capitalizeFirst(strings.ReplaceAll(s.Name, "_", " "))
}

// SectionNames returns the configured section names in order.
func (n Notes) SectionNames() []string {
	names := make([]string, len(n.Sections))
	for i, s := range n.Sections {
		names[i] = s.Name
	}
	return names
}

// Section looks up a configured section by name.
func (n Notes) Section(name string) (Section, bool) {
	for _, s := range n.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .stepnotes/config.yml)
	ProjectConfigPath string
	// ProjectDir is the directory the default project config paths are relative to
	// (default: current directory). The CLI passes the repository root.
	ProjectDir string
	// UserConfigPath overrides the user config path (default: XDG config dir)
	UserConfigPath string
	// SkipUserConfig ignores the user-level config file entirely
	SkipUserConfig bool
	// WarningWriter receives warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses warnings
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)

	loadDefaults(k)

	if !opts.SkipUserConfig {
		if err := loadUserConfig(k, opts.UserConfigPath); err != nil {
			return nil, err
		}
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath, opts.ProjectDir, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level YAML config if it exists.
func loadUserConfig(k *koanf.Koanf, customPath string) error {
	path := customPath
	if path == "" {
		path, _ = UserConfigPath()
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadConfigFile(k, path, "user"); err != nil {
		return fmt.Errorf("loading user config: %w", err)
	}
	return nil
}

// loadProjectConfig loads project-level config. YAML is preferred; a JSON file
// next to it is used only when no YAML file exists.
func loadProjectConfig(k *koanf.Koanf, customPath, projectDir string, warningWriter io.Writer, skipWarnings bool) error {
	if customPath != "" {
		if !fileExists(customPath) {
			return fmt.Errorf("config file %s does not exist", customPath)
		}
		if err := loadConfigFile(k, customPath, "project"); err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		return nil
	}

	yamlPath := filepath.Join(projectDir, ProjectConfigPath())
	jsonPath := filepath.Join(projectDir, ProjectJSONConfigPath())
	yamlExists := fileExists(yamlPath)
	jsonExists := fileExists(jsonPath)

	switch {
	case yamlExists:
		if err := loadConfigFile(k, yamlPath, "project"); err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		if jsonExists && !skipWarnings {
			fmt.Fprintf(warningWriter, "Warning: %s ignored, using %s\n\n", jsonPath, yamlPath)
		}
	case jsonExists:
		if err := loadConfigFile(k, jsonPath, "project"); err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
	}
	return nil
}

// loadConfigFile picks a parser from the file extension and loads the file.
// YAML files are syntax-checked first so errors carry line numbers.
func loadConfigFile(k *koanf.Koanf, path, configType string) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
		}
		return nil
	}

	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals and validates the merged configuration
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: STEPNOTES_NOTES__AFTER_VERSIONED__STRATEGY -> notes.after_versioned.strategy
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// capitalizeFirst capitalizes the first letter of a string.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
