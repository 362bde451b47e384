package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// versionPlaceholder is substituted with the release tag by the keep strategy.
const versionPlaceholder = "{version}"

// ValidationError points at the file, and where known the line or config key,
// that made a configuration unusable.
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Field    string // dotted koanf key, e.g. notes.sections[1].name
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	}
}

// ValidateYAMLSyntax checks that the file at path parses as YAML. A missing
// file is not an error.
func ValidateYAMLSyntax(path string) error {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return nil
	case os.IsPermission(err):
		return &ValidationError{FilePath: path, Message: "permission denied"}
	case err != nil:
		return &ValidationError{FilePath: path, Message: err.Error()}
	}
	return ValidateYAMLSyntaxFromBytes(data, path)
}

// ValidateYAMLSyntaxFromBytes checks that data parses as YAML. Blank input is valid.
func ValidateYAMLSyntaxFromBytes(data []byte, path string) error {
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	var node yaml.Node
	err := yaml.Unmarshal(data, &node)
	if err == nil {
		return nil
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{FilePath: path, Message: strings.Join(typeErr.Errors, "; ")}
	}
	return yamlSyntaxError(path, err)
}

// yamlPosition matches the position yaml.v3 puts in its messages:
// "yaml: line 5: column 3: ..." or "yaml: line 5: ...".
var yamlPosition = regexp.MustCompile(`^yaml: line (\d+):(?: column (\d+):)? `)

func yamlSyntaxError(path string, err error) *ValidationError {
	msg := err.Error()
	m := yamlPosition.FindStringSubmatch(msg)
	if m == nil {
		return &ValidationError{FilePath: path, Message: strings.TrimPrefix(msg, "yaml: ")}
	}

	line, _ := strconv.Atoi(m[1])
	column := 1
	if m[2] != "" {
		column, _ = strconv.Atoi(m[2])
	}
	return &ValidationError{
		FilePath: path,
		Line:     line,
		Column:   column,
		Message:  msg[len(m[0]):],
	}
}

// structValidator reports fields by their koanf key so errors name the key the
// user wrote.
var structValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// ValidateConfigValues checks struct constraints, then the rules that span
// several fields. The first problem found is returned.
func ValidateConfigValues(cfg *Configuration, path string) error {
	if err := structValidator.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return &ValidationError{FilePath: path, Message: err.Error()}
		}
		fe := fieldErrs[0]
		return &ValidationError{FilePath: path, Field: koanfKey(fe), Message: describeTag(fe)}
	}

	for _, check := range []func(*Configuration) (field, msg string){
		duplicateSection,
		keepSection,
		keepPlaceholder,
	} {
		if field, msg := check(cfg); msg != "" {
			return &ValidationError{FilePath: path, Field: field, Message: msg}
		}
	}
	return nil
}

// koanfKey drops the root type from the validator namespace
// (Configuration.notes.sections[0].name -> notes.sections[0].name).
func koanfKey(fe validator.FieldError) string {
	_, key, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return key
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return "failed validation: " + fe.Tag()
}

func duplicateSection(cfg *Configuration) (string, string) {
	seen := make(map[string]struct{}, len(cfg.Notes.Sections))
	for i, s := range cfg.Notes.Sections {
		if _, dup := seen[s.Name]; dup {
			return fmt.Sprintf("notes.sections[%d].name", i), fmt.Sprintf("duplicate section %q", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return "", ""
}

// The strategy name itself is resolved against the registry at archival time;
// only keep has fields of its own.
func keepSection(cfg *Configuration) (string, string) {
	av := cfg.Notes.AfterVersioned
	if av.Strategy == "keep" && strings.TrimSpace(av.Section) == "" {
		return "notes.after_versioned.section", "is required for the keep strategy"
	}
	return "", ""
}

func keepPlaceholder(cfg *Configuration) (string, string) {
	av := cfg.Notes.AfterVersioned
	if av.Strategy == "keep" && !strings.Contains(av.ChangelogMessage, versionPlaceholder) {
		return "notes.after_versioned.changelog_message", "must contain " + versionPlaceholder + " placeholder"
	}
	return "", ""
}
