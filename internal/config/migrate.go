package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MigrationResult describes the outcome of a migration operation
type MigrationResult struct {
	SourcePath string
	TargetPath string
	Success    bool
	DryRun     bool
	Message    string
}

// MigrateJSONToYAML converts a JSON config file to YAML. An existing YAML file
// is never overwritten, and a dry run only reports what would happen.
// The converted document is validated before anything is written.
func MigrateJSONToYAML(jsonPath, yamlPath string, dryRun bool) (*MigrationResult, error) {
	result := &MigrationResult{
		SourcePath: jsonPath,
		TargetPath: yamlPath,
		DryRun:     dryRun,
	}

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			result.Message = fmt.Sprintf("No JSON config found at %s", jsonPath)
			return result, nil
		}
		return nil, fmt.Errorf("failed to read JSON config: %w", err)
	}

	var configData map[string]interface{}
	if err := json.Unmarshal(jsonData, &configData); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if _, err := os.Stat(yamlPath); err == nil {
		result.Message = fmt.Sprintf("YAML config already exists at %s (skipped)", yamlPath)
		return result, nil
	}

	yamlData, err := yaml.Marshal(configData)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to YAML: %w", err)
	}
	if err := ValidateYAMLSyntaxFromBytes(yamlData, yamlPath); err != nil {
		return nil, err
	}

	if dryRun {
		result.Success = true
		result.Message = fmt.Sprintf("Would migrate %s → %s", jsonPath, yamlPath)
		return result, nil
	}

	if err := os.MkdirAll(filepath.Dir(yamlPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# stepnotes configuration\n# Migrated from JSON format\n\n"
	if err := os.WriteFile(yamlPath, []byte(header+string(yamlData)), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write YAML config: %w", err)
	}

	result.Success = true
	result.Message = fmt.Sprintf("Migrated %s → %s", jsonPath, yamlPath)
	return result, nil
}

// MigrateProjectConfig converts <dir>/.stepnotes/config.json to config.yml.
func MigrateProjectConfig(dir string, dryRun bool) (*MigrationResult, error) {
	return MigrateJSONToYAML(
		filepath.Join(dir, ProjectJSONConfigPath()),
		filepath.Join(dir, ProjectConfigPath()),
		dryRun,
	)
}

// BackupLegacyConfig renames a migrated JSON config to <name>.bak so the YAML
// file is the only one loaded afterwards.
func BackupLegacyConfig(jsonPath string, dryRun bool) error {
	if dryRun {
		return nil
	}
	if _, err := os.Stat(jsonPath); os.IsNotExist(err) {
		return nil
	}
	if err := os.Rename(jsonPath, jsonPath+".bak"); err != nil {
		return fmt.Errorf("failed to backup legacy config: %w", err)
	}
	return nil
}

// WriteProjectTemplate writes the commented default configuration to
// <dir>/.stepnotes/config.yml. It refuses to overwrite unless force is set.
func WriteProjectTemplate(dir string, force bool) (string, error) {
	path := filepath.Join(dir, ProjectConfigPath())
	if fileExists(path) && !force {
		return path, fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GetDefaultConfigTemplate()), 0o644); err != nil {
		return path, fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
