package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# stepnotes configuration
# See 'stepnotes config -h' for commands

timeout: 60                           # Seconds allowed per archival step (0 = no timeout)

notes:
  remote: origin                      # Remote that refs/notes/* are pushed to
  sections:                           # Order drives changelog and archival order
    - name: changes
      label: Changes
    - name: bugfixes
      label: Bugfixes
    - name: features
      label: Features
    - name: deploy_steps
      label: Deploy steps
  after_versioned:
    strategy: keep                    # keep | remove
    section: versioning               # Post-release notes ref used by 'keep'
    changelog_message: "available on {version}"
`
}

// GetDefaults returns the default configuration values keyed by koanf path.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"timeout":      60,
		"notes.remote": "origin",
		// notes.sections: replaced as a whole when a config file sets it.
		"notes.sections": []interface{}{
			map[string]interface{}{"name": "changes", "label": "Changes"},
			map[string]interface{}{"name": "bugfixes", "label": "Bugfixes"},
			map[string]interface{}{"name": "features", "label": "Features"},
			map[string]interface{}{"name": "deploy_steps", "label": "Deploy steps"},
		},
		"notes.after_versioned.strategy":          "keep",
		"notes.after_versioned.section":           "versioning",
		"notes.after_versioned.changelog_message": "available on {version}",
	}
}
