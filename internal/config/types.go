package config

import (
	"fmt"
	"regexp"
)

// Config is the tool selection before it is resolved against the registry.
type Config struct {
	// Only restricts installation to these tools, in this order.
	// Empty means every tool available on the platform.
	Only []string
	// Exclude removes tools from the selection.
	Exclude []string
	// Versions maps a tool name to a release tag. Missing or "latest"
	// means the newest release.
	Versions map[string]string
	// Token authenticates GitHub API calls.
	Token string
}

// Validate checks list sizes and version strings. Tool names are checked
// against the registry by Requests.
func (c *Config) Validate() error {
	if len(c.Only) > MaxListLength {
		return &ValidationError{
			Field:   luaFieldOnly,
			Message: fmt.Sprintf("too many entries (%d), maximum is %d", len(c.Only), MaxListLength),
		}
	}
	if len(c.Exclude) > MaxListLength {
		return &ValidationError{
			Field:   luaFieldExclude,
			Message: fmt.Sprintf("too many entries (%d), maximum is %d", len(c.Exclude), MaxListLength),
		}
	}

	for tool, version := range c.Versions {
		if err := validateVersionString(version); err != nil {
			return &ValidationError{
				Field:   fmt.Sprintf("%s.%s", luaFieldVersion, tool),
				Message: err.Error(),
			}
		}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

// versionPattern matches release tags such as 0.28.0, v0.28.0 or 1.0.0-rc.1.
var versionPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+-]*$`)

func validateVersionString(version string) error {
	if version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	if len(version) > 128 {
		return fmt.Errorf("version too long (%d chars, max 128)", len(version))
	}
	if !versionPattern.MatchString(version) {
		return fmt.Errorf("invalid version %q", version)
	}
	return nil
}
