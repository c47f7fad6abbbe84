package shell

import (
	"fmt"
	"slices"
	"strings"
)

// ShellType is a shell an activation snippet can be rendered for.
type ShellType string

const (
	ShellBash    ShellType = "bash"
	ShellZsh     ShellType = "zsh"
	ShellFish    ShellType = "fish"
	ShellUnknown ShellType = "unknown"
)

// supportedShells is the order shells are listed in errors.
var supportedShells = []ShellType{ShellBash, ShellZsh, ShellFish}

func (s ShellType) String() string {
	return string(s)
}

// IsValid reports whether Script can render for s.
func (s ShellType) IsValid() bool {
	return slices.Contains(supportedShells, s)
}

// ParseShellType parses a --shell value, ignoring case and surrounding
// space.
func ParseShellType(name string) (ShellType, error) {
	s := ShellType(strings.ToLower(strings.TrimSpace(name)))
	if err := ValidateShell(s); err != nil {
		return ShellUnknown, &UnsupportedShellError{Shell: name}
	}
	return s, nil
}

// DetectionSource says where DetectShell found the shell.
type DetectionSource string

const (
	SourceShellEnv      DetectionSource = "$SHELL"
	SourceParentProcess DetectionSource = "parent process"
	SourceNone          DetectionSource = "none"
)

// DetectionResult is the outcome of DetectShell. Path is the $SHELL value
// or the parent process name the shell was read from.
type DetectionResult struct {
	Shell  ShellType
	Source DetectionSource
	Path   string
}

// Detected reports whether a supported shell was found.
func (r *DetectionResult) Detected() bool {
	return r != nil && r.Shell.IsValid()
}

// UnsupportedShellError is returned for shells Script cannot render for.
type UnsupportedShellError struct {
	Shell string
}

func (e *UnsupportedShellError) Error() string {
	names := make([]string, len(supportedShells))
	for i, s := range supportedShells {
		names[i] = s.String()
	}
	return fmt.Sprintf("unsupported shell %q (supported: %s)", e.Shell, strings.Join(names, ", "))
}
