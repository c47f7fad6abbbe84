package shell

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// DetectShell reads $SHELL, then the parent process name. A result that
// found nothing has Shell set to ShellUnknown.
func DetectShell() *DetectionResult {
	return detectShell(os.Getenv, parentProcessName)
}

func detectShell(getenv func(string) string, parentName func() string) *DetectionResult {
	if path := getenv("SHELL"); path != "" {
		if shellType := parseShellFromPath(path); shellType.IsValid() {
			return &DetectionResult{Shell: shellType, Source: SourceShellEnv, Path: path}
		}
	}

	if name := parentName(); name != "" {
		if shellType := parseShellFromPath(name); shellType.IsValid() {
			return &DetectionResult{Shell: shellType, Source: SourceParentProcess, Path: name}
		}
	}

	return &DetectionResult{Shell: ShellUnknown, Source: SourceNone}
}

// parseShellFromPath extracts the shell type from a shell binary path
// Examples:
//   - /bin/bash -> bash
//   - /usr/bin/zsh -> zsh
//   - -zsh (login shell) -> zsh
func parseShellFromPath(shellPath string) ShellType {
	baseName := strings.ToLower(filepath.Base(shellPath))
	baseName = strings.TrimPrefix(baseName, "-")

	switch baseName {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	case "fish":
		return ShellFish
	default:
		return ShellUnknown
	}
}

// parentProcessName returns the name of the parent process, or "" when it
// cannot be determined.
func parentProcessName() string {
	proc, err := process.NewProcess(int32(os.Getppid()))
	if err != nil {
		return ""
	}
	name, err := proc.Name()
	if err != nil {
		return ""
	}
	return name
}

// ValidateShell validates that a shell type is supported
func ValidateShell(shell ShellType) error {
	if !shell.IsValid() {
		return &UnsupportedShellError{Shell: shell.String()}
	}
	return nil
}
