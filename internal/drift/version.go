package drift

import (
	"fmt"
	"regexp"
	"strings"
)

var versionRegex = regexp.MustCompile(`\d+\.\d+\.\d+`)

// ExtractVersion extracts semantic version from command output
func ExtractVersion(output string) (string, error) {
	matches := versionRegex.FindString(output)
	if matches == "" {
		return "", fmt.Errorf("no version found in output")
	}
	return matches, nil
}

// versionsMatch compares an expected release tag with a reported version.
// Tags may carry a leading "v" that tools do not print.
func versionsMatch(expected, active string) bool {
	if expected == "" || expected == "latest" {
		return true
	}
	return strings.TrimPrefix(expected, "v") == strings.TrimPrefix(active, "v")
}
