package config

import (
	"regexp"
	"strings"
)

// A config file has no place for credentials: the token comes from
// --token, INPUT_TOKEN or GITHUB_TOKEN. These patterns catch the ones
// that end up in a committed carvel-setup.lua anyway.
var (
	classicTokenPattern     = regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}`)
	fineGrainedTokenPattern = regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{22,}`)
	tokenAssignmentPattern  = regexp.MustCompile(`(?i)(\b[a-z_]*token\b|\[\s*['"][a-z_]*token['"]\s*\])\s*=\s*['"][^'"]{8,}['"]`)
)

// SecretKind names what DetectSecrets found.
type SecretKind string

const (
	SecretGitHubToken      SecretKind = "GitHub token"
	SecretFineGrainedToken SecretKind = "GitHub fine-grained token"
	SecretTokenAssignment  SecretKind = "token assignment"
)

var secretPatterns = []struct {
	kind    SecretKind
	pattern *regexp.Regexp
}{
	{SecretGitHubToken, classicTokenPattern},
	{SecretFineGrainedToken, fineGrainedTokenPattern},
	{SecretTokenAssignment, tokenAssignmentPattern},
}

// SecretFinding is one line of a config file that looks like it holds a
// credential. Preview never contains the credential itself.
type SecretFinding struct {
	Kind    SecretKind
	Line    int
	Preview string
}

// Message is the warning logged for the finding.
func (f SecretFinding) Message() string {
	return string(f.Kind) + " found in config file; pass it with --token or GITHUB_TOKEN instead"
}

// DetectSecrets scans config content. Each line is reported at most once,
// under the most specific kind that matches.
func DetectSecrets(content string) []SecretFinding {
	var findings []SecretFinding
	for i, line := range strings.Split(content, "\n") {
		for _, p := range secretPatterns {
			if p.pattern.MatchString(line) {
				findings = append(findings, SecretFinding{
					Kind:    p.kind,
					Line:    i + 1,
					Preview: redactSecrets(line),
				})
				break
			}
		}
	}
	return findings
}

// redactSecrets keeps the shape of line and drops every credential in it.
func redactSecrets(line string) string {
	line = strings.TrimSpace(line)
	line = classicTokenPattern.ReplaceAllStringFunc(line, func(tok string) string {
		return tok[:4] + "[REDACTED]"
	})
	line = fineGrainedTokenPattern.ReplaceAllString(line, "github_pat_[REDACTED]")
	return tokenAssignmentPattern.ReplaceAllStringFunc(line, func(assignment string) string {
		key, _, _ := strings.Cut(assignment, "=")
		return strings.TrimSpace(key) + ` = "[REDACTED]"`
	})
}
