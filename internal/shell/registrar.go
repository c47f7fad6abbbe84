package shell

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// PathRegistrar exposes a directory on the execution path.
// Implementations are safe for concurrent use.
type PathRegistrar interface {
	AddPath(dir string) error
}

// GitHubPath appends directories to the GitHub Actions path file.
type GitHubPath struct {
	mu   sync.Mutex
	file string
}

// NewGitHubPath creates a registrar writing to file, normally $GITHUB_PATH.
func NewGitHubPath(file string) *GitHubPath {
	return &GitHubPath{file: file}
}

// AddPath appends dir as one line.
func (g *GitHubPath) AddPath(dir string) error {
	if strings.ContainsAny(dir, "\r\n") {
		return fmt.Errorf("path contains a newline: %q", dir)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	f, err := os.OpenFile(g.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open path file: %w", err)
	}
	if _, err := f.WriteString(dir + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("write path file: %w", err)
	}
	return f.Close()
}

// ProcessPath prepends directories to this process's PATH so tools are
// resolvable by later steps of the same run.
type ProcessPath struct {
	mu sync.Mutex
}

// AddPath prepends dir to PATH.
func (p *ProcessPath) AddPath(dir string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := os.Getenv("PATH")
	if current == "" {
		return os.Setenv("PATH", dir)
	}
	return os.Setenv("PATH", dir+string(os.PathListSeparator)+current)
}

// Collector records directories for an activation script.
type Collector struct {
	mu   sync.Mutex
	dirs []string
}

// AddPath records dir. Repeated directories are kept once.
func (c *Collector) AddPath(dir string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range c.dirs {
		if d == dir {
			return nil
		}
	}
	c.dirs = append(c.dirs, dir)
	return nil
}

// Dirs returns the recorded directories in the order they were added.
func (c *Collector) Dirs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.dirs))
	copy(out, c.dirs)
	return out
}

// Script renders a snippet that prepends the recorded directories to PATH
// in the given shell. An empty collector renders an empty script.
func (c *Collector) Script(shell ShellType) (string, error) {
	if err := ValidateShell(shell); err != nil {
		return "", err
	}

	dirs := c.Dirs()
	if len(dirs) == 0 {
		return "", nil
	}

	switch shell {
	case ShellFish:
		quoted := make([]string, len(dirs))
		for i, d := range dirs {
			quoted[i] = fishQuote(d)
		}
		return fmt.Sprintf("fish_add_path --path --prepend %s\n", strings.Join(quoted, " ")), nil
	default:
		escaped := make([]string, len(dirs))
		for i, d := range dirs {
			escaped[i] = posixEscape(d)
		}
		return fmt.Sprintf("export PATH=\"%s:$PATH\"\n", strings.Join(escaped, ":")), nil
	}
}

// posixEscape escapes the characters special inside POSIX double quotes.
func posixEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")
	return r.Replace(s)
}

// fishQuote single-quotes s for fish.
func fishQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

// Multi fans AddPath out to every registrar in order and joins the errors.
type Multi []PathRegistrar

// AddPath calls AddPath on each registrar.
func (m Multi) AddPath(dir string) error {
	var errs []error
	for _, r := range m {
		if err := r.AddPath(dir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
