package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
)

func TestGitHubPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "github_path")
	if err := os.WriteFile(file, []byte("/existing\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reg := NewGitHubPath(file)
	for _, dir := range []string{"/cache/ytt/0.28.0/amd64", "/cache/kbld/0.28.0/amd64"} {
		if err := reg.AddPath(dir); err != nil {
			t.Fatalf("AddPath(%s) error = %v", dir, err)
		}
	}

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	want := "/existing\n/cache/ytt/0.28.0/amd64\n/cache/kbld/0.28.0/amd64\n"
	if string(content) != want {
		t.Errorf("path file = %q, want %q", content, want)
	}
}

func TestGitHubPath_RejectsNewline(t *testing.T) {
	reg := NewGitHubPath(filepath.Join(t.TempDir(), "github_path"))
	if err := reg.AddPath("/a\n/b"); err == nil {
		t.Error("expected error for path with newline")
	}
}

func TestGitHubPath_Concurrent(t *testing.T) {
	file := filepath.Join(t.TempDir(), "github_path")
	reg := NewGitHubPath(file)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := reg.AddPath(fmt.Sprintf("/dir/%02d", i)); err != nil {
				t.Errorf("AddPath error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	sort.Strings(lines)
	for i, line := range lines {
		if line != fmt.Sprintf("/dir/%02d", i) {
			t.Errorf("line %d = %q", i, line)
		}
	}
}

func TestProcessPath(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")

	var reg ProcessPath
	if err := reg.AddPath("/cache/ytt"); err != nil {
		t.Fatal(err)
	}
	if err := reg.AddPath("/cache/kbld"); err != nil {
		t.Fatal(err)
	}

	sep := string(os.PathListSeparator)
	want := "/cache/kbld" + sep + "/cache/ytt" + sep + "/usr/bin"
	if got := os.Getenv("PATH"); got != want {
		t.Errorf("PATH = %q, want %q", got, want)
	}
}

func TestCollectorScript(t *testing.T) {
	c := &Collector{}
	for _, dir := range []string{"/cache/ytt", "/cache/kbld", "/cache/ytt"} {
		if err := c.AddPath(dir); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		shell ShellType
		want  string
	}{
		{ShellBash, "export PATH=\"/cache/ytt:/cache/kbld:$PATH\"\n"},
		{ShellZsh, "export PATH=\"/cache/ytt:/cache/kbld:$PATH\"\n"},
		{ShellFish, "fish_add_path --path --prepend '/cache/ytt' '/cache/kbld'\n"},
	}

	for _, tt := range tests {
		t.Run(tt.shell.String(), func(t *testing.T) {
			got, err := c.Script(tt.shell)
			if err != nil {
				t.Fatalf("Script() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Script() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollectorScript_Quoting(t *testing.T) {
	c := &Collector{}
	if err := c.AddPath(`/tmp/a "b" $HOME`); err != nil {
		t.Fatal(err)
	}
	if err := c.AddPath(`/tmp/it's`); err != nil {
		t.Fatal(err)
	}

	bash, _ := c.Script(ShellBash)
	if want := `export PATH="/tmp/a \"b\" \$HOME:/tmp/it's:$PATH"` + "\n"; bash != want {
		t.Errorf("bash script = %q, want %q", bash, want)
	}

	fish, _ := c.Script(ShellFish)
	if want := `fish_add_path --path --prepend '/tmp/a "b" $HOME' '/tmp/it\'s'` + "\n"; fish != want {
		t.Errorf("fish script = %q, want %q", fish, want)
	}
}

func TestCollectorScript_EmptyAndInvalid(t *testing.T) {
	c := &Collector{}

	got, err := c.Script(ShellBash)
	if err != nil || got != "" {
		t.Errorf("empty Script() = %q, %v", got, err)
	}

	var unsupported *UnsupportedShellError
	if _, err := c.Script(ShellType("ksh")); !errors.As(err, &unsupported) {
		t.Errorf("expected UnsupportedShellError, got %v", err)
	}
}

type failingRegistrar struct{ err error }

func (f failingRegistrar) AddPath(string) error { return f.err }

func TestMulti(t *testing.T) {
	c := &Collector{}
	boom := errors.New("boom")
	m := Multi{failingRegistrar{err: boom}, c}

	err := m.AddPath("/cache/ytt")
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
	if dirs := c.Dirs(); len(dirs) != 1 || dirs[0] != "/cache/ytt" {
		t.Errorf("later registrars should still run, got %v", dirs)
	}

	if err := (Multi{c}).AddPath("/cache/kbld"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
