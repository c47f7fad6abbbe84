package platform

import (
	"context"
	"errors"
	"runtime"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestNormalizeArch(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"amd64", "amd64", "amd64"},
		{"x86_64", "x86_64", "amd64"},
		{"x64", "x64", "amd64"},
		{"arm64", "arm64", "arm64"},
		{"aarch64", "aarch64", "arm64"},
		{"unknown passes through", "riscv64", "riscv64"},
		{"uppercase", "X86_64", "amd64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeArch(tt.input); got != tt.want {
				t.Errorf("normalizeArch(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMapFamily(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debian", FamilyDebian},
		{"Ubuntu", FamilyDebian},
		{" rhel ", FamilyRHEL},
		{"manjaro", FamilyArch},
		{"plan9", FamilyUnknown},
		{"", FamilyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := mapFamily(tt.input); got != tt.want {
				t.Errorf("mapFamily(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRealDetector(t *testing.T) {
	info, err := NewDetector().Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if info.OS != runtime.GOOS {
		t.Errorf("OS = %q, want %q", info.OS, runtime.GOOS)
	}
	if info.ArchRaw != runtime.GOARCH {
		t.Errorf("ArchRaw = %q, want %q", info.ArchRaw, runtime.GOARCH)
	}
	if !info.IsLinux() && info.Platform != "" {
		t.Errorf("Platform should be empty on %s, got %q", info.OS, info.Platform)
	}
}

func TestRealDetectorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	info, err := NewDetector().Detect(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Detect() error = %v, want context.Canceled", err)
	}
	if info != nil {
		t.Errorf("Detect() info = %+v, want nil", info)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantOS   string
		wantArch string
		wantErr  bool
	}{
		{name: "os_only", value: "windows", wantOS: "windows", wantArch: "amd64"},
		{name: "os_and_arch", value: "darwin/arm64", wantOS: "darwin", wantArch: "arm64"},
		{name: "aliased_arch", value: "Linux/x86_64", wantOS: "linux", wantArch: "amd64"},
		{name: "empty", value: "", wantErr: true},
		{name: "missing_os", value: "/amd64", wantErr: true},
		{name: "missing_arch", value: "linux/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector, err := Parse(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			info, err := detector.Detect(context.Background())
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if info.OS != tt.wantOS || info.Arch != tt.wantArch {
				t.Errorf("got %s, want %s/%s", info, tt.wantOS, tt.wantArch)
			}
		})
	}
}

func TestFixedDetectorReturnsCopy(t *testing.T) {
	detector := Fixed("linux", "amd64")

	first, _ := detector.Detect(context.Background())
	first.OS = "mutated"

	second, _ := detector.Detect(context.Background())
	if second.OS != "linux" {
		t.Errorf("detector state leaked through returned info: OS = %q", second.OS)
	}
}

func TestInjectPlatformTable(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{
		OS:       "linux",
		Arch:     "amd64",
		ArchRaw:  "x86_64",
		Platform: "ubuntu",
		Family:   FamilyDebian,
		Version:  "22.04",
	}
	if err := InjectPlatformTable(L, info); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	tests := []struct {
		name string
		code string
		want lua.LValue
	}{
		{"os", `return platform.os`, lua.LString("linux")},
		{"arch_raw", `return platform.arch_raw`, lua.LString("x86_64")},
		{"is_linux", `return platform.is_linux`, lua.LTrue},
		{"is_windows", `return platform.is_windows`, lua.LFalse},
		{"distro.family", `return platform.distro.family`, lua.LString("debian")},
		{"when true", `return platform.when(platform.is_linux, "kwt")`, lua.LString("kwt")},
		{"when false", `return platform.when(platform.is_windows, "kwt")`, lua.LNil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := L.DoString(tt.code); err != nil {
				t.Fatalf("failed to execute code: %v", err)
			}
			got := L.Get(-1)
			L.Pop(1)

			if got.Type() != tt.want.Type() || got.String() != tt.want.String() {
				t.Errorf("got %v (%s), want %v (%s)", got, got.Type(), tt.want, tt.want.Type())
			}
		})
	}
}

func TestInjectPlatformTableReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "windows", Arch: "amd64"}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	if err := L.DoString(`platform.os = "linux"`); err == nil {
		t.Error("expected error when writing to platform table")
	}
	if err := L.DoString(`if platform.distro ~= nil then error("distro should be nil") end`); err != nil {
		t.Errorf("non-linux distro check failed: %v", err)
	}
}
