package config

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/binary"
)

// Requests returns the artifact requests selected by cfg on the given
// operating system, in order: the only list as written, or registry order
// when only is empty. Unknown tool names fail before anything else.
func Requests(cfg *Config, goos string) ([]binary.ArtifactRequest, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	only, err := lookupAll(luaFieldOnly, cfg.Only)
	if err != nil {
		return nil, err
	}
	exclude, err := lookupAll(luaFieldExclude, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	for tool := range cfg.Versions {
		if _, err := binary.Lookup(tool); err != nil {
			return nil, &ValidationError{Field: fmt.Sprintf("%s.%s", luaFieldVersion, tool), Message: err.Error()}
		}
	}

	selected := only
	if len(selected) == 0 {
		for _, b := range binary.Known() {
			if binary.AvailableOn(b, goos) {
				selected = append(selected, b)
			}
		}
	}

	excluded := make(map[binary.Binary]bool, len(exclude))
	for _, b := range exclude {
		excluded[b] = true
	}

	seen := make(map[binary.Binary]bool, len(selected))
	var reqs []binary.ArtifactRequest
	for _, b := range selected {
		if excluded[b] || seen[b] {
			continue
		}
		seen[b] = true
		reqs = append(reqs, binary.ArtifactRequest{
			Binary:  b,
			Version: binary.ParseVersionRequest(cfg.Versions[b.String()]),
		})
	}

	return reqs, nil
}

func lookupAll(field string, names []string) ([]binary.Binary, error) {
	out := make([]binary.Binary, 0, len(names))
	for _, name := range names {
		b, err := binary.Lookup(name)
		if err != nil {
			return nil, &ValidationError{Field: field, Message: err.Error()}
		}
		out = append(out, b)
	}
	return out, nil
}

// ParseSpec parses a "tool[@version]" argument. A missing version means
// the latest release.
func ParseSpec(spec string) (binary.ArtifactRequest, error) {
	name, version, hasVersion := strings.Cut(strings.TrimSpace(spec), "@")
	if name == "" {
		return binary.ArtifactRequest{}, &ValidationError{Field: "tool", Message: fmt.Sprintf("invalid tool spec %q", spec)}
	}
	b, err := binary.Lookup(name)
	if err != nil {
		return binary.ArtifactRequest{}, &ValidationError{Field: "tool", Message: err.Error()}
	}
	if hasVersion {
		if err := validateVersionString(version); err != nil {
			return binary.ArtifactRequest{}, &ValidationError{Field: name, Message: err.Error()}
		}
	}
	return binary.ArtifactRequest{Binary: b, Version: binary.ParseVersionRequest(version)}, nil
}
