package config

import (
	"strings"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/binary"
)

// FromEnv reads GitHub Actions inputs through getenv. Unset inputs leave
// the corresponding fields empty.
func FromEnv(getenv func(string) string) *Config {
	cfg := &Config{
		Only:    SplitList(getenv(EnvOnly)),
		Exclude: SplitList(getenv(EnvExclude)),
		Token:   strings.TrimSpace(getenv(EnvToken)),
	}

	for _, b := range binary.Known() {
		if v := strings.TrimSpace(getenv(EnvToolPrefix + strings.ToUpper(b.String()))); v != "" {
			if cfg.Versions == nil {
				cfg.Versions = make(map[string]string)
			}
			cfg.Versions[b.String()] = v
		}
	}

	return cfg
}

// SplitList splits a comma-separated list, trimming entries and dropping
// empty ones.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Merge overlays the non-empty fields of each source onto a copy of base.
// Lists are replaced, versions are merged key by key.
func Merge(base *Config, overrides ...*Config) *Config {
	out := &Config{}
	for _, src := range append([]*Config{base}, overrides...) {
		if src == nil {
			continue
		}
		if len(src.Only) > 0 {
			out.Only = append([]string(nil), src.Only...)
		}
		if len(src.Exclude) > 0 {
			out.Exclude = append([]string(nil), src.Exclude...)
		}
		for tool, version := range src.Versions {
			if out.Versions == nil {
				out.Versions = make(map[string]string)
			}
			out.Versions[tool] = version
		}
		if src.Token != "" {
			out.Token = src.Token
		}
	}
	return out
}
