package main

import (
	"github.com/spf13/pflag"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/config"
)

// selection holds the tool selection flags shared by install, resolve and init.
type selection struct {
	only     []string
	exclude  []string
	versions map[string]string
}

func (s *selection) addFlags(f *pflag.FlagSet) {
	f.StringSliceVar(&s.only, "only", nil, "install only these tools, in this order")
	f.StringSliceVar(&s.exclude, "exclude", nil, "skip these tools")
	f.StringToStringVar(&s.versions, "version", nil, "pin a tool version, e.g. --version ytt=v0.44.1")
}

// config turns the flags plus tool[@version] arguments into a Config layer.
// Arguments extend the only list.
func (s *selection) config(args []string) (*config.Config, error) {
	cfg := &config.Config{
		Only:    append([]string(nil), s.only...),
		Exclude: append([]string(nil), s.exclude...),
	}
	for tool, version := range s.versions {
		if cfg.Versions == nil {
			cfg.Versions = make(map[string]string)
		}
		cfg.Versions[tool] = version
	}

	for _, arg := range args {
		req, err := config.ParseSpec(arg)
		if err != nil {
			return nil, err
		}
		cfg.Only = append(cfg.Only, req.Binary.String())
		if v := req.Version.String(); v != "latest" {
			if cfg.Versions == nil {
				cfg.Versions = make(map[string]string)
			}
			cfg.Versions[req.Binary.String()] = v
		}
	}
	return cfg, nil
}
