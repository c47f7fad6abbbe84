package config

import (
	"bytes"
	"sort"
	"strings"
)

// Generator generates Lua configuration code from a Config.
type Generator struct {
	indent string // Indentation string (default: two spaces)
}

// NewGenerator creates a new Lua config generator.
func NewGenerator() *Generator {
	return &Generator{
		indent: "  ",
	}
}

// Generate renders cfg as a Lua file that ParseString reads back into an
// equal Config. The token is never written.
func (g *Generator) Generate(cfg *Config) (string, error) {
	var buf bytes.Buffer

	buf.WriteString("-- carvel-setup configuration\n")
	buf.WriteString("-- The read-only `platform` table (os, arch, is_windows, ...) is available here.\n\n")
	buf.WriteString(luaGlobalCarvel)
	buf.WriteString(" = {\n")

	g.writeList(&buf, luaFieldOnly, cfg.Only)
	g.writeList(&buf, luaFieldExclude, cfg.Exclude)
	g.writeVersions(&buf, cfg.Versions)

	buf.WriteString("}\n")

	return buf.String(), nil
}

// writeList writes a list field. Empty lists are omitted.
func (g *Generator) writeList(buf *bytes.Buffer, field string, items []string) {
	if len(items) == 0 {
		return
	}

	buf.WriteString(g.indent)
	buf.WriteString(field)
	buf.WriteString(" = {\n")
	for _, item := range items {
		buf.WriteString(g.indent)
		buf.WriteString(g.indent)
		buf.WriteString(g.quoteLuaString(item))
		buf.WriteString(",\n")
	}
	buf.WriteString(g.indent)
	buf.WriteString("},\n")
}

// writeVersions writes the versions table with keys sorted.
func (g *Generator) writeVersions(buf *bytes.Buffer, versions map[string]string) {
	if len(versions) == 0 {
		return
	}

	tools := make([]string, 0, len(versions))
	for tool := range versions {
		tools = append(tools, tool)
	}
	sort.Strings(tools)

	buf.WriteString(g.indent)
	buf.WriteString(luaFieldVersion)
	buf.WriteString(" = {\n")
	for _, tool := range tools {
		buf.WriteString(g.indent)
		buf.WriteString(g.indent)
		buf.WriteString("[")
		buf.WriteString(g.quoteLuaString(tool))
		buf.WriteString("] = ")
		buf.WriteString(g.quoteLuaString(versions[tool]))
		buf.WriteString(",\n")
	}
	buf.WriteString(g.indent)
	buf.WriteString("},\n")
}

// quoteLuaString quotes a string for Lua, handling special characters.
func (g *Generator) quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // Escape backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}
