package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/logging"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/platform"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
	logger   logging.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLogger sets the logger used for warnings about the config content.
func WithLogger(l logging.Logger) ParserOption {
	return func(p *Parser) { p.logger = l }
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector, opts ...ParserOption) *Parser {
	p := &Parser{detector: detector}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.OrNoop(p.logger)
	return p
}

// ParseFile reads and parses the Lua config at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > MaxConfigFileSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, MaxConfigFileSize),
		}
	}

	for _, finding := range DetectSecrets(string(data)) {
		p.logger.Warn(finding.Message(), "file", path, "line", finding.Line, "preview", finding.Preview)
	}

	return p.ParseString(ctx, string(data))
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global "carvel" table.
func extractConfig(L *lua.LState) (*Config, error) {
	carvelTable := L.GetGlobal(luaGlobalCarvel)
	if carvelTable.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: "missing or invalid 'carvel' table",
			Detail:  fmt.Sprintf("expected table, got %s", carvelTable.Type()),
		}
	}

	config := &Config{}
	table := carvelTable.(*lua.LTable)

	var err error
	if config.Only, err = extractList(table, luaFieldOnly); err != nil {
		return nil, err
	}
	if config.Exclude, err = extractList(table, luaFieldExclude); err != nil {
		return nil, err
	}
	if config.Versions, err = extractVersions(table); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// extractList reads an array of strings in index order. Nil entries from
// platform conditionals are skipped.
func extractList(parent *lua.LTable, field string) ([]string, error) {
	value := parent.RawGetString(field)
	switch value.Type() {
	case lua.LTNil:
		return nil, nil
	case lua.LTTable:
	default:
		return nil, &ValidationError{Field: field, Message: fmt.Sprintf("expected table, got %s", value.Type())}
	}

	type entry struct {
		index int
		value string
	}
	var entries []entry
	var bad *ValidationError

	value.(*lua.LTable).ForEach(func(key, val lua.LValue) {
		if bad != nil {
			return
		}
		idx, ok := key.(lua.LNumber)
		if !ok {
			bad = &ValidationError{Field: field, Message: fmt.Sprintf("expected a list, found key %q", key.String())}
			return
		}
		str, ok := val.(lua.LString)
		if !ok {
			bad = &ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, int(idx)),
				Message: fmt.Sprintf("expected string, got %s", val.Type()),
			}
			return
		}
		entries = append(entries, entry{index: int(idx), value: strings.TrimSpace(string(str))})
	})
	if bad != nil {
		return nil, bad
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

	var out []string
	for _, e := range entries {
		if e.value != "" {
			out = append(out, e.value)
		}
	}
	return out, nil
}

// extractVersions reads the tool = "version" table.
func extractVersions(parent *lua.LTable) (map[string]string, error) {
	value := parent.RawGetString(luaFieldVersion)
	switch value.Type() {
	case lua.LTNil:
		return nil, nil
	case lua.LTTable:
	default:
		return nil, &ValidationError{Field: luaFieldVersion, Message: fmt.Sprintf("expected table, got %s", value.Type())}
	}

	versions := make(map[string]string)
	var bad *ValidationError

	value.(*lua.LTable).ForEach(func(key, val lua.LValue) {
		if bad != nil {
			return
		}
		name, ok := key.(lua.LString)
		if !ok {
			bad = &ValidationError{Field: luaFieldVersion, Message: fmt.Sprintf("expected tool name key, got %s", key.Type())}
			return
		}
		version, ok := val.(lua.LString)
		if !ok {
			bad = &ValidationError{
				Field:   fmt.Sprintf("%s.%s", luaFieldVersion, name),
				Message: fmt.Sprintf("expected string, got %s", val.Type()),
			}
			return
		}
		versions[string(name)] = strings.TrimSpace(string(version))
	})
	if bad != nil {
		return nil, bad
	}

	return versions, nil
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	if parseErr, ok := err.(*ParseError); ok {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
