package config

// Lua schema field names and globals
const (
	luaGlobalCarvel = "carvel"
	luaFieldOnly    = "only"
	luaFieldExclude = "exclude"
	luaFieldVersion = "versions"
)

// Environment inputs set by the GitHub Actions runner.
const (
	EnvOnly    = "INPUT_ONLY"
	EnvExclude = "INPUT_EXCLUDE"
	EnvToken   = "INPUT_TOKEN"
	// EnvToolPrefix is followed by the upper-cased tool name, e.g. INPUT_YTT.
	EnvToolPrefix = "INPUT_"
)

const (
	// MaxConfigFileSize caps the size of a Lua config file.
	MaxConfigFileSize = 1 << 20
	// MaxListLength caps the number of entries in only and exclude.
	MaxListLength = 64
)
