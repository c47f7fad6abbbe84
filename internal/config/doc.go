// Package config decides which Carvel tools to install and at which
// versions.
//
// Three sources are merged, later ones winning:
//
//  1. An optional Lua file evaluated in a sandboxed gopher-lua VM.
//  2. GitHub Actions inputs from the environment (INPUT_ONLY,
//     INPUT_EXCLUDE, INPUT_<TOOL>, INPUT_TOKEN).
//  3. Command-line flags.
//
// The Lua file declares a single global table:
//
//	carvel = {
//	  only = { "ytt", "kbld" },
//	  exclude = { platform.is_windows and "kapp" or nil },
//	  versions = { ytt = "0.28.0" },
//	}
//
// A read-only "platform" table describing the host is available to the
// file, so selections can differ per OS. The os, io, require, load and
// debug facilities are removed before user code runs.
//
// Requests turns a merged Config into the ordered list of artifact
// requests. Unknown tool names are rejected there, before any network
// activity.
package config
