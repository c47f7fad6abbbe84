// Package toolcache stores installed tool binaries on disk, keyed by
// binary name and version.
//
// Layout:
//
//	<root>/<binaryName>/<version>/<arch>/<file>
//	<root>/<binaryName>/<version>/<arch>/receipt.yaml
//
// The receipt is written last, so an entry without one is incomplete and
// never reported by Find. Entries are not modified once complete.
package toolcache
