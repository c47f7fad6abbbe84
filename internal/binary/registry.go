package binary

import (
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/platform"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/release"
)

// knownBinaries lists every tool in registry order.
var knownBinaries = []Binary{
	BinaryYtt,
	BinaryKbld,
	BinaryKapp,
	BinaryKwt,
	BinaryImgpkg,
	BinaryVendir,
	BinaryKctrl,
}

// repositoryNames holds the tools whose repository is not named after them.
var repositoryNames = map[Binary]string{
	BinaryKctrl: "kapp-controller",
}

// Known returns every tool in registry order.
func Known() []Binary {
	out := make([]Binary, len(knownBinaries))
	copy(out, knownBinaries)
	return out
}

// Lookup returns the registered tool with the given name.
func Lookup(name string) (Binary, error) {
	for _, b := range knownBinaries {
		if string(b) == name {
			return b, nil
		}
	}
	return "", &UnknownBinaryError{Name: name}
}

// RepositoryFor returns the GitHub repository publishing b.
func RepositoryFor(b Binary) release.Repository {
	name, ok := repositoryNames[b]
	if !ok {
		name = string(b)
	}
	return release.Repository{Owner: release.DefaultOwner, Name: name}
}

// AvailableOn reports whether b is published for the operating system.
// kwt has no Windows build.
func AvailableOn(b Binary, os string) bool {
	return !(b == BinaryKwt && os == platform.OSWindows)
}
