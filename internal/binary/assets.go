package binary

import "github.com/ZebulonRouseFrantzich/carvel-setup/internal/platform"

// AssetName returns the release asset built for os. Every OS other than
// windows and darwin maps to the linux asset.
func AssetName(b Binary, os string) string {
	return b.String() + "-" + assetSuffix(os)
}

func assetSuffix(os string) string {
	switch os {
	case platform.OSWindows:
		return "windows-amd64.exe"
	case platform.OSDarwin:
		return "darwin-amd64"
	default:
		return "linux-amd64"
	}
}

// BinaryName returns the installed executable's file name for os.
func BinaryName(b Binary, os string) string {
	if os == platform.OSWindows {
		return b.String() + ".exe"
	}
	return b.String()
}
