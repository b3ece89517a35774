package scanner

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// Flat packages are xar archives, which start with "xar!"
var xarMagic = []byte{0x78, 0x61, 0x72, 0x21}

// DetectInstallerKind determines the installer kind based on magic bytes,
// file extension and shape (bundle packages are directories)
func DetectInstallerKind(path string) (InstallerKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return KindUnknown, err
	}

	ext := strings.ToLower(filepath.Ext(path))

	if info.IsDir() {
		if _, err := os.Stat(filepath.Join(path, "Contents", "Info.plist")); err == nil {
			return KindBundlePackage, nil
		}
		if ext == ".pkg" || ext == ".mpkg" {
			return KindBundlePackage, nil
		}
		return KindUnknown, nil
	}

	// Open file
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	// Read the first bytes for magic byte detection
	header := make([]byte, len(xarMagic))
	n, err := f.Read(header)
	if err != nil && n == 0 {
		return KindUnknown, err
	}
	header = header[:n]

	if bytes.HasPrefix(header, xarMagic) {
		return KindFlatPackage, nil
	}
	if ext == ".pkg" || ext == ".mpkg" {
		return KindFlatPackage, nil
	}

	return KindUnknown, nil
}
