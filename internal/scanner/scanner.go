package scanner

import "context"

// InstallerKind represents the kind of installer package
type InstallerKind int

const (
	KindUnknown InstallerKind = iota

	// KindFlatPackage is a flat .pkg/.mpkg installer, a xar archive
	KindFlatPackage

	// KindBundlePackage is an old-style bundle installer, a directory
	// with a Contents/Info.plist
	KindBundlePackage
)

// String returns the string representation of InstallerKind
func (k InstallerKind) String() string {
	switch k {
	case KindFlatPackage:
		return "flat"
	case KindBundlePackage:
		return "bundle"
	default:
		return "unknown"
	}
}

// ScannedInstaller represents an installer package found during scanning
type ScannedInstaller struct {
	Path string
	Kind InstallerKind
	Size int64
}

// Scanner interface for detecting and scanning installer packages
type Scanner interface {
	// Scan recursively scans a directory for installer packages
	Scan(ctx context.Context, dir string) ([]ScannedInstaller, error)

	// DetectKind determines the installer kind of a path
	DetectKind(path string) (InstallerKind, error)
}
