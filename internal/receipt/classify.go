package receipt

import "strings"

// Classification tags an archive entry by the kind of descriptor it holds
type Classification int

const (
	// Unclassified entries carry no component metadata and are not
	// extracted
	Unclassified Classification = iota

	// PackageInfoEntry is a per-component PackageInfo descriptor
	PackageInfoEntry

	// DistributionEntry is a composite installer's Distribution
	// descriptor
	DistributionEntry
)

// String returns the string representation of Classification
func (c Classification) String() string {
	switch c {
	case PackageInfoEntry:
		return "pkginfo"
	case DistributionEntry:
		return "distribution"
	default:
		return "unclassified"
	}
}

// Classify tags a table-of-contents entry path. Entry paths use forward
// slashes as stored in the archive.
func Classify(entry string) Classification {
	switch {
	case strings.HasPrefix(entry, "PackageInfo"):
		return PackageInfoEntry
	case strings.HasSuffix(entry, ".pkg/PackageInfo"):
		return PackageInfoEntry
	case strings.HasPrefix(entry, "Distribution"):
		return DistributionEntry
	default:
		return Unclassified
	}
}
