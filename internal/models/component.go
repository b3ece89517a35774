package models

// ComponentRecord represents one installable component inside a
// (possibly composite) installer package: the receipt identifier,
// version and installed footprint that a flat or bundle-style package
// leaves behind.
type ComponentRecord struct {
	PackageID       string `json:"package_id"`
	Version         string `json:"version"`
	InstalledSizeKB int64  `json:"installed_size_kb,omitempty"`

	// SourceFile is the on-disk installer the record came from, when
	// there is one. Records emitted from an unresolvable pkg-ref carry
	// no source file.
	SourceFile string `json:"source_file,omitempty"`
}
