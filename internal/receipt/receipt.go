// Package receipt extracts installed-component records from macOS
// installer packages: the receipts a package leaves behind, with their
// identifiers, versions and installed sizes. Flat packages are composite:
// a Distribution descriptor may reference nested installers, whose own
// records supersede the reference.
package receipt

import (
	"os"
	"path/filepath"

	"github.com/mosen/patchgen/internal/bundle"
	"github.com/mosen/patchgen/internal/models"
	"github.com/mosen/patchgen/internal/xar"
	"github.com/sirupsen/logrus"
)

// ExtractComponentRecords returns the flat, deduplicated list of
// component records for an installer package. This is the sole contract
// the surrounding patch-definition tooling needs from this package.
func ExtractComponentRecords(installerPath string) ([]models.ComponentRecord, error) {
	return extractRecords(installerPath, make(map[string]bool))
}

// extractRecords aggregates records for one installer, threading the set
// of already-visited installer paths through nested extraction so that a
// self-referential Distribution cannot recurse forever.
func extractRecords(installerPath string, visited map[string]bool) ([]models.ComponentRecord, error) {
	abs, err := filepath.Abs(installerPath)
	if err != nil {
		return nil, &models.PatchGenError{Type: models.ErrFileOp, Installer: installerPath, Err: err}
	}

	if visited[abs] {
		logrus.Warnf("Already examined %s, skipping circular reference", abs)
		return nil, nil
	}
	visited[abs] = true

	info, err := os.Stat(abs)
	if err != nil {
		return nil, &models.PatchGenError{Type: models.ErrFileOp, Installer: abs, Err: err}
	}

	logrus.Debugf("Examining package %s", abs)

	if info.IsDir() {
		// Bundle-style package
		return bundle.Records(abs)
	}

	return flatRecords(abs, visited)
}

// flatRecords aggregates records for a flat (xar archive) package
func flatRecords(installerPath string, visited map[string]bool) ([]models.ComponentRecord, error) {
	arc, err := xar.Open(installerPath)
	if err != nil {
		return nil, &models.PatchGenError{Type: models.ErrArchiveRead, Installer: installerPath, Err: err}
	}
	defer arc.Close()

	// Each aggregation gets its own scratch directory; an outer and a
	// nested package can both contain a PackageInfo entry.
	scratch, err := os.MkdirTemp("", "patchgen-")
	if err != nil {
		return nil, &models.PatchGenError{Type: models.ErrFileOp, Installer: installerPath, Err: err}
	}
	defer os.RemoveAll(scratch)

	var records []models.ComponentRecord
	for _, descriptor := range extractDescriptors(arc, scratch) {
		var parsed []models.ComponentRecord
		var parseErr error

		switch descriptor.Class {
		case PackageInfoEntry:
			parsed, parseErr = parsePackageInfoRefs(descriptor.Path)
		case DistributionEntry:
			parsed, parseErr = parseDistributionRefs(descriptor.Path, installerPath, visited)
		}

		if parseErr != nil {
			return nil, parseErr
		}
		records = append(records, parsed...)
	}

	return dedupeByPackageID(records), nil
}

// dedupeByPackageID keeps the first record seen for each package id,
// preserving order
func dedupeByPackageID(records []models.ComponentRecord) []models.ComponentRecord {
	seen := make(map[string]bool, len(records))
	var deduped []models.ComponentRecord
	for _, record := range records {
		if seen[record.PackageID] {
			continue
		}
		seen[record.PackageID] = true
		deduped = append(deduped, record)
	}
	return deduped
}

func malformedErr(path string, err error) error {
	return &models.PatchGenError{Type: models.ErrMalformedDescriptor, Installer: path, Err: err}
}
