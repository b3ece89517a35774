// Package bundle reads installed-component records out of old
// bundle-style (directory) installer packages, which describe themselves
// through a Contents/Info.plist instead of embedded XML descriptors.
package bundle

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mosen/patchgen/internal/models"
	"github.com/sirupsen/logrus"
	"howett.net/plist"
)

// infoPlist holds the receipt-relevant keys of a bundle package's
// Contents/Info.plist
type infoPlist struct {
	CFBundleIdentifier         string `plist:"CFBundleIdentifier"`
	CFBundleShortVersionString string `plist:"CFBundleShortVersionString"`
	CFBundleVersion            string `plist:"CFBundleVersion"`
	IFPkgFlagInstalledSize     int64  `plist:"IFPkgFlagInstalledSize"`
}

// Records returns the component records of a bundle-style package
// directory: its own Info.plist receipt, if any, followed by those of
// sub-packages under Contents/Resources. A directory without an
// Info.plist yields no records and no error.
func Records(dir string) ([]models.ComponentRecord, error) {
	var records []models.ComponentRecord

	record, ok, err := ownRecord(dir)
	if err != nil {
		return nil, err
	}
	if ok {
		records = append(records, record)
	}

	// Metapackages keep their sub-packages under Contents/Resources,
	// sometimes one level down in a language directory.
	resources := filepath.Join(dir, "Contents", "Resources")
	subdirs := []string{resources}
	if entries, err := os.ReadDir(resources); err == nil {
		for _, entry := range entries {
			if entry.IsDir() && !isSubPackage(entry.Name()) {
				subdirs = append(subdirs, filepath.Join(resources, entry.Name()))
			}
		}
	}

	for _, subdir := range subdirs {
		entries, err := os.ReadDir(subdir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || !isSubPackage(entry.Name()) {
				continue
			}
			nested, err := Records(filepath.Join(subdir, entry.Name()))
			if err != nil {
				return nil, err
			}
			records = append(records, nested...)
		}
	}

	return records, nil
}

// ownRecord reads the bundle's own Info.plist receipt
func ownRecord(dir string) (models.ComponentRecord, bool, error) {
	infoPath := filepath.Join(dir, "Contents", "Info.plist")
	data, err := os.ReadFile(infoPath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.ComponentRecord{}, false, nil
		}
		return models.ComponentRecord{}, false, &models.PatchGenError{Type: models.ErrFileOp, Installer: dir, Err: err}
	}

	var info infoPlist
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return models.ComponentRecord{}, false, &models.PatchGenError{Type: models.ErrMalformedDescriptor, Installer: infoPath, Err: err}
	}

	packageID := info.CFBundleIdentifier
	if packageID == "" {
		// No bundle identifier; fall back to the bundle's name
		packageID = strings.TrimSuffix(filepath.Base(dir), filepath.Ext(dir))
	}

	version := info.CFBundleShortVersionString
	if version == "" {
		version = info.CFBundleVersion
	}
	if version == "" {
		logrus.Debugf("Bundle package %s has no version, skipping", dir)
		return models.ComponentRecord{}, false, nil
	}

	return models.ComponentRecord{
		PackageID:       packageID,
		Version:         version,
		InstalledSizeKB: info.IFPkgFlagInstalledSize,
		SourceFile:      dir,
	}, true, nil
}

func isSubPackage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".pkg" || ext == ".mpkg"
}
