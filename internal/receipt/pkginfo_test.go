package receipt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mosen/patchgen/internal/models"
)

func writeDescriptor(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write descriptor: %v", err)
	}
	return path
}

func TestParsePackageInfoRefs(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "patchgen-test-pkginfo-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := writeDescriptor(t, tmpDir, "PackageInfo", `<?xml version="1.0"?>
<pkg-info identifier="com.example.app" version="2.1.0" install-location="/">
    <payload installKBytes="10240" numberOfFiles="42"/>
</pkg-info>`)

	records, err := parsePackageInfoRefs(path)
	if err != nil {
		t.Fatalf("Failed to parse descriptor: %v", err)
	}

	want := models.ComponentRecord{PackageID: "com.example.app", Version: "2.1.0", InstalledSizeKB: 10240}
	if len(records) != 1 || records[0] != want {
		t.Errorf("Expected [%+v], got %+v", want, records)
	}
}

func TestParsePackageInfoRefsSuppressesDuplicates(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "patchgen-test-pkginfo-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := writeDescriptor(t, tmpDir, "PackageInfo", `<?xml version="1.0"?>
<root>
    <pkg-info identifier="com.example.app" version="2.1.0">
        <payload installKBytes="10240"/>
    </pkg-info>
    <pkg-info identifier="com.example.app" version="2.1.0">
        <payload installKBytes="10240"/>
    </pkg-info>
</root>`)

	records, err := parsePackageInfoRefs(path)
	if err != nil {
		t.Fatalf("Failed to parse descriptor: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected exactly one record for verbatim duplicates, got %d", len(records))
	}
}

func TestParsePackageInfoRefsSkipsNodesWithoutPayload(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "patchgen-test-pkginfo-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// No payload at all, and a payload with no installKBytes: neither
	// leaves a receipt.
	path := writeDescriptor(t, tmpDir, "PackageInfo", `<?xml version="1.0"?>
<root>
    <pkg-info identifier="com.example.nopayload" version="1.0"/>
    <pkg-info identifier="com.example.nosize" version="1.0">
        <payload numberOfFiles="3"/>
    </pkg-info>
</root>`)

	records, err := parsePackageInfoRefs(path)
	if err != nil {
		t.Fatalf("Failed to parse descriptor: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %+v", records)
	}
}

func TestParsePackageInfoRefsSkipsNodesWithoutIdentity(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "patchgen-test-pkginfo-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := writeDescriptor(t, tmpDir, "PackageInfo", `<?xml version="1.0"?>
<pkg-info identifier="com.example.noversion">
    <payload installKBytes="512"/>
</pkg-info>`)

	records, err := parsePackageInfoRefs(path)
	if err != nil {
		t.Fatalf("Failed to parse descriptor: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %+v", records)
	}
}

func TestParsePackageInfoRefsMalformedXML(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "patchgen-test-pkginfo-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := writeDescriptor(t, tmpDir, "PackageInfo", `<pkg-info identifier="x"`)

	_, err = parsePackageInfoRefs(path)
	if err == nil {
		t.Fatal("Expected error for malformed XML")
	}

	var pgErr *models.PatchGenError
	if !errors.As(err, &pgErr) || pgErr.Type != models.ErrMalformedDescriptor {
		t.Errorf("Expected MalformedDescriptor error, got: %v", err)
	}
}
