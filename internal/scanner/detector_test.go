package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectInstallerKind(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "patchgen-test-scanner-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Flat package by magic bytes, regardless of extension
	flatByMagic := filepath.Join(tmpDir, "installer.bin")
	if err := os.WriteFile(flatByMagic, append([]byte("xar!"), make([]byte, 64)...), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	// Flat package by extension
	flatByExt := filepath.Join(tmpDir, "installer.pkg")
	if err := os.WriteFile(flatByExt, []byte("short"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	// Bundle package: directory with a Contents/Info.plist
	bundleDir := filepath.Join(tmpDir, "Bundle")
	if err := os.MkdirAll(filepath.Join(bundleDir, "Contents"), 0755); err != nil {
		t.Fatalf("Failed to create bundle: %v", err)
	}
	if err := os.WriteFile(filepath.Join(bundleDir, "Contents", "Info.plist"), []byte("<plist/>"), 0644); err != nil {
		t.Fatalf("Failed to write Info.plist: %v", err)
	}

	// Bundle package by extension, no Info.plist
	bundleByExt := filepath.Join(tmpDir, "Old.mpkg")
	if err := os.MkdirAll(bundleByExt, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	// Neither
	unknownFile := filepath.Join(tmpDir, "readme.txt")
	if err := os.WriteFile(unknownFile, []byte("hello"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	unknownDir := filepath.Join(tmpDir, "plain")
	if err := os.MkdirAll(unknownDir, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	tests := []struct {
		path string
		want InstallerKind
	}{
		{flatByMagic, KindFlatPackage},
		{flatByExt, KindFlatPackage},
		{bundleDir, KindBundlePackage},
		{bundleByExt, KindBundlePackage},
		{unknownFile, KindUnknown},
		{unknownDir, KindUnknown},
	}

	for _, tt := range tests {
		got, err := DetectInstallerKind(tt.path)
		if err != nil {
			t.Errorf("DetectInstallerKind(%s) returned error: %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DetectInstallerKind(%s) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestDetectInstallerKindMissingPath(t *testing.T) {
	_, err := DetectInstallerKind(filepath.Join(os.TempDir(), "no-such-installer.pkg"))
	if err == nil {
		t.Error("Expected error for a missing path")
	}
}
