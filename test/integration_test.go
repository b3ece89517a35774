package test

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mosen/patchgen/internal/models"
	"github.com/mosen/patchgen/internal/xar/xartest"
)

// TestIntegration builds the patchgen binary and runs it against
// constructed installer packages
func TestIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("Go toolchain not available, skipping integration tests")
	}

	// Get project root
	projectRoot, err := getProjectRoot()
	if err != nil {
		t.Fatalf("Failed to find project root: %v", err)
	}

	// Build patchgen binary
	t.Log("Building patchgen binary...")
	binPath := filepath.Join(t.TempDir(), "patchgen")
	if err := buildPatchgen(projectRoot, binPath); err != nil {
		t.Fatalf("Failed to build patchgen: %v", err)
	}

	t.Run("Extract", func(t *testing.T) {
		testExtractCommand(t, binPath)
	})

	t.Run("PatchDef", func(t *testing.T) {
		testPatchDefCommand(t, binPath)
	})
}

func testExtractCommand(t *testing.T, binPath string) {
	pkgPath := buildCompositeInstaller(t)

	cmd := exec.Command(binPath, "extract", pkgPath)
	output, err := cmd.Output()
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	var records []models.ComponentRecord
	if err := json.Unmarshal(output, &records); err != nil {
		t.Fatalf("extract output is not valid JSON: %v\nOutput: %s", err, output)
	}

	if len(records) != 1 {
		t.Fatalf("Expected one record, got %+v", records)
	}
	if records[0].PackageID != "com.example.sub" || records[0].Version != "1.2.3" || records[0].InstalledSizeKB != 4096 {
		t.Errorf("Unexpected record: %+v", records[0])
	}
}

func testPatchDefCommand(t *testing.T, binPath string) {
	pkgPath := buildCompositeInstaller(t)
	defPath := filepath.Join(t.TempDir(), "definition.json")

	cmd := exec.Command(binPath, "patchdef", pkgPath,
		"--name", "Example App",
		"--version", "1.2.3",
		"--bundle-id", "com.example.sub",
		"--output", defPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("patchdef failed: %v\nOutput: %s", err, output)
	}

	data, err := os.ReadFile(defPath)
	if err != nil {
		t.Fatalf("Failed to read definition: %v", err)
	}

	content := string(data)
	for _, required := range []string{
		`"name": "Example App"`,
		`"currentVersion": "1.2.3"`,
		`"com.example.sub"`,
	} {
		if !strings.Contains(content, required) {
			t.Errorf("Definition missing required content %q:\n%s", required, content)
		}
	}
}

// buildCompositeInstaller writes a flat installer whose Distribution
// references a nested package carried in the same archive
func buildCompositeInstaller(t *testing.T) string {
	t.Helper()

	pkgPath := filepath.Join(t.TempDir(), "Composite.pkg")
	err := xartest.Build(pkgPath, []xartest.File{
		{Path: "Distribution", Data: []byte(`<?xml version="1.0"?>
<installer-gui-script minSpecVersion="1">
    <pkg-ref id="com.example.sub" version="9.9">#Sub.pkg</pkg-ref>
</installer-gui-script>`)},
		{Path: "Sub.pkg/PackageInfo", Data: []byte(`<pkg-info identifier="com.example.sub" version="1.2.3">
    <payload installKBytes="4096"/>
</pkg-info>`)},
	})
	if err != nil {
		t.Fatalf("Failed to build installer: %v", err)
	}
	return pkgPath
}

// Helper functions

func getProjectRoot() (string, error) {
	// Try to find go.mod
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("could not find project root (go.mod)")
}

func buildPatchgen(projectRoot, binPath string) error {
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/patchgen")
	cmd.Dir = projectRoot
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
