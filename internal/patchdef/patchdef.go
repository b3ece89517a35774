// Package patchdef builds JAMF patch-title definitions from the
// component records extracted out of an installer package.
package patchdef

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mosen/patchgen/internal/models"
)

const defaultMinimumOS = "10.9"

// KillApp names an application that must quit before patching
type KillApp struct {
	BundleID string `json:"bundleId"`
	AppName  string `json:"appName"`
}

// Criterion is one recon-style matching rule
type Criterion struct {
	Name     string `json:"name"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
	Type     string `json:"type"`
	And      bool   `json:"and"`
}

// Component is one installable component of a patch version
type Component struct {
	Name     string      `json:"name"`
	Version  string      `json:"version"`
	Criteria []Criterion `json:"criteria"`
}

// Patch is one version entry of a patch definition
type Patch struct {
	Version                string      `json:"version"`
	ReleaseDate            string      `json:"releaseDate"`
	Standalone             bool        `json:"standalone"`
	MinimumOperatingSystem string      `json:"minimumOperatingSystem"`
	Reboot                 bool        `json:"reboot"`
	KillApps               []KillApp   `json:"killApps"`
	Components             []Component `json:"components"`
	Capabilities           []Criterion `json:"capabilities"`
	Dependencies           []string    `json:"dependencies"`
}

// Definition is a JAMF patch-title definition document
type Definition struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Publisher      string      `json:"publisher"`
	AppName        string      `json:"appName"`
	BundleID       string      `json:"bundleId"`
	LastModified   string      `json:"lastModified"`
	CurrentVersion string      `json:"currentVersion"`
	Requirements   []Criterion `json:"requirements"`
	Patches        []Patch     `json:"patches"`
}

// Overrides replace generated definition fields when set. They mirror
// the patchinfo keys a recipe may supply.
type Overrides struct {
	ID                     string
	Name                   string
	Publisher              string
	AppName                string
	BundleID               string
	CurrentVersion         string
	MinimumOperatingSystem string
	KillApps               []KillApp
}

// Build generates a patch definition for one product version from its
// extracted component records. restartAction is the installer's
// RestartAction, empty when none is required.
func Build(prodName, version string, records []models.ComponentRecord, restartAction string, overrides Overrides) *Definition {
	def := &Definition{
		ID:             strings.ReplaceAll(prodName, " ", ""),
		Name:           prodName,
		Publisher:      prodName,
		AppName:        prodName + ".app",
		LastModified:   time.Now().UTC().Format(time.RFC3339),
		CurrentVersion: version,
	}

	if overrides.ID != "" {
		def.ID = overrides.ID
	}
	if overrides.Name != "" {
		def.Name = overrides.Name
	}
	if overrides.Publisher != "" {
		def.Publisher = overrides.Publisher
	}
	if overrides.AppName != "" {
		def.AppName = overrides.AppName
	}
	if overrides.BundleID != "" {
		def.BundleID = overrides.BundleID
	}
	if overrides.CurrentVersion != "" {
		def.CurrentVersion = overrides.CurrentVersion
	}

	minimumOS := defaultMinimumOS
	if overrides.MinimumOperatingSystem != "" {
		minimumOS = overrides.MinimumOperatingSystem
	}

	if def.BundleID != "" {
		def.Requirements = []Criterion{{
			Name:     "Application Bundle ID",
			Operator: "is",
			Value:    def.BundleID,
			Type:     "recon",
		}}
	}

	patch := Patch{
		Version:                def.CurrentVersion,
		ReleaseDate:            def.LastModified,
		Standalone:             true,
		MinimumOperatingSystem: minimumOS,
		Reboot:                 restartAction != "",
		KillApps:               overrides.KillApps,
		Capabilities: []Criterion{{
			Name:     "Operating System Version",
			Operator: "greater than or equal",
			Value:    minimumOS,
			Type:     "recon",
		}},
	}

	for _, record := range records {
		patch.Components = append(patch.Components, Component{
			Name:    record.PackageID,
			Version: record.Version,
			Criteria: []Criterion{{
				Name:     "Packages Installed By Casper",
				Operator: "has",
				Value:    fmt.Sprintf("%s-%s", record.PackageID, record.Version),
				Type:     "recon",
				And:      true,
			}},
		})
	}

	def.Patches = []Patch{patch}
	return def
}

// JSON serializes the definition as indented JSON
func (d *Definition) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "    ")
}
