package receipt

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/mosen/patchgen/internal/models"
)

// pkgInfoNode is one pkg-info element of a PackageInfo descriptor. Only
// the first payload child decides whether the component leaves a receipt.
type pkgInfoNode struct {
	Identifier string `xml:"identifier,attr"`
	Version    string `xml:"version,attr"`
	Payloads   []struct {
		InstallKBytes string `xml:"installKBytes,attr"`
	} `xml:"payload"`
}

// parsePackageInfoRefs parses an extracted PackageInfo descriptor into
// component records. A pkg-info element without a payload installKBytes
// leaves no receipt on disk and yields no record; verbatim duplicates
// are suppressed.
func parsePackageInfoRefs(path string) ([]models.ComponentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.PatchGenError{Type: models.ErrFileOp, Installer: path, Err: err}
	}
	defer f.Close()

	var info []models.ComponentRecord

	decoder := xml.NewDecoder(f)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformedErr(path, err)
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "pkg-info" {
			continue
		}

		var node pkgInfoNode
		if err := decoder.DecodeElement(&node, &start); err != nil {
			return nil, malformedErr(path, err)
		}

		if node.Identifier == "" || node.Version == "" {
			continue
		}
		if len(node.Payloads) == 0 || node.Payloads[0].InstallKBytes == "" {
			continue
		}

		size, err := strconv.ParseInt(node.Payloads[0].InstallKBytes, 10, 64)
		if err != nil {
			return nil, malformedErr(path, err)
		}

		record := models.ComponentRecord{
			PackageID:       node.Identifier,
			Version:         node.Version,
			InstalledSizeKB: size,
		}
		if !containsRecord(info, record) {
			info = append(info, record)
		}
	}

	return info, nil
}

func containsRecord(records []models.ComponentRecord, record models.ComponentRecord) bool {
	for _, r := range records {
		if r == record {
			return true
		}
	}
	return false
}
