package receipt

import (
	"encoding/xml"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mosen/patchgen/internal/models"
)

// pkgRef accumulates repeated pkg-ref elements for one component id.
// Later attribute values overwrite earlier ones.
type pkgRef struct {
	id        string
	version   string
	installKB int64
	hasSize   bool
	file      string
}

// parseDistributionRefs parses an extracted Distribution descriptor.
// installerPath is the installer the descriptor came from; file: refs
// resolve relative to its directory, everything else relative to the
// descriptor's own directory.
//
// Refs whose resolved file exists are superseded by the recursively
// extracted records of that nested installer. Refs with a version but no
// resolvable file are emitted directly; refs with neither are dropped.
func parseDistributionRefs(path, installerPath string, visited map[string]bool) ([]models.ComponentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.PatchGenError{Type: models.ErrFileOp, Installer: path, Err: err}
	}
	defer f.Close()

	refs := make(map[string]*pkgRef)
	var order []string

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
		if !ok || start.Name.Local != "pkg-ref" {
			continue
		}

		var id, version, kbytes string
		var hasID, hasVersion, hasKBytes bool
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "id":
				id, hasID = attr.Value, true
			case "version":
				version, hasVersion = attr.Value, true
			case "installKBytes":
				kbytes, hasKBytes = attr.Value, true
			}
		}

		var body struct {
			Text string `xml:",chardata"`
		}
		if err := decoder.DecodeElement(&body, &start); err != nil {
			return nil, malformedErr(path, err)
		}

		if !hasID {
			continue
		}

		ref, ok := refs[id]
		if !ok {
			ref = &pkgRef{id: id}
			refs[id] = ref
			order = append(order, id)
		}

		if hasVersion {
			ref.version = version
		}
		if hasKBytes {
			size, err := strconv.ParseInt(kbytes, 10, 64)
			if err != nil {
				return nil, malformedErr(path, err)
			}
			ref.installKB = size
			ref.hasSize = true
		}

		if text := strings.TrimSpace(body.Text); strings.HasSuffix(text, ".pkg") {
			ref.file = resolveRefPath(text, path, installerPath)
		}
	}

	var records []models.ComponentRecord
	for _, id := range order {
		ref := refs[id]

		if ref.file != "" {
			if _, err := os.Stat(ref.file); err == nil {
				nested, err := extractRecords(ref.file, visited)
				if err != nil {
					return nil, err
				}
				records = append(records, nested...)
				continue
			}
		}

		if ref.version != "" {
			record := models.ComponentRecord{PackageID: ref.id, Version: ref.version}
			if ref.hasSize {
				record.InstalledSizeKB = ref.installKB
			}
			records = append(records, record)
		}
	}

	return records, nil
}

// resolveRefPath resolves a pkg-ref body to an on-disk path. file: refs
// are relative to the outer installer's directory; plain refs, with any
// leading # stripped, are relative to the descriptor's directory. Both
// forms are percent-encoded.
func resolveRefPath(text, distPath, installerPath string) string {
	if rel, ok := strings.CutPrefix(text, "file:"); ok {
		return filepath.Join(filepath.Dir(installerPath), filepath.FromSlash(unescape(rel)))
	}

	rel := strings.TrimPrefix(text, "#")
	return filepath.Join(filepath.Dir(distPath), filepath.FromSlash(unescape(rel)))
}

func unescape(s string) string {
	unescaped, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return unescaped
}
