package receipt

import (
	"github.com/mosen/patchgen/internal/xar"
	"github.com/sirupsen/logrus"
)

// ExtractedDescriptor is one descriptor pulled out of an installer
// archive into the scratch directory
type ExtractedDescriptor struct {
	Path  string
	Class Classification
}

// extractDescriptors extracts every classified table-of-contents entry
// below destDir. Extraction is best-effort: an entry that fails to
// extract is logged and skipped, and does not abort the remaining
// entries.
func extractDescriptors(arc *xar.Archive, destDir string) []ExtractedDescriptor {
	var descriptors []ExtractedDescriptor

	for _, entry := range arc.TOC() {
		class := Classify(entry)
		if class == Unclassified {
			continue
		}

		path, err := arc.ExtractTo(entry, destDir)
		if err != nil {
			logrus.Warnf("Failed to extract %s entry %s: %v", class, entry, err)
			continue
		}

		descriptors = append(descriptors, ExtractedDescriptor{Path: path, Class: class})
	}

	return descriptors
}
