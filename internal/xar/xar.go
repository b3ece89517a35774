// Package xar reads the xar archive container that macOS flat installer
// packages are distributed in. Only listing the table of contents and
// extracting individual members is supported; signature sections are
// ignored.
package xar

import (
	"compress/bzip2"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/mosen/patchgen/internal/utils"
	"github.com/ulikunitz/xz/lzma"
)

// Magic is the four-byte signature at the start of every xar archive ("xar!")
const Magic = 0x78617221

// Member encoding styles found in xar tables of contents. Despite the
// x-gzip name, xar stores members as raw zlib streams.
const (
	encodingNone  = "application/octet-stream"
	encodingZlib  = "application/x-gzip"
	encodingBzip2 = "application/x-bzip2"
	encodingLZMA  = "application/x-lzma"
)

// header is the fixed-size big-endian header at the start of the archive
type header struct {
	Magic             uint32
	HeaderSize        uint16
	Version           uint16
	TOCLengthZlib     uint64
	TOCLength         uint64
	ChecksumAlgorithm uint32
}

// Entry is one member of the archive's table of contents
type Entry struct {
	// Path is the slash-separated member path as stored in the archive
	Path string

	// Type is the member type, "file" or "directory"
	Type string

	data *tocData
}

// Archive is an open xar archive
type Archive struct {
	f          *os.File
	heapOffset int64
	entries    []*Entry
	byPath     map[string]*Entry
}

// Table-of-contents XML shapes. Directories nest their children as
// further file elements.
type tocDocument struct {
	XMLName xml.Name  `xml:"xar"`
	Files   []tocFile `xml:"toc>file"`
}

type tocFile struct {
	Name     string    `xml:"name"`
	Type     string    `xml:"type"`
	Data     *tocData  `xml:"data"`
	Children []tocFile `xml:"file"`
}

type tocData struct {
	Offset   int64 `xml:"offset"`
	Length   int64 `xml:"length"`
	Size     int64 `xml:"size"`
	Encoding struct {
		Style string `xml:"style,attr"`
	} `xml:"encoding"`
	ExtractedChecksum *tocChecksum `xml:"extracted-checksum"`
}

type tocChecksum struct {
	Style string `xml:"style,attr"`
	Value string `xml:",chardata"`
}

// Open opens a xar archive and parses its table of contents
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	arc, err := readArchive(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read xar archive %s: %w", path, err)
	}
	return arc, nil
}

func readArchive(f *os.File) (*Archive, error) {
	var hdr header
	if err := binary.Read(f, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if hdr.Magic != Magic {
		return nil, fmt.Errorf("not a xar archive (bad magic %#x)", hdr.Magic)
	}
	if hdr.Version != 1 {
		return nil, fmt.Errorf("unsupported xar version %d", hdr.Version)
	}

	// The zlib-compressed table of contents sits directly after the
	// header; the member heap follows it.
	if _, err := f.Seek(int64(hdr.HeaderSize), io.SeekStart); err != nil {
		return nil, err
	}

	zr, err := zlib.NewReader(io.LimitReader(f, int64(hdr.TOCLengthZlib)))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress table of contents: %w", err)
	}
	defer zr.Close()

	tocBytes, err := io.ReadAll(io.LimitReader(zr, int64(hdr.TOCLength)))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress table of contents: %w", err)
	}

	var doc tocDocument
	if err := xml.Unmarshal(tocBytes, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse table of contents: %w", err)
	}

	arc := &Archive{
		f:          f,
		heapOffset: int64(hdr.HeaderSize) + int64(hdr.TOCLengthZlib),
		byPath:     make(map[string]*Entry),
	}
	arc.addFiles("", doc.Files)

	return arc, nil
}

// addFiles flattens the nested file tree into entries in document order
func (a *Archive) addFiles(prefix string, files []tocFile) {
	for i := range files {
		file := &files[i]
		path := file.Name
		if prefix != "" {
			path = prefix + "/" + file.Name
		}

		entry := &Entry{Path: path, Type: file.Type, data: file.Data}
		a.entries = append(a.entries, entry)
		a.byPath[path] = entry

		a.addFiles(path, file.Children)
	}
}

// Close closes the underlying archive file
func (a *Archive) Close() error {
	return a.f.Close()
}

// TOC returns all member paths in the order stored in the archive
func (a *Archive) TOC() []string {
	paths := make([]string, len(a.entries))
	for i, entry := range a.entries {
		paths[i] = entry.Path
	}
	return paths
}

// Extract reads and decodes a single member, verifying its extracted
// checksum when the table of contents carries one
func (a *Archive) Extract(entryPath string) ([]byte, error) {
	entry, ok := a.byPath[entryPath]
	if !ok {
		return nil, fmt.Errorf("no such entry: %s", entryPath)
	}
	if entry.data == nil {
		return nil, fmt.Errorf("entry has no data: %s", entryPath)
	}

	section := io.NewSectionReader(a.f, a.heapOffset+entry.data.Offset, entry.data.Length)

	var r io.Reader
	switch entry.data.Encoding.Style {
	case "", encodingNone:
		r = section
	case encodingZlib:
		zr, err := zlib.NewReader(section)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", entryPath, err)
		}
		defer zr.Close()
		r = zr
	case encodingBzip2:
		r = bzip2.NewReader(section)
	case encodingLZMA:
		lr, err := lzma.NewReader(section)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", entryPath, err)
		}
		r = lr
	default:
		return nil, fmt.Errorf("unsupported encoding %q for %s", entry.data.Encoding.Style, entryPath)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", entryPath, err)
	}
	if int64(len(data)) != entry.data.Size {
		return nil, fmt.Errorf("extracted %s: got %d bytes, table of contents says %d", entryPath, len(data), entry.data.Size)
	}

	if cksum := entry.data.ExtractedChecksum; cksum != nil {
		sum, err := utils.CalculateChecksum(data, cksum.Style)
		if err == nil && !strings.EqualFold(sum, strings.TrimSpace(cksum.Value)) {
			return nil, fmt.Errorf("extracted %s: %s checksum mismatch", entryPath, cksum.Style)
		}
	}

	return data, nil
}

// ExtractTo extracts a member below destDir, preserving its archive path,
// and returns the path of the written file
func (a *Archive) ExtractTo(entryPath, destDir string) (string, error) {
	rel := filepath.FromSlash(entryPath)
	if filepath.IsAbs(rel) || rel != filepath.Clean(rel) || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("refusing to extract unsafe entry path: %s", entryPath)
	}

	data, err := a.Extract(entryPath)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(destDir, rel)
	if err := utils.WriteFile(dest, data, 0644); err != nil {
		return "", err
	}
	return dest, nil
}
