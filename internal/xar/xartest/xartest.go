// Package xartest builds minimal xar archives for tests. Members are
// stored uncompressed with a sha1 extracted-checksum; directories are
// created implicitly from member paths.
package xartest

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"encoding/xml"
	"os"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// File is one member to store in a built archive. Path is
// slash-separated, relative to the archive root.
type File struct {
	Path string
	Data []byte
}

type tocFile struct {
	XMLName  xml.Name   `xml:"file"`
	ID       int        `xml:"id,attr"`
	Name     string     `xml:"name"`
	Type     string     `xml:"type"`
	Data     *tocData   `xml:"data,omitempty"`
	Children []*tocFile `xml:"file"`
}

type tocData struct {
	Offset            int64        `xml:"offset"`
	Length            int64        `xml:"length"`
	Size              int64        `xml:"size"`
	Encoding          tocEncoding  `xml:"encoding"`
	ExtractedChecksum *tocChecksum `xml:"extracted-checksum"`
}

type tocEncoding struct {
	Style string `xml:"style,attr"`
}

type tocChecksum struct {
	Style string `xml:"style,attr"`
	Value string `xml:",chardata"`
}

type tocDocument struct {
	XMLName xml.Name `xml:"xar"`
	TOC     struct {
		Files []*tocFile `xml:"file"`
	} `xml:"toc"`
}

// Build writes a xar archive at path containing the given members, in
// the given order.
func Build(path string, files []File) error {
	var doc tocDocument
	var heap bytes.Buffer

	nextID := 1
	dirs := make(map[string]*tocFile)

	for _, file := range files {
		parts := strings.Split(file.Path, "/")

		// Create any missing parent directory entries.
		parent := (*tocFile)(nil)
		for i := 0; i < len(parts)-1; i++ {
			dirPath := strings.Join(parts[:i+1], "/")
			dir, ok := dirs[dirPath]
			if !ok {
				dir = &tocFile{ID: nextID, Name: parts[i], Type: "directory"}
				nextID++
				dirs[dirPath] = dir
				if parent == nil {
					doc.TOC.Files = append(doc.TOC.Files, dir)
				} else {
					parent.Children = append(parent.Children, dir)
				}
			}
			parent = dir
		}

		sum := sha1.Sum(file.Data)
		node := &tocFile{
			ID:   nextID,
			Name: parts[len(parts)-1],
			Type: "file",
			Data: &tocData{
				Offset:            int64(heap.Len()),
				Length:            int64(len(file.Data)),
				Size:              int64(len(file.Data)),
				Encoding:          tocEncoding{Style: "application/octet-stream"},
				ExtractedChecksum: &tocChecksum{Style: "sha1", Value: hex.EncodeToString(sum[:])},
			},
		}
		nextID++
		heap.Write(file.Data)

		if parent == nil {
			doc.TOC.Files = append(doc.TOC.Files, node)
		} else {
			parent.Children = append(parent.Children, node)
		}
	}

	tocXML, err := xml.Marshal(&doc)
	if err != nil {
		return err
	}

	var tocZlib bytes.Buffer
	zw := zlib.NewWriter(&tocZlib)
	if _, err := zw.Write(tocXML); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	var out bytes.Buffer
	hdr := struct {
		Magic             uint32
		HeaderSize        uint16
		Version           uint16
		TOCLengthZlib     uint64
		TOCLength         uint64
		ChecksumAlgorithm uint32
	}{
		Magic:         0x78617221,
		HeaderSize:    28,
		Version:       1,
		TOCLengthZlib: uint64(tocZlib.Len()),
		TOCLength:     uint64(len(tocXML)),
	}
	if err := binary.Write(&out, binary.BigEndian, &hdr); err != nil {
		return err
	}
	out.Write(tocZlib.Bytes())
	out.Write(heap.Bytes())

	return os.WriteFile(path, out.Bytes(), 0644)
}
