// Package jarread pull-parses a jar's entries: the manifest (at most one),
// embedded pom files, and class file paths with timestamps. Class bytecode
// is never retained, keeping memory proportional to entry-path length, not
// jar size.
package jarread

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ClassEntry is a class file's location and timestamps within the jar.
// CreatedAt and ModifiedAt are both set from the entry's modification time
// as archive/zip reports it (see entryTimestamps), so they are equal.
type ClassEntry struct {
	Path       string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// PomFile is an embedded pom.xml or pom.properties, buffered whole since
// there are at most two and both are small.
type PomFile struct {
	Path string // relative to jar root
	Name string // "pom.xml" or "pom.properties", lowercased basename match
	Data []byte
}

// Result is everything downstream analyzers need from one jar.
type Result struct {
	Manifest []byte // raw META-INF/MANIFEST.MF bytes, nil if absent
	Poms     []PomFile
	Classes  []ClassEntry
}

const manifestPath = "META-INF/MANIFEST.MF"

// Read parses jar entries out of the compressed bytes of a jar. zipBytes
// is expected to already be fully buffered in memory by the caller (the
// pipeline reads the jar once so both this and jarhash.Sum can traverse it
// without re-reading from disk).
func Read(zipBytes []byte) (Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return Result{}, fmt.Errorf("open jar as zip: %w", err)
	}

	var res Result
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := path.Base(f.Name)
		lower := strings.ToLower(name)

		switch {
		case f.Name == manifestPath:
			data, err := readEntry(f)
			if err != nil {
				return Result{}, fmt.Errorf("read manifest: %w", err)
			}
			res.Manifest = data
		case lower == "pom.xml" || lower == "pom.properties":
			data, err := readEntry(f)
			if err != nil {
				return Result{}, fmt.Errorf("read %s: %w", f.Name, err)
			}
			res.Poms = append(res.Poms, PomFile{Path: f.Name, Name: lower, Data: data})
		case strings.HasSuffix(lower, ".class"):
			created, modified := entryTimestamps(f)
			res.Classes = append(res.Classes, ClassEntry{
				Path:       f.Name,
				CreatedAt:  created,
				ModifiedAt: modified,
			})
		}
	}
	return res, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// entryTimestamps extracts creation/modification times. archive/zip only
// exposes a single Modified time (from either the legacy DOS fields or an
// NTFS/extended-timestamp extra field, whichever the writer set); jars
// rarely distinguish creation from modification, so both are set to the
// same value. The timestamp analyzer takes the max of the two - a no-op
// when they're equal, but keeps the field distinct in case a future
// producer sets extended NTFS create times.
func entryTimestamps(f *zip.File) (created, modified time.Time) {
	return f.Modified, f.Modified
}
