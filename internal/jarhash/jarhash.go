// Package jarhash computes a compression-independent content hash for a
// jar: a SHA-256 over the concatenation of each entry's *uncompressed*
// bytes, in the zip central directory's enumeration order. Two jars that
// differ only in deflate level or store-vs-deflate hash identically.
package jarhash

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// Sum hashes the uncompressed content of every entry in zipBytes.
func Sum(zipBytes []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return "", fmt.Errorf("open jar as zip: %w", err)
	}

	h := sha256.New()
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := hashEntry(h, f); err != nil {
			return "", fmt.Errorf("hash %s: %w", f.Name, err)
		}
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

func hashEntry(h io.Writer, f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(h, rc)
	return err
}
