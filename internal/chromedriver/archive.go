package chromedriver

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

type EntryNotFoundError struct {
	Entry string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("archive has no entry named %s", e.Entry)
}

func NewEntryNotFoundError(entry string) error {
	return &EntryNotFoundError{
		Entry: entry,
	}
}

// extractEntry writes the first archive entry whose base name is entry to a temporary file in dir
// and returns its path. The caller owns the temporary file.
func extractEntry(archive []byte, entry, dir string) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return "", fmt.Errorf("failure reading zip archive: %w", err)
	}
	for _, f := range reader.File {
		if f.FileInfo().IsDir() || path.Base(f.Name) != entry {
			continue
		}
		return writeTemp(f, dir)
	}
	return "", NewEntryNotFoundError(entry)
}

func writeTemp(f *zip.File, dir string) (string, error) {
	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failure opening archive entry %s: %w", f.Name, err)
	}
	defer src.Close()
	dst, err := os.CreateTemp(dir, "."+filepath.Base(f.Name)+"-*")
	if err != nil {
		return "", fmt.Errorf("failure creating temporary file: %w", err)
	}
	if _, err = io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("failure writing archive entry %s: %w", f.Name, err)
	}
	if err = dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failure closing temporary file: %w", err)
	}
	return dst.Name(), nil
}
