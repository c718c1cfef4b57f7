package zip

import (
	"archive/zip"
	"fmt"
	"io"
	"time"
)

// Entry is one file in an archive. Open is called once, when the entry is
// written, so large files are streamed rather than buffered.
type Entry struct {
	Filename string
	Modified time.Time
	// Store skips compression, which suits already compressed media.
	Store bool
	Open  func() (io.ReadCloser, error)
}

// Write streams entries into a zip archive on w.
func Write(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	for _, entry := range entries {
		if err := writeEntry(zw, entry); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("zip: finish archive: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, entry Entry) error {
	header := &zip.FileHeader{Name: entry.Filename, Method: zip.Deflate}
	if entry.Store {
		header.Method = zip.Store
	}
	if !entry.Modified.IsZero() {
		header.Modified = entry.Modified
	}
	dst, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("zip: create %s: %w", entry.Filename, err)
	}
	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("zip: open %s: %w", entry.Filename, err)
	}
	defer src.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("zip: write %s: %w", entry.Filename, err)
	}
	return nil
}
