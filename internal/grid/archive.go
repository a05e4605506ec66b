package grid

import (
	"archive/zip"
	"fmt"
	"io"
)

// ArchiveFile is one named entry for the export archive.
type ArchiveFile struct {
	Name string
	Data []byte
}

// WriteArchive bundles the given files into a ZIP stream. Page images are
// already compressed, so entries are stored rather than deflated.
func WriteArchive(w io.Writer, files []ArchiveFile) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:   f.Name,
			Method: zip.Store,
		})
		if err != nil {
			return fmt.Errorf("create archive entry %s: %w", f.Name, err)
		}
		if _, err := entry.Write(f.Data); err != nil {
			return fmt.Errorf("write archive entry %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}
