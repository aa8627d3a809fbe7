package update

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zip"
)

// ZipExtractor unpacks zip containers.
type ZipExtractor struct{}

// Extract unpacks every member of ref under dst, keeping the archive's
// directory layout.
func (ZipExtractor) Extract(ref ArchiveRef, dst string) error {
	r, err := zip.OpenReader(ref.Path)
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
	}
	defer func() { _ = r.Close() }()

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}

	for _, f := range r.File {
		if err := extractZipEntry(f, dst); err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractZipEntry(f *zip.File, dst string) error {
	target := entryPath(dst, f.Name)
	mode := f.Mode()

	if mode.IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	if mode&os.ModeSymlink != 0 {
		linkname, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		return writeSymlink(target, string(linkname))
	}

	perm := mode.Perm()
	if perm == 0 {
		// Archives written on Windows carry no unix bits.
		perm = 0o644
	}
	return writeFile(target, rc, perm, f.Modified)
}
