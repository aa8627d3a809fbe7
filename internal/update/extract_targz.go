package update

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// TarGzExtractor unpacks gzip-compressed tar streams.
type TarGzExtractor struct{}

// Extract decompresses ref and unpacks every entry under dst, keeping the
// archive's directory layout.
func (TarGzExtractor) Extract(ref ArchiveRef, dst string) error {
	f, err := os.Open(ref.Path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read gzip header: %w", err)
	}
	defer func() { _ = gz.Close() }()

	return untar(tar.NewReader(gz), dst)
}

func untar(tr *tar.Reader, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		target := entryPath(dst, hdr.Name)
		mode := hdr.FileInfo().Mode()

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", hdr.Name, err)
			}
			_ = os.Chmod(target, mode.Perm()|0o700)
		case tar.TypeReg:
			if err := writeFile(target, tr, mode.Perm(), hdr.ModTime); err != nil {
				return fmt.Errorf("failed to write %s: %w", hdr.Name, err)
			}
		case tar.TypeSymlink:
			if err := writeSymlink(target, hdr.Linkname); err != nil {
				return fmt.Errorf("failed to link %s: %w", hdr.Name, err)
			}
		case tar.TypeLink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			removeExisting(target)
			if err := os.Link(entryPath(dst, hdr.Linkname), target); err != nil {
				return fmt.Errorf("failed to link %s: %w", hdr.Name, err)
			}
		default:
			// Devices, fifos and pax globals carry no application files.
		}
	}
}
