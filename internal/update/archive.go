package update

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adamancini/autoupdater/internal/types"
)

// ArchiveRef is a downloaded update archive. Its kind is derived from the
// path extension once, by NewArchiveRef, and never changes.
type ArchiveRef struct {
	Path string
	Kind types.ArchiveKind
}

// NewArchiveRef classifies path by extension. An unknown or missing
// extension is a ConfigError: the run must not proceed with an archive it
// cannot interpret.
func NewArchiveRef(path string) (ArchiveRef, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return ArchiveRef{}, &ConfigError{Path: path, Err: ErrMissingExtension}
	}
	kind, ok := types.KindForExtension(ext)
	if !ok {
		return ArchiveRef{}, &ConfigError{Path: path, Err: fmt.Errorf("%w %q", ErrUnsupportedArchive, ext)}
	}
	return ArchiveRef{Path: path, Kind: kind}, nil
}

// ParseArchiveRefs classifies every path, failing on the first one that
// cannot be interpreted. Order is preserved.
func ParseArchiveRefs(paths []string) ([]ArchiveRef, error) {
	refs := make([]ArchiveRef, 0, len(paths))
	for _, p := range paths {
		ref, err := NewArchiveRef(p)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (a ArchiveRef) String() string {
	return fmt.Sprintf("%s (%s)", a.Path, a.Kind)
}

// ExtractorFor returns the extractor for kind.
func ExtractorFor(kind types.ArchiveKind) (Extractor, error) {
	switch kind {
	case types.ArchiveKindTarGz:
		return TarGzExtractor{}, nil
	case types.ArchiveKindZip:
		return ZipExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: no extractor for kind %q", ErrUnsupportedArchive, kind)
	}
}

// Extract unpacks ref into dst using the extractor for its kind.
func Extract(ref ArchiveRef, dst string) error {
	ex, err := ExtractorFor(ref.Kind)
	if err != nil {
		return err
	}
	return ex.Extract(ref, dst)
}

// writeFile writes r to target with the given permissions, replacing any
// file or symlink already there.
func writeFile(target string, r io.Reader, perm fs.FileMode, modTime time.Time) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	removeExisting(target)

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile applies the umask; the archive's bits win.
	if err := os.Chmod(target, perm); err != nil {
		return err
	}
	if !modTime.IsZero() {
		_ = os.Chtimes(target, modTime, modTime)
	}
	return nil
}

func writeSymlink(target, linkname string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	removeExisting(target)
	return os.Symlink(linkname, target)
}

// removeExisting clears a non-directory at target so the next write does
// not follow an old symlink.
func removeExisting(target string) {
	if info, err := os.Lstat(target); err == nil && !info.IsDir() {
		_ = os.Remove(target)
	}
}

// entryPath maps an archive member name onto the extraction root.
func entryPath(dst, name string) string {
	return filepath.Join(dst, filepath.FromSlash(name))
}
