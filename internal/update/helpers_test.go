package update

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// fixtureEntry is one archive member. Names ending in "/" are directories.
type fixtureEntry struct {
	Name    string
	Content string
	Mode    os.FileMode
	Link    string // symlink target; makes the entry a symlink
}

func writeTarGz(t *testing.T, path string, entries []fixtureEntry) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: int64(modeOr(e.Mode, 0644))}
		switch {
		case e.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Link
			hdr.Mode = 0777
		case strings.HasSuffix(e.Name, "/"):
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0755
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Content))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("Failed to write tar header: %v", err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Content)); err != nil {
				t.Fatalf("Failed to write tar content: %v", err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("Failed to close tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("Failed to close gzip writer: %v", err)
	}
}

func writeZip(t *testing.T, path string, entries []fixtureEntry) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate}
		content := e.Content
		switch {
		case e.Link != "":
			hdr.SetMode(os.ModeSymlink | 0777)
			content = e.Link
		case strings.HasSuffix(e.Name, "/"):
			hdr.SetMode(os.ModeDir | 0755)
		default:
			hdr.SetMode(modeOr(e.Mode, 0644))
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("Failed to create zip entry: %v", err)
		}
		if !strings.HasSuffix(e.Name, "/") {
			if _, err := w.Write([]byte(content)); err != nil {
				t.Fatalf("Failed to write zip content: %v", err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
}

func modeOr(m, def os.FileMode) os.FileMode {
	if m == 0 {
		return def
	}
	return m
}

// snapshot returns relative path -> content for every file under root, and
// "relative/" -> "" for every directory.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()

	out := make(map[string]string)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return err
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			out[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk %s: %v", root, err)
	}
	return out
}

func assertTree(t *testing.T, root string, want map[string]string) {
	t.Helper()

	got := snapshot(t, root)
	for name, content := range want {
		g, ok := got[name]
		if !ok {
			t.Errorf("missing %s under %s", name, root)
			continue
		}
		if g != content {
			t.Errorf("%s content = %q, want %q", name, g, content)
		}
	}
	for name := range got {
		if _, ok := want[name]; !ok {
			t.Errorf("unexpected %s under %s", name, root)
		}
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
