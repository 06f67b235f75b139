package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

// buildZip assembles an in-memory zip with members in the given order.
func buildZip(t *testing.T, members []struct {
	name string
	body string
}) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, m := range members {
		f, err := w.Create(m.name)
		if err != nil {
			t.Fatalf("zip create %s: %v", m.name, err)
		}
		if _, err := f.Write([]byte(m.body)); err != nil {
			t.Fatalf("zip write %s: %v", m.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestWalkBuildsTree(t *testing.T) {
	data := buildZip(t, []struct {
		name string
		body string
	}{
		{"a/", ""},
		{"a/b.csv", "x\n1\n"},
		{"a/c.txt", "ignored"},
		{"d.pdf", "%PDF-1.4"},
	})

	result, err := Walk("upload.zip", data, "analyst")
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}

	root := result.Root
	if root.Name != "upload" {
		t.Errorf("root name = %q, want container extension stripped", root.Name)
	}
	if !root.IsDir {
		t.Errorf("root is not a folder")
	}
	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2 (folder a, file d.pdf)", len(root.Children))
	}

	a := root.Find("a")
	if a == nil || !a.IsDir {
		t.Fatalf("folder a missing: %+v", a)
	}
	if len(a.Children) != 1 {
		t.Fatalf("folder a has %d children, want 1 (c.txt dropped)", len(a.Children))
	}

	b := root.Find("a/b.csv")
	if b == nil || b.IsDir || b.FileType != FileTypeCSV {
		t.Fatalf("a/b.csv = %+v, want csv file", b)
	}
	if string(b.Payload) != "x\n1\n" {
		t.Errorf("a/b.csv payload = %q", b.Payload)
	}
	if b.ModifiedBy != "analyst" {
		t.Errorf("a/b.csv attribution = %q, want analyst", b.ModifiedBy)
	}

	d := root.Find("d.pdf")
	if d == nil || d.FileType != FileTypePDF {
		t.Fatalf("d.pdf = %+v, want pdf file", d)
	}
	if root.Find("a/c.txt") != nil {
		t.Errorf("a/c.txt present, want unsupported extension dropped")
	}
	if result.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", result.Dropped)
	}
}

func TestWalkSkipsOrphanedEntries(t *testing.T) {
	// No "deep/" folder member precedes the file, so the file's parent is
	// unknown at the time it is walked
	data := buildZip(t, []struct {
		name string
		body string
	}{
		{"deep/orphan.csv", "x\n1\n"},
		{"ok.csv", "x\n2\n"},
	})

	result, err := Walk("t.zip", data, "tester")
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if result.Root.Find("deep") != nil || result.Root.Find("deep/orphan.csv") != nil {
		t.Errorf("orphaned entry materialized in tree")
	}
	if result.Root.Find("ok.csv") == nil {
		t.Errorf("sibling entry after orphan missing")
	}
}

func TestWalkChildrenKeepDiscoveryOrder(t *testing.T) {
	data := buildZip(t, []struct {
		name string
		body string
	}{
		{"z.csv", "x\n1\n"},
		{"a.pdf", "%PDF"},
		{"m.csv", "x\n2\n"},
	})

	result, err := Walk("t.zip", data, "tester")
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	var got []string
	for _, child := range result.Root.Children {
		got = append(got, child.Name)
	}
	want := []string{"z.csv", "a.pdf", "m.csv"}
	if len(got) != len(want) {
		t.Fatalf("children = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("children = %v, want decoder order %v", got, want)
		}
	}
}

func TestWalkExtensionCaseInsensitive(t *testing.T) {
	data := buildZip(t, []struct {
		name string
		body string
	}{
		{"REPORT.CSV", "x\n1\n"},
		{"doc.PDF", "%PDF"},
	})

	result, err := Walk("t.zip", data, "tester")
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if n := result.Root.Find("REPORT.CSV"); n == nil || n.FileType != FileTypeCSV {
		t.Errorf("REPORT.CSV = %+v, want csv", n)
	}
	if n := result.Root.Find("doc.PDF"); n == nil || n.FileType != FileTypePDF {
		t.Errorf("doc.PDF = %+v, want pdf", n)
	}
}

func TestWalkTarGzip(t *testing.T) {
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	mod := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := tw.WriteHeader(&tar.Header{
		Name: "logs/", Typeflag: tar.TypeDir, Mode: 0o755, ModTime: mod,
	}); err != nil {
		t.Fatalf("tar dir header: %v", err)
	}
	body := []byte("x\n1\n")
	if err := tw.WriteHeader(&tar.Header{
		Name: "logs/a.csv", Typeflag: tar.TypeReg, Mode: 0o644,
		Size: int64(len(body)), ModTime: mod,
	}); err != nil {
		t.Fatalf("tar file header: %v", err)
	}
	if _, err := tw.Write(body); err != nil {
		t.Fatalf("tar write: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}

	var gzBuf bytes.Buffer
	gz := gzip.NewWriter(&gzBuf)
	if _, err := gz.Write(tarBuf.Bytes()); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	result, err := Walk("logs.tar.gz", gzBuf.Bytes(), "ops")
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if result.Root.Name != "logs" {
		t.Errorf("root name = %q, want logs", result.Root.Name)
	}
	n := result.Root.Find("logs/a.csv")
	if n == nil {
		t.Fatalf("logs/a.csv missing from tar.gz tree")
	}
	if !n.CreatedAt.Equal(mod) {
		t.Errorf("CreatedAt = %v, want member mod time %v", n.CreatedAt, mod)
	}
}

func TestWalkRejectsUnknownContainer(t *testing.T) {
	if _, err := Walk("notes.txt", []byte("plain text"), "x"); !errors.Is(err, ErrUnsupportedFile) {
		t.Errorf("error = %v, want ErrUnsupportedFile", err)
	}
}

func TestWalkCorruptZip(t *testing.T) {
	if _, err := Walk("bad.zip", []byte("PK\x03\x04 truncated garbage"), "x"); !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}
