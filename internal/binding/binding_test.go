package binding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/keystorm-dev/keystorm-core/internal/engine/buffer"
)

func TestOpenUTF8NoBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("hello\nworld"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Engine.Text() != "hello\nworld" {
		t.Errorf("unexpected content: %q", b.Engine.Text())
	}
	if b.encoding != EncodingUTF8 {
		t.Errorf("expected EncodingUTF8, got %v", b.encoding)
	}
	if b.IsModified() {
		t.Error("freshly opened file should not be modified")
	}
}

func TestOpenStripsUTF8BOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.txt")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hi")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Engine.Text() != "hi" {
		t.Errorf("unexpected content: %q", b.Engine.Text())
	}
	if b.encoding != EncodingUTF8BOM {
		t.Errorf("expected EncodingUTF8BOM, got %v", b.encoding)
	}
}

func TestOpenRejectsBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bin.dat")
	raw := []byte{0x00, 0x01, 0x02, 'h', 'i'}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := Open(path)
	if err == nil {
		t.Fatal("expected an error opening binary content")
	}
	var of *OpenFailed
	if !asOpenFailed(err, &of) {
		t.Fatalf("expected *OpenFailed, got %T", err)
	}
}

func asOpenFailed(err error, target **OpenFailed) bool {
	of, ok := err.(*OpenFailed)
	if ok {
		*target = of
	}
	return ok
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestOpenDetectsCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.txt")
	if err := os.WriteFile(path, []byte("one\r\ntwo\r\nthree"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Engine.LineEnding() != buffer.LineEndingCRLF {
		t.Errorf("expected CRLF, got %v", b.Engine.LineEnding())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := b.Engine.InsertAtCursors("!"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if !b.IsModified() {
		t.Fatal("expected modified after edit")
	}

	if err := b.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if b.IsModified() {
		t.Error("expected unmodified right after save")
	}

	on, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if string(on) != b.Engine.Text() {
		t.Errorf("on-disk content %q does not match engine content %q", on, b.Engine.Text())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected Save to leave exactly one file behind, got %d", len(entries))
	}
}

func TestSaveAsRebindsPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orig.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newPath := filepath.Join(dir, "renamed.txt")
	if err := b.SaveAs(newPath); err != nil {
		t.Fatalf("save as failed: %v", err)
	}
	if b.Path != newPath {
		t.Errorf("expected Path to be rebound to %q, got %q", newPath, b.Path)
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Errorf("expected new file to exist: %v", err)
	}
}

func TestSaveAsFailureRestoresPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orig.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	badPath := filepath.Join(dir, "no-such-subdir", "file.txt")
	if err := b.SaveAs(badPath); err == nil {
		t.Fatal("expected an error saving into a nonexistent directory")
	}
	if b.Path != path {
		t.Errorf("expected Path to be restored to %q, got %q", path, b.Path)
	}
}
