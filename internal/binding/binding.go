// Package binding implements the File Binding: opening a path into a fresh
// Engine (encoding detection, binary rejection, line-ending metadata) and
// saving an Engine's content back to disk via a write-temp-then-rename
// sequence that never leaves a half-written file in the original path.
package binding

import (
	"os"
	"path/filepath"

	"github.com/keystorm-dev/keystorm-core/internal/applog"
	"github.com/keystorm-dev/keystorm-core/internal/engine"
)

// Binding couples an Engine to the file path it was opened from (or will
// be saved to) and the encoding that path was read with.
type Binding struct {
	Path     string
	Engine   *engine.Engine
	encoding SourceEncoding
}

// Open reads path, decodes it to UTF-8, rejects binary content, and
// returns a Binding with a freshly constructed Engine seeded with that
// content. The Engine's line-ending metadata reflects the file's dominant
// terminator style; existing bytes are never rewritten.
func Open(path string, opts ...engine.Option) (*Binding, error) {
	log := applog.GetLogger().WithComponent("binding")

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("open failed: path=%s err=%v", path, err)
		return nil, &OpenFailed{Path: path, Err: err}
	}

	text, enc, err := detectAndDecode(raw)
	if err != nil {
		log.Warn("decode failed: path=%s err=%v", path, err)
		return nil, &OpenFailed{Path: path, Err: err}
	}

	if isBinary([]byte(text)) {
		log.Warn("refused binary file: path=%s", path)
		return nil, &OpenFailed{Path: path, Err: &binaryFileError{path: path}}
	}

	le := detectLineEnding([]byte(text))
	allOpts := append([]engine.Option{engine.WithContent(text), engine.WithLineEnding(le)}, opts...)
	e := engine.New(allOpts...)
	e.MarkSavePoint()

	log.Debug("opened: path=%s bytes=%d encoding=%d", path, len(raw), enc)

	return &Binding{Path: path, Engine: e, encoding: enc}, nil
}

// Save writes the Engine's current content back to Path: the new content
// is written to a sibling temp file, the temp file is atomically renamed
// over Path, and on any failure the temp file is removed and Path is left
// untouched. On success the Engine's save point is advanced so IsModified
// reports false until the next edit.
func (b *Binding) Save() error {
	log := applog.GetLogger().WithComponent("binding")

	content, err := encodeForSave(b.Engine.Text(), b.encoding)
	if err != nil {
		log.Error("encode failed: path=%s err=%v", b.Path, err)
		return &SaveFailed{Path: b.Path, Stage: WriteFailed, Err: err}
	}

	dir := filepath.Dir(b.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.Path)+".tmp-*")
	if err != nil {
		log.Error("temp create failed: path=%s err=%v", b.Path, err)
		return &SaveFailed{Path: b.Path, Stage: TempCreateFailed, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		log.Error("write failed: path=%s err=%v", b.Path, err)
		return &SaveFailed{Path: b.Path, Stage: WriteFailed, Err: err}
	}
	if err := tmp.Close(); err != nil {
		log.Error("write failed: path=%s err=%v", b.Path, err)
		return &SaveFailed{Path: b.Path, Stage: WriteFailed, Err: err}
	}

	if err := atomicReplace(tmpPath, b.Path); err != nil {
		log.Error("rename failed: path=%s err=%v", b.Path, err)
		return &SaveFailed{Path: b.Path, Stage: RenameFailed, Err: err}
	}

	b.Engine.MarkSavePoint()
	log.Debug("saved: path=%s bytes=%d", b.Path, len(content))
	return nil
}

// SaveAs saves to a new path and rebinds Path to it on success.
func (b *Binding) SaveAs(path string) error {
	old := b.Path
	b.Path = path
	if err := b.Save(); err != nil {
		b.Path = old
		return err
	}
	return nil
}

// IsModified reports whether the bound Engine has unsaved changes.
func (b *Binding) IsModified() bool {
	return b.Engine.IsModified()
}
