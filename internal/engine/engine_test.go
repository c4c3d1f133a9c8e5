package engine

import (
	"strings"
	"testing"

	"github.com/keystorm-dev/keystorm-core/internal/engine/buffer"
	"github.com/keystorm-dev/keystorm-core/internal/engine/cursor"
)

func TestNewEngineDefaults(t *testing.T) {
	e := New()
	if e.Len() != 0 {
		t.Errorf("expected empty buffer, got len %d", e.Len())
	}
	if e.TabWidth() != DefaultTabWidth {
		t.Errorf("expected default tab width %d, got %d", DefaultTabWidth, e.TabWidth())
	}
}

func TestNewEngineWithContent(t *testing.T) {
	e := New(WithContent("hello\nworld"))
	if e.Text() != "hello\nworld" {
		t.Errorf("unexpected content: %q", e.Text())
	}
	if e.LineCount() != 2 {
		t.Errorf("expected 2 lines, got %d", e.LineCount())
	}
}

func TestNewFromReader(t *testing.T) {
	e, err := NewFromReader(strings.NewReader("abc\ndef"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "abc\ndef" {
		t.Errorf("unexpected content: %q", e.Text())
	}
}

func TestApplyEditInsert(t *testing.T) {
	e := New(WithContent("hello"))
	_, err := e.ApplyEdit(buffer.NewInsert(5, " world"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "hello world" {
		t.Errorf("unexpected content: %q", e.Text())
	}
}

func TestApplyEditUndoRedo(t *testing.T) {
	e := New(WithContent("hello"))
	if _, err := e.ApplyEdit(buffer.NewInsert(5, " world")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if e.Text() != "hello" {
		t.Errorf("after undo, expected %q, got %q", "hello", e.Text())
	}

	if err := e.Redo(); err != nil {
		t.Fatalf("redo failed: %v", err)
	}
	if e.Text() != "hello world" {
		t.Errorf("after redo, expected %q, got %q", "hello world", e.Text())
	}
}

func TestApplyEditsAtomicUndo(t *testing.T) {
	e := New(WithContent("abcdef"))
	edits := []Edit{
		buffer.NewDelete(4, 6), // "ef"
		buffer.NewDelete(0, 2), // "ab"
	}
	if err := e.ApplyEdits(edits); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "cd" {
		t.Errorf("expected %q, got %q", "cd", e.Text())
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if e.Text() != "abcdef" {
		t.Errorf("expected full undo in one step, got %q", e.Text())
	}
}

func TestUndoRedoEmptyErrors(t *testing.T) {
	e := New(WithContent("x"))
	if err := e.Undo(); err == nil {
		t.Error("expected error undoing empty history")
	}
	if err := e.Redo(); err == nil {
		t.Error("expected error redoing empty history")
	}
}

func TestReadOnlyRejectsEdits(t *testing.T) {
	e := New(WithContent("x"), WithReadOnly())
	if _, err := e.ApplyEdit(buffer.NewInsert(1, "y")); err != ErrReadOnly {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if err := e.InsertAtCursors("y"); err != ErrReadOnly {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
}

func TestInsertAtCursors(t *testing.T) {
	e := New(WithContent("hello"))
	e.SetPrimaryCursor(5)
	if err := e.InsertAtCursors(" world"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "hello world" {
		t.Errorf("unexpected content: %q", e.Text())
	}
}

func TestInsertAtCursorsMulti(t *testing.T) {
	e := New(WithContent("aa\nbb\ncc"))
	e.SetCursors(cursor.NewCursorSetFromSlice([]cursor.Selection{
		cursor.NewCursorSelection(2),
		cursor.NewCursorSelection(5),
		cursor.NewCursorSelection(8),
	}))
	if err := e.InsertAtCursors("!"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "aa!\nbb!\ncc!" {
		t.Errorf("unexpected content: %q", e.Text())
	}
}

func TestBackspaceDeletesSelection(t *testing.T) {
	e := New(WithContent("hello world"))
	e.SetPrimarySelection(cursor.NewSelection(0, 5))
	if err := e.Backspace(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != " world" {
		t.Errorf("unexpected content: %q", e.Text())
	}
}

func TestBackspaceDeletesOneCharacter(t *testing.T) {
	e := New(WithContent("hello"))
	e.SetPrimaryCursor(5)
	if err := e.Backspace(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "hell" {
		t.Errorf("unexpected content: %q", e.Text())
	}
}

func TestDeleteForward(t *testing.T) {
	e := New(WithContent("hello"))
	e.SetPrimaryCursor(0)
	if err := e.DeleteForward(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "ello" {
		t.Errorf("unexpected content: %q", e.Text())
	}
}

func TestDeleteLines(t *testing.T) {
	e := New(WithContent("one\ntwo\nthree"))
	e.SetPrimaryCursor(e.LineStartOffset(1))
	if err := e.DeleteLines(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "one\nthree" {
		t.Errorf("unexpected content: %q", e.Text())
	}
}

func TestDeleteLinesLastLine(t *testing.T) {
	e := New(WithContent("one\ntwo\nthree"))
	e.SetPrimaryCursor(e.LineStartOffset(2))
	if err := e.DeleteLines(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "one\ntwo" {
		t.Errorf("unexpected content: %q", e.Text())
	}
}

func TestMoveLinesUpDown(t *testing.T) {
	e := New(WithContent("one\ntwo\nthree"))
	e.SetPrimaryCursor(e.LineStartOffset(1))

	if err := e.MoveLinesUp(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "two\none\nthree" {
		t.Errorf("unexpected content after move up: %q", e.Text())
	}

	if err := e.MoveLinesDown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "one\ntwo\nthree" {
		t.Errorf("unexpected content after move down: %q", e.Text())
	}
}

func TestMoveLinesUpAtTopIsNoop(t *testing.T) {
	e := New(WithContent("one\ntwo"))
	e.SetPrimaryCursor(0)
	if err := e.MoveLinesUp(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "one\ntwo" {
		t.Errorf("expected no-op, got %q", e.Text())
	}
}

func TestDuplicateLinesDown(t *testing.T) {
	e := New(WithContent("one\ntwo"))
	e.SetPrimaryCursor(e.LineStartOffset(0))
	if err := e.DuplicateLinesDown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "one\none\ntwo" {
		t.Errorf("unexpected content: %q", e.Text())
	}
	// The cursor must land on the new copy (the second "one"), not stay
	// on the untouched original.
	if got := e.PrimaryCursor(); got != e.LineStartOffset(1) {
		t.Errorf("expected cursor on the new copy at %d, got %d", e.LineStartOffset(1), got)
	}
}

func TestDuplicateLinesUp(t *testing.T) {
	e := New(WithContent("one\ntwo"))
	e.SetPrimaryCursor(e.LineStartOffset(0))
	if err := e.DuplicateLinesUp(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "one\none\ntwo" {
		t.Errorf("unexpected content: %q", e.Text())
	}
	// The cursor must stay on the new copy (the first "one"), not follow
	// the original down.
	if got := e.PrimaryCursor(); got != e.LineStartOffset(0) {
		t.Errorf("expected cursor on the new copy at %d, got %d", e.LineStartOffset(0), got)
	}
}

func TestConvertCaseUpper(t *testing.T) {
	e := New(WithContent("hello world"))
	e.SetPrimarySelection(cursor.NewSelection(0, 5))
	if err := e.ConvertCase(CaseUpper); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "HELLO world" {
		t.Errorf("unexpected content: %q", e.Text())
	}
}

func TestConvertCaseToggle(t *testing.T) {
	e := New(WithContent("Hello"))
	e.SetPrimarySelection(cursor.NewSelection(0, 5))
	if err := e.ConvertCase(CaseToggle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "hELLO" {
		t.Errorf("unexpected content: %q", e.Text())
	}
}

func TestFindLiteral(t *testing.T) {
	e := New(WithContent("the quick brown fox"))
	r, ok, err := e.Find("quick", 0, FindOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if r.Start != 4 || r.End != 9 {
		t.Errorf("unexpected range: %v", r)
	}
}

func TestFindWrapsAround(t *testing.T) {
	e := New(WithContent("foo bar foo"))
	r, ok, err := e.Find("foo", 1, FindOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || r.Start != 8 {
		t.Errorf("expected match at offset 8, got %v ok=%v", r, ok)
	}
}

func TestFindRegexInvalid(t *testing.T) {
	e := New(WithContent("abc"))
	_, _, err := e.Find("(", 0, FindOptions{Regex: true})
	if err == nil {
		t.Fatal("expected error for invalid regex")
	}
	var re *RegexInvalid
	if !asRegexInvalid(err, &re) {
		t.Errorf("expected *RegexInvalid, got %T", err)
	}
}

func asRegexInvalid(err error, target **RegexInvalid) bool {
	re, ok := err.(*RegexInvalid)
	if ok {
		*target = re
	}
	return ok
}

func TestFindRegexIgnoresCaseByDefault(t *testing.T) {
	e := New(WithContent("the Quick brown fox"))
	r, ok, err := e.Find("q[a-z]+", 0, FindOptions{Regex: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || r.Start != 4 || r.End != 9 {
		t.Errorf("expected case-insensitive match at [4,9), got %v ok=%v", r, ok)
	}
}

func TestFindRegexMatchCaseIsCaseSensitive(t *testing.T) {
	e := New(WithContent("the Quick brown fox"))
	_, ok, err := e.Find("q[a-z]+", 0, FindOptions{Regex: true, MatchCase: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no match with MatchCase set against differently-cased text")
	}

	r, ok, err := e.Find("Q[a-z]+", 0, FindOptions{Regex: true, MatchCase: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || r.Start != 4 || r.End != 9 {
		t.Errorf("expected exact-case match at [4,9), got %v ok=%v", r, ok)
	}
}

func TestReplaceAll(t *testing.T) {
	e := New(WithContent("cat cat cat"))
	n, err := e.ReplaceAll("cat", "dog", FindOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 replacements, got %d", n)
	}
	if e.Text() != "dog dog dog" {
		t.Errorf("unexpected content: %q", e.Text())
	}
}

func TestReplaceAllUndo(t *testing.T) {
	e := New(WithContent("cat cat"))
	if _, err := e.ReplaceAll("cat", "elephant", FindOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if e.Text() != "cat cat" {
		t.Errorf("expected undo to restore original text, got %q", e.Text())
	}
}

func TestSelectNextOccurrence(t *testing.T) {
	e := New(WithContent("foo bar foo baz"))
	e.SetPrimarySelection(cursor.NewSelection(0, 3)) // "foo"
	if err := e.SelectNextOccurrence(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.CursorCount() != 2 {
		t.Fatalf("expected 2 cursors, got %d", e.CursorCount())
	}
}

func TestPasteRectangular(t *testing.T) {
	e := New(WithContent("aaaa\nbbbb\ncccc"))
	e.SetPrimaryCursor(e.LineStartOffset(0) + 2)
	if err := e.PasteRectangular("X\nY\nZ"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "aaXaa\nbbYbb\nccZcc" {
		t.Errorf("unexpected content: %q", e.Text())
	}
	if e.CursorCount() != 3 {
		t.Errorf("expected 3 cursors, got %d", e.CursorCount())
	}
}

func TestPasteRectangularCaretPositions(t *testing.T) {
	e := New(WithContent("abc\ndef\nghi\n"))
	e.SetPrimaryCursor(1)
	if err := e.PasteRectangular("PQ\nRS\nTU"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "aPQbc\ndRSef\ngTUhi\n" {
		t.Errorf("unexpected content: %q", e.Text())
	}

	want := []ByteOffset{3, 9, 15}
	cursors := e.Cursors().All()
	if len(cursors) != len(want) {
		t.Fatalf("expected %d cursors, got %d", len(want), len(cursors))
	}
	for i, sel := range cursors {
		if sel.Cursor() != want[i] {
			t.Errorf("cursor %d: expected caret at %d, got %d", i, want[i], sel.Cursor())
		}
	}
}

func TestPasteRectangularPadsShortLines(t *testing.T) {
	e := New(WithContent("ccc\nbb\na"))
	e.SetPrimaryCursor(e.LineEndOffset(0)) // col 3, end of "ccc"
	if err := e.PasteRectangular("X\nY\nZ"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "cccX\nbb Y\na  Z" {
		t.Errorf("unexpected content: %q", e.Text())
	}
}

func TestMarkSavePointAndIsModified(t *testing.T) {
	e := New(WithContent("x"))
	if e.IsModified() {
		t.Error("fresh engine should not be modified")
	}
	if _, err := e.ApplyEdit(buffer.NewInsert(1, "y")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.IsModified() {
		t.Error("expected modified after edit")
	}
	e.MarkSavePoint()
	if e.IsModified() {
		t.Error("expected not modified right after save point")
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if !e.IsModified() {
		t.Error("expected modified after undoing past the save point")
	}
}

func TestSetShaperRescalesDesiredX(t *testing.T) {
	e := New(WithContent("x"))
	e.SetPrimarySelection(cursor.NewSelection(0, 0).WithDesiredX(10).WithVirtual(true))
	e.SetShaper(doubleWidthShaper{})
	sel := e.PrimarySelection()
	if sel.DesiredX != 20 {
		t.Errorf("expected DesiredX scaled to 20, got %v", sel.DesiredX)
	}
}

type doubleWidthShaper struct{}

func (doubleWidthShaper) XInLine(line []byte, byteOffsetInLine int) float64 { return 0 }
func (doubleWidthShaper) OffsetInLineFromX(line []byte, targetX float64) int {
	return 0
}
func (doubleWidthShaper) GraphemeStep(line []byte, byteOffsetInLine int, forward bool) int {
	return byteOffsetInLine
}
func (doubleWidthShaper) ReferenceCellWidth() float64 { return 2 }
