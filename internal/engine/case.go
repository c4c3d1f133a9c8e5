package engine

import (
	"strings"

	"github.com/keystorm-dev/keystorm-core/internal/engine/history"
)

// CaseMode selects the case transform applied by ConvertCase.
type CaseMode int

const (
	// CaseUpper converts to upper case.
	CaseUpper CaseMode = iota
	// CaseLower converts to lower case.
	CaseLower
	// CaseToggle flips the case of each rune independently.
	CaseToggle
)

// ConvertCase applies mode to the text covered by every non-empty
// selection, as a single undoable batch. Selections whose transformed text
// is unchanged (already the target case, or empty) are skipped.
func (e *Engine) ConvertCase(mode CaseMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}

	sels := e.cursors.All()
	type edit struct {
		r       Range
		oldText string
		newText string
	}
	var edits []edit
	for _, sel := range sels {
		if sel.IsEmpty() {
			continue
		}
		r := sel.Range()
		old := e.buf.TextRange(r.Start, r.End)
		transformed := transformCase(old, mode)
		if transformed == old {
			continue
		}
		edits = append(edits, edit{r: r, oldText: old, newText: transformed})
	}
	if len(edits) == 0 {
		return nil
	}

	// Apply from the highest offset down so earlier ranges stay valid.
	for i, j := 0, len(edits)-1; i < j; i, j = i+1, j-1 {
		edits[i], edits[j] = edits[j], edits[i]
	}

	cursorsBefore := e.cursors.All()
	ops := make(history.OperationList, len(edits))
	for i, ed := range edits {
		ops[i] = history.NewReplaceOperation(ed.r, ed.oldText, ed.newText)
		if _, err := e.buf.Replace(ed.r.Start, ed.r.End, ed.newText); err != nil {
			return err
		}
	}

	e.pushBatch(ops, cursorsBefore, e.cursors.All(), "Convert Case")
	return nil
}

func transformCase(s string, mode CaseMode) string {
	switch mode {
	case CaseUpper:
		return strings.ToUpper(s)
	case CaseLower:
		return strings.ToLower(s)
	case CaseToggle:
		return strings.Map(func(r rune) rune {
			upper := strings.ToUpper(string(r))
			lower := strings.ToLower(string(r))
			if string(r) == upper && upper != lower {
				return []rune(lower)[0]
			}
			return []rune(upper)[0]
		}, s)
	default:
		return s
	}
}
