package engine

import (
	"regexp"
	"strings"

	"github.com/keystorm-dev/keystorm-core/internal/engine/buffer"
	"github.com/keystorm-dev/keystorm-core/internal/engine/history"
)

// FindOptions configures a search.
type FindOptions struct {
	// MatchCase requires exact case matching. Defaults to false (ignore case).
	MatchCase bool

	// WholeWord requires the match to be bounded by non-word bytes on both
	// sides, per isWordChar.
	WholeWord bool

	// Regex treats Pattern as a Go regular expression instead of a literal
	// string.
	Regex bool
}

// Find searches for the next occurrence of pattern starting at (and
// including) from, wrapping around the end of the document if no match is
// found before it. It reports the match range and whether a match was
// found.
func (e *Engine) Find(pattern string, from ByteOffset, opts FindOptions) (Range, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.findForwardLocked(pattern, from, opts)
}

// findForwardLocked is the search used by both Find and
// SelectNextOccurrence. Must be called with e.mu held for reading.
func (e *Engine) findForwardLocked(pattern string, from ByteOffset, opts FindOptions) (Range, bool, error) {
	text := e.buf.Text()
	if pattern == "" || len(text) == 0 {
		return Range{}, false, nil
	}

	if opts.Regex {
		re, err := compileFindRegex(pattern, opts)
		if err != nil {
			return Range{}, false, &RegexInvalid{Pattern: pattern, Err: err}
		}
		if loc := re.FindStringIndex(text[min64(from, ByteOffset(len(text))):]); loc != nil {
			start := from + ByteOffset(loc[0])
			end := from + ByteOffset(loc[1])
			return buffer.NewRange(start, end), true, nil
		}
		if loc := re.FindStringIndex(text); loc != nil {
			return buffer.NewRange(ByteOffset(loc[0]), ByteOffset(loc[1])), true, nil
		}
		return Range{}, false, nil
	}

	haystack, needle := text, pattern
	if !opts.MatchCase {
		haystack = strings.ToLower(text)
		needle = strings.ToLower(pattern)
	}

	if idx := indexFrom(haystack, needle, int(from), opts.WholeWord, text); idx >= 0 {
		return buffer.NewRange(ByteOffset(idx), ByteOffset(idx+len(pattern))), true, nil
	}
	if idx := indexFrom(haystack, needle, 0, opts.WholeWord, text); idx >= 0 && idx < int(from) {
		return buffer.NewRange(ByteOffset(idx), ByteOffset(idx+len(pattern))), true, nil
	}
	return Range{}, false, nil
}

// findAllLocked returns every non-overlapping match of pattern in the
// buffer, in document order. Must be called with e.mu held for reading.
func (e *Engine) findAllLocked(pattern string, opts FindOptions) ([]Range, error) {
	text := e.buf.Text()
	var ranges []Range

	if opts.Regex {
		re, err := compileFindRegex(pattern, opts)
		if err != nil {
			return nil, &RegexInvalid{Pattern: pattern, Err: err}
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			ranges = append(ranges, buffer.NewRange(ByteOffset(loc[0]), ByteOffset(loc[1])))
		}
		return ranges, nil
	}

	if pattern == "" {
		return nil, nil
	}

	haystack, needle := text, pattern
	if !opts.MatchCase {
		haystack = strings.ToLower(text)
		needle = strings.ToLower(pattern)
	}

	pos := 0
	for {
		rel := strings.Index(haystack[pos:], needle)
		if rel < 0 {
			break
		}
		idx := pos + rel
		if !opts.WholeWord || isWordBoundaryMatch(text, idx, len(pattern)) {
			ranges = append(ranges, buffer.NewRange(ByteOffset(idx), ByteOffset(idx+len(pattern))))
		}
		pos = idx + len(needle)
	}
	return ranges, nil
}

func indexFrom(haystack, needle string, from int, wholeWord bool, original string) int {
	if from > len(haystack) {
		from = len(haystack)
	}
	offset := from
	for {
		rel := strings.Index(haystack[offset:], needle)
		if rel < 0 {
			return -1
		}
		idx := offset + rel
		if !wholeWord || isWordBoundaryMatch(original, idx, len(needle)) {
			return idx
		}
		offset = idx + 1
		if offset > len(haystack) {
			return -1
		}
	}
}

func isWordBoundaryMatch(text string, start, length int) bool {
	if start > 0 && isWordChar(text[start-1]) {
		return false
	}
	end := start + length
	if end < len(text) && isWordChar(text[end]) {
		return false
	}
	return true
}

// compileFindRegex compiles pattern for Regex-mode search, prefixing it
// with the inline case-insensitive flag unless MatchCase is set.
func compileFindRegex(pattern string, opts FindOptions) (*regexp.Regexp, error) {
	if !opts.MatchCase {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

func min64(a, b ByteOffset) ByteOffset {
	if a < b {
		return a
	}
	return b
}

// ReplaceAll replaces every match of pattern with replacement in a single
// undoable batch. Matches are collected in one forward pass and then
// applied last-to-first so earlier offsets stay valid. Overlapping matches
// are not re-scanned once consumed by a prior match.
func (e *Engine) ReplaceAll(pattern, replacement string, opts FindOptions) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return 0, ErrReadOnly
	}

	ranges, err := e.findAllLocked(pattern, opts)
	if err != nil {
		return 0, err
	}
	if len(ranges) == 0 {
		return 0, nil
	}

	// Both the operation log and the buffer mutation walk matches from the
	// last one to the first, so each replace's recorded range is still
	// valid relative to the original document when it runs.
	cursorsBefore := e.cursors.All()
	ops := make(history.OperationList, len(ranges))
	for i := len(ranges) - 1; i >= 0; i-- {
		r := ranges[i]
		old := e.buf.TextRange(r.Start, r.End)
		ops[len(ranges)-1-i] = history.NewReplaceOperation(r, old, replacement)
		if _, err := e.buf.Replace(r.Start, r.End, replacement); err != nil {
			return 0, err
		}
	}

	e.pushBatch(ops, cursorsBefore, e.cursors.All(), "Replace All")

	return len(ranges), nil
}
