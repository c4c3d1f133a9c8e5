package engine

import "github.com/keystorm-dev/keystorm-core/internal/engine/layout"

// SetShaper installs a new Layout Oracle shaper and rescales every cursor's
// DesiredX by the ratio of the new reference cell width to the old one, so
// cursors parked in virtual space (e.g. past the end of a short line) land
// on the same logical column after a font or zoom change rather than
// snapping to a stale pixel coordinate.
func (e *Engine) SetShaper(shaper layout.Shaper) {
	e.mu.Lock()
	defer e.mu.Unlock()

	oldWidth := e.oracle.ReferenceCellWidth()
	e.oracle = layout.NewOracle(shaper)
	newWidth := e.oracle.ReferenceCellWidth()

	if oldWidth <= 0 || newWidth == oldWidth {
		return
	}
	ratio := newWidth / oldWidth

	sels := e.cursors.All()
	changed := false
	for i, sel := range sels {
		if sel.DesiredX < 0 {
			continue
		}
		sels[i] = sel.WithDesiredX(sel.DesiredX * ratio)
		changed = true
	}
	if changed {
		e.cursors.SetAll(sels)
	}
}
