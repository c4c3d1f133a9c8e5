package layout

import (
	"testing"

	"github.com/keystorm-dev/keystorm-core/internal/engine/buffer"
)

func TestOracleXOfAndPosFrom(t *testing.T) {
	buf := buffer.NewBufferFromString("abc\ndefgh\nij")
	oracle := NewOracle(NewMonospaceOracle(1, 4))

	// Offset 5 is 'e' on line 1 (0-indexed), column 1.
	x := oracle.XOf(buf, 5)
	if x != 1 {
		t.Errorf("XOf(5) = %v, want 1", x)
	}

	p := oracle.PosFrom(buf, 1, 1)
	if p != 5 {
		t.Errorf("PosFrom(line=1, x=1) = %d, want 5", p)
	}
}

func TestOracleReferenceCellWidth(t *testing.T) {
	oracle := NewOracle(NewMonospaceOracle(1.5, 4))
	if got := oracle.ReferenceCellWidth(); got != 1.5 {
		t.Errorf("ReferenceCellWidth() = %v, want 1.5", got)
	}
}
