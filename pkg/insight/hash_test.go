package insight

import (
	"testing"

	"github.com/google/uuid"
)

func TestContentHashStable(t *testing.T) {
	parent := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	a := ContentHash(parent, "risk", "Budget overrun in Q3")
	b := ContentHash(parent, "risk", "  budget overrun in q3 ")

	if a != b {
		t.Errorf("hash not normalization-stable: %s vs %s", a, b)
	}
}

func TestContentHashDiscriminates(t *testing.T) {
	parent := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	other := uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

	base := ContentHash(parent, "risk", "Budget overrun")

	if ContentHash(other, "risk", "Budget overrun") == base {
		t.Error("different parents must hash differently")
	}
	if ContentHash(parent, "decision", "Budget overrun") == base {
		t.Error("different types must hash differently")
	}
	if ContentHash(parent, "risk", "Headcount freeze") == base {
		t.Error("different titles must hash differently")
	}
}
