package chunker

import (
	"strings"
	"testing"
)

func TestSplitEmptyInput(t *testing.T) {
	if got := Split(""); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
	if got := Split("   \n\t "); got != nil {
		t.Errorf("Split(whitespace) = %v, want nil", got)
	}
}

func TestSplitShortInput(t *testing.T) {
	text := "A short document. It fits in one chunk."
	got := Split(text)
	if len(got) != 1 {
		t.Fatalf("chunk count = %d, want 1", len(got))
	}
	if got[0] != text {
		t.Errorf("chunk = %q, want input unchanged", got[0])
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("The quarterly budget was reviewed in depth. Several risks were flagged by the finance team. ", 40)

	first := Split(text)
	second := Split(text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ across runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs across runs", i)
		}
	}
}

func TestSplitRespectsMaxSize(t *testing.T) {
	text := strings.Repeat("Budget allocation was discussed at length by the team. ", 60)

	chunks := Split(text, WithMaxChunkSize(1000), WithOverlap(200))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > 1000 {
			t.Errorf("chunk %d has %d runes, want <= 1000", i, n)
		}
	}
}

func TestSplitOverlapInvariant(t *testing.T) {
	text := strings.Repeat("Every sentence here carries roughly the same weight. ", 80)

	chunks := Split(text, WithMaxChunkSize(1000), WithOverlap(200))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 0; i < len(chunks)-1; i++ {
		tail := []rune(chunks[i])
		if len(tail) > 200 {
			tail = tail[len(tail)-200:]
		}
		// The head of the next chunk must share content with the previous tail.
		if !strings.Contains(string(tail), firstRunes(chunks[i+1], 40)) {
			t.Errorf("chunk %d head not found in chunk %d tail", i+1, i)
		}
	}
}

func TestSplitCoverage(t *testing.T) {
	sentences := []string{
		"Alpha release shipped on schedule.",
		"Beta feedback raised two critical bugs.",
		"The retrospective produced five action items.",
		"Headcount planning moved to next quarter.",
	}
	text := strings.Join(sentences, " ")

	chunks := Split(text, WithMaxChunkSize(80), WithOverlap(20))
	joined := strings.Join(chunks, " ")
	for _, s := range sentences {
		if !strings.Contains(joined, s) {
			t.Errorf("sentence %q lost during chunking", s)
		}
	}
}

func TestSplitPathologicalSentence(t *testing.T) {
	// No sentence boundary at all; the chunker must still make progress.
	text := strings.Repeat("x", 3500)

	chunks := Split(text, WithMaxChunkSize(1000), WithOverlap(200))
	if len(chunks) < 3 {
		t.Fatalf("expected hard-split to produce several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > 1000 {
			t.Errorf("chunk %d has %d runes, want <= 1000", i, n)
		}
	}
}

func TestSplitExampleDocument(t *testing.T) {
	// ~2500 chars with maxChunkSize=1000, overlap=200 should land on 3 chunks.
	var sb strings.Builder
	for sb.Len() < 2500 {
		sb.WriteString("This sentence pads the document out to a predictable size for the scenario. ")
	}
	text := sb.String()[:2500]

	chunks := Split(text, WithMaxChunkSize(1000), WithOverlap(200))
	if len(chunks) != 3 {
		t.Fatalf("chunk count = %d, want 3", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > 1000 {
			t.Errorf("chunk %d has %d runes, want <= 1000", i, n)
		}
	}
}

func TestSplitWindow(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		wantLen   int
	}{
		{"empty", "", 100, 20, 0},
		{"fits", strings.Repeat("a", 90), 100, 20, 1},
		{"two windows", strings.Repeat("a", 150), 100, 20, 2},
		{"tail absorbed by final window", strings.Repeat("a", 170), 100, 20, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitWindow(tt.text, tt.chunkSize, tt.overlap)
			if len(got) != tt.wantLen {
				t.Fatalf("window count = %d, want %d", len(got), tt.wantLen)
			}
			if joined := overlapJoin(got, tt.overlap); tt.wantLen > 0 && len(joined) < len(tt.text) {
				t.Errorf("windows cover %d runes, want >= %d", len(joined), len(tt.text))
			}
		})
	}
}

func TestSplitWindowOverlapGeqChunkSize(t *testing.T) {
	// Degenerate overlap must not stall the loop.
	got := SplitWindow(strings.Repeat("a", 250), 100, 100)
	if len(got) < 2 {
		t.Fatalf("expected forward progress, got %d chunks", len(got))
	}
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) < n {
		return s
	}
	return string(r[:n])
}

func overlapJoin(chunks []string, overlap int) string {
	var sb strings.Builder
	for i, c := range chunks {
		r := []rune(c)
		if i > 0 && len(r) > overlap {
			r = r[overlap:]
		}
		sb.WriteString(string(r))
	}
	return sb.String()
}
