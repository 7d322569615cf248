package prompt

import (
	"strings"
	"testing"
)

func TestBuildWithoutChunks(t *testing.T) {
	query := "What were the Q3 budget risks?"
	if got := Build(query, nil); got != query {
		t.Errorf("Build with no chunks = %q, want query unmodified", got)
	}
}

func TestBuildNumbersChunksInRankedOrder(t *testing.T) {
	chunks := []ContextChunk{
		{Content: "Q3 budget allocation exceeded forecast.", Score: 0.82},
		{Content: "Vendor contract renewal is pending.", Score: 0.61},
	}

	got := Build("What were the Q3 budget risks?", chunks)

	first := strings.Index(got, "[1] Q3 budget allocation exceeded forecast.")
	second := strings.Index(got, "[2] Vendor contract renewal is pending.")
	if first == -1 || second == -1 {
		t.Fatalf("numbered chunks missing from prompt:\n%s", got)
	}
	if first > second {
		t.Error("chunks rendered out of ranked order")
	}
	if !strings.HasSuffix(got, "Question: What were the Q3 budget risks?") {
		t.Error("original question must close the prompt verbatim")
	}
}

func TestBuildTrimsChunkWhitespace(t *testing.T) {
	got := Build("q", []ContextChunk{{Content: "  padded content \n"}})
	if !strings.Contains(got, "[1] padded content") {
		t.Errorf("chunk content not trimmed:\n%s", got)
	}
}

func TestBuildHistoryAppendsAugmentedTurn(t *testing.T) {
	history := []Turn{
		{Role: "user", Content: "Hi"},
		{Role: "assistant", Content: "Hello"},
	}
	chunks := []ContextChunk{{Content: "ctx"}}

	got := BuildHistory(history, "follow-up", chunks)
	if len(got) != 3 {
		t.Fatalf("turn count = %d, want 3", len(got))
	}
	if got[0] != history[0] || got[1] != history[1] {
		t.Error("prior turns must pass through unchanged")
	}
	if got[2].Role != "user" || !strings.Contains(got[2].Content, "[1] ctx") {
		t.Error("final turn must carry the augmented prompt")
	}
}
