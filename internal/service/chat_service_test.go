package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"docinsight-be/pkg/ragclient"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSessionTitle(t *testing.T) {
	assert.Equal(t, "What changed last quarter?", sessionTitle("  What changed last quarter?  "))
	assert.Equal(t, "New chat", sessionTitle("   "))

	long := strings.Repeat("x", 200)
	assert.Len(t, sessionTitle(long), 80)
}

func TestSessionTitleMultibyte(t *testing.T) {
	// ä and ß are 2 bytes each; a byte slice at 80 would land mid-rune
	title := sessionTitle(strings.Repeat("läßt", 50))
	assert.True(t, utf8.ValidString(title))
	assert.Equal(t, 80, utf8.RuneCountInString(title))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 200))
	assert.Equal(t, "ab", truncateRunes("abcd", 2))

	multibyte := strings.Repeat("é", 10)
	got := truncateRunes(multibyte, 4)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 4, utf8.RuneCountInString(got))

	// max counted in runes even when the byte length exceeds it
	assert.Equal(t, multibyte, truncateRunes(multibyte, 10))
}

func TestResultLimit(t *testing.T) {
	s := &chatService{maxResults: 5}
	assert.Equal(t, 5, s.resultLimit(0))
	assert.Equal(t, 5, s.resultLimit(-1))
	assert.Equal(t, 3, s.resultLimit(3))
}

func TestToSourceDTOsPositions(t *testing.T) {
	docId := uuid.New()
	chunkId := uuid.New()
	sources := toSourceDTOs([]ragclient.Source{
		{DocumentId: docId.String(), ChunkId: chunkId.String(), DocumentTitle: "Plan", Relevance: 0.91},
		{DocumentId: uuid.NewString(), ChunkId: uuid.NewString(), DocumentTitle: "Notes", Relevance: 0.72},
	})

	assert.Len(t, sources, 2)
	assert.Equal(t, docId, sources[0].DocumentId)
	assert.Equal(t, chunkId, sources[0].ChunkId)
	// Positions are 1-based ranks
	assert.Equal(t, 1, sources[0].Position)
	assert.Equal(t, 2, sources[1].Position)
}
