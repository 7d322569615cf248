package prompt

import (
	"fmt"
	"strings"
)

// ContextChunk is one retrieved chunk in ranked order.
type ContextChunk struct {
	Content string
	Score   float64
}

// Build renders the retrieval-augmented prompt. Each chunk becomes a numbered
// `[i]` block; the number is the citation contract — index i in the prompt
// corresponds to position i-1 in the sources array sent to the client. With
// no chunks the user question passes through unmodified so the model answers
// from general knowledge.
func Build(userQuery string, chunks []ContextChunk) string {
	if len(chunks) == 0 {
		return userQuery
	}

	var b strings.Builder

	b.WriteString("Answer the question using the numbered context below. ")
	b.WriteString("Cite the context you used with its [number] marker. ")
	b.WriteString("If the context does not contain the answer, say so.\n\n")
	b.WriteString("Context:\n\n")

	for i, chunk := range chunks {
		b.WriteString(fmt.Sprintf("[%d] %s", i+1, strings.TrimSpace(chunk.Content)))
		b.WriteString("\n\n")
	}

	b.WriteString("Question: ")
	b.WriteString(userQuery)

	return b.String()
}

// BuildHistory prepends recent conversation turns so follow-up questions keep
// their referents. History is passed through as-is; the RAG context only
// applies to the newest user turn.
func BuildHistory(history []Turn, userQuery string, chunks []ContextChunk) []Turn {
	out := make([]Turn, 0, len(history)+1)
	out = append(out, history...)
	out = append(out, Turn{Role: "user", Content: Build(userQuery, chunks)})
	return out
}

// Turn is one prior conversation message.
type Turn struct {
	Role    string
	Content string
}
