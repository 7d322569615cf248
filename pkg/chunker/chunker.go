package chunker

import (
	"strings"
	"unicode"
)

const (
	DefaultMaxChunkSize = 1000
	DefaultOverlap      = 200
)

// Options control chunk sizing. Zero values fall back to the defaults.
type Options struct {
	MaxChunkSize int
	Overlap      int
}

type Option func(*Options)

func WithMaxChunkSize(size int) Option {
	return func(o *Options) {
		o.MaxChunkSize = size
	}
}

func WithOverlap(overlap int) Option {
	return func(o *Options) {
		o.Overlap = overlap
	}
}

// Split breaks text into overlapping chunks along sentence boundaries.
// Sentences are accumulated greedily; when the next sentence would push the
// buffer past MaxChunkSize the buffer is flushed and the new chunk is seeded
// with the tail of the previous one (up to Overlap runes) so context survives
// the boundary. Sentences longer than MaxChunkSize are hard-split so the
// chunker always makes forward progress.
func Split(text string, opts ...Option) []string {
	options := &Options{
		MaxChunkSize: DefaultMaxChunkSize,
		Overlap:      DefaultOverlap,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.MaxChunkSize <= 0 {
		options.MaxChunkSize = DefaultMaxChunkSize
	}
	if options.Overlap < 0 || options.Overlap >= options.MaxChunkSize {
		options.Overlap = options.MaxChunkSize / 5
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len([]rune(trimmed)) <= options.MaxChunkSize {
		return []string{trimmed}
	}

	sentences := splitSentences(trimmed)

	var chunks []string
	var buf []rune
	fresh := false // buf holds content beyond the overlap carry-over

	flush := func() {
		chunk := strings.TrimSpace(string(buf))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		// Seed the next buffer with the overlap tail of the finished chunk.
		if options.Overlap > 0 && len(buf) > options.Overlap {
			buf = append([]rune(nil), buf[len(buf)-options.Overlap:]...)
		} else {
			buf = buf[:0]
		}
		fresh = false
	}

	for _, sentence := range sentences {
		runes := []rune(sentence)

		// A single sentence that can never fit gets hard-split on its own.
		if len(runes) > options.MaxChunkSize {
			if fresh {
				flush()
			}
			buf = buf[:0]
			for _, piece := range SplitWindow(sentence, options.MaxChunkSize, options.Overlap) {
				chunks = append(chunks, strings.TrimSpace(piece))
			}
			continue
		}

		if len(buf)+len(runes) > options.MaxChunkSize {
			if fresh {
				flush()
			}
			if len(buf)+len(runes) > options.MaxChunkSize {
				// Even the overlap carry does not leave room; drop it.
				buf = buf[:0]
			}
		}
		buf = append(buf, runes...)
		fresh = true
	}

	if fresh {
		if tail := strings.TrimSpace(string(buf)); tail != "" {
			chunks = append(chunks, tail)
		}
	}

	return chunks
}

// SplitWindow slides a fixed rune window of chunkSize forward by
// chunkSize-overlap per step. The final window absorbs the tail, so a last
// chunk smaller than the overlap never appears on its own.
func SplitWindow(text string, chunkSize int, overlap int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	totalLen := len(runes)
	if totalLen <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	var chunks []string
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end >= totalLen {
			chunks = append(chunks, string(runes[i:]))
			break
		}
		chunks = append(chunks, string(runes[i:end]))
	}

	return chunks
}

// splitSentences cuts text on `.`, `!` or `?` followed by whitespace. The
// terminator and trailing whitespace stay attached to the sentence so joining
// the pieces reproduces the input. Abbreviations ("Dr.", "U.S.") are not
// special-cased.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		// Consume trailing whitespace into this sentence.
		end := i + 1
		for end < len(runes) && unicode.IsSpace(runes[end]) {
			end++
		}
		sentences = append(sentences, string(runes[start:end]))
		start = end
		i = end - 1
	}

	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}

	return sentences
}

// EstimateTokens is a cheap token estimator (~4 chars per token) used for
// chunk bookkeeping.
func EstimateTokens(s string) int {
	n := len([]rune(s))
	if n <= 0 {
		return 0
	}
	return (n + 3) / 4
}
