package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxLength is the default chunk length budget in characters.
	DefaultMaxLength = 1024

	// Delimiter separates sentences. It is the only boundary the chunker splits on.
	Delimiter = ". "
)

// Options controls how text is chunked.
type Options struct {
	// MaxLength is the character budget that gates starting a new chunk.
	// A single sentence longer than MaxLength is emitted whole.
	MaxLength int
}

// Chunk represents a sentence-aligned slice of the document text.
type Chunk struct {
	Index     int
	Text      string
	WordCount int
}

// ChunkText splits text on Delimiter and packs consecutive sentences into chunks.
// The delimiter is put back after every sentence except the last one, so joining
// the chunks with a single space restores the original text. Lengths are counted
// in characters (runes). Chunks that are empty after trimming are never emitted.
func ChunkText(text string, opts Options) []Chunk {
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}

	sentences := strings.Split(text, Delimiter)
	var (
		chunks []Chunk
		buf    strings.Builder
		bufLen int
	)

	flush := func() {
		trimmed := strings.TrimSpace(buf.String())
		buf.Reset()
		bufLen = 0
		if trimmed == "" {
			return
		}
		chunks = append(chunks, Chunk{
			Index:     len(chunks),
			Text:      trimmed,
			WordCount: len(strings.Fields(trimmed)),
		})
	}

	last := len(sentences) - 1
	for i, sentence := range sentences {
		sentenceLen := utf8.RuneCountInString(sentence)
		// The budget only decides whether to start a new chunk; an oversized
		// sentence still lands in a chunk of its own, uncut.
		if bufLen > 0 && bufLen+sentenceLen >= opts.MaxLength {
			flush()
		}
		buf.WriteString(sentence)
		bufLen += sentenceLen
		if i != last {
			buf.WriteString(Delimiter)
			bufLen += len(Delimiter)
		}
	}
	flush()

	return chunks
}

// Texts returns the text of each chunk in order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
