package domain

import "context"

// SearchResult pairs a retrieved chunk with its distance to the query.
// Lower distance means a closer match.
type SearchResult struct {
	Text     string
	Distance float32
}

// Extractor pulls raw text out of a source document: page text in page
// order, each page followed by a newline.
type Extractor interface {
	Extract(path string) (string, error)
}

// Embedder converts free text into a fixed-width vector representation.
// Dimension reports the vector width; remote implementations may return 0
// until the first successful Embed call. Within one Embedder instance all
// produced vectors share the same width.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits raw text into ordered, trimmed segments suitable for
// retrieval indexing.
type Chunker interface {
	Chunk(text string) []string
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
