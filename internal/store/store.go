// Package store owns the chunk sequence and the vector index together and
// orchestrates indexing, retrieval, and persistence.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"docchat/internal/chunker"
	"docchat/internal/domain"
	"docchat/internal/index"
)

const (
	indexArtifact  = "vector_store.index"
	chunksArtifact = "chunks.json"
)

// ErrEmptyDocument is returned by Build when chunking the extracted text
// yields no chunks.
var ErrEmptyDocument = errors.New("no text chunks were produced from the document")

// ProgressFunc receives build status messages with a fractional progress in
// [0,1]. It is called synchronously from within Build and is purely
// observational.
type ProgressFunc func(status string, fraction float64)

// BuildOptions parameterize one indexing run.
type BuildOptions struct {
	ChunkSize    int
	ChunkOverlap int
	// Progress, when nil, logs the same milestones instead.
	Progress ProgressFunc
}

// Store is the retrieval store: the exclusive owner of the chunk sequence
// and the vector index. chunks[i] always corresponds to index row i; the two
// are only ever replaced together. A Store is built (or loaded) by a single
// writer; searches must not run concurrently with an in-progress Build.
type Store struct {
	extractor domain.Extractor
	embedder  domain.Embedder
	index     index.Index
	dir       string
	chunks    []string
}

// New creates an empty store persisting its artifacts under dir.
func New(extractor domain.Extractor, embedder domain.Embedder, idx index.Index, dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{extractor: extractor, embedder: embedder, index: idx, dir: dir}
}

// Len returns the number of indexed chunks.
func (s *Store) Len() int { return len(s.chunks) }

// Chunks returns a copy of the indexed chunk sequence in index order, so
// callers cannot disturb the chunk-to-row correspondence.
func (s *Store) Chunks() []string {
	out := make([]string, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Build indexes the document at path: extract, chunk, embed each chunk in
// order, then rebuild the vector index from the embedding matrix. The store
// is updated only after every step succeeds; a failed build never leaves
// chunks and index referring to different documents.
func (s *Store) Build(ctx context.Context, path string, opts BuildOptions) error {
	report := opts.Progress
	if report == nil {
		report = func(status string, _ float64) { log.Println(status) }
	}

	report("Extracting text from document...", 0.1)
	text, err := s.extractor.Extract(path)
	if err != nil {
		return fmt.Errorf("extract document: %w", err)
	}

	report("Chunking text...", 0.2)
	ck, err := chunker.NewWindowChunker(opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return err
	}
	chunks := ck.Chunk(text)
	if len(chunks) == 0 {
		return ErrEmptyDocument
	}

	report(fmt.Sprintf("Creating embeddings for %d chunks...", len(chunks)), 0.3)
	vectors := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		if (i+1)%10 == 0 {
			fraction := 0.3 + float64(i)/float64(len(chunks))*0.6
			report(fmt.Sprintf("Processing chunk %d/%d...", i+1, len(chunks)), fraction)
		}
		vec, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		vectors = append(vectors, vec)
	}

	report("Building vector index...", 0.9)
	if err := s.index.Reset(ctx, len(vectors[0])); err != nil {
		return err
	}
	if err := s.index.Add(ctx, vectors); err != nil {
		// The index was already cleared; drop the chunks too so the store
		// stays consistent (empty) rather than mixed.
		s.chunks = nil
		return fmt.Errorf("index embeddings: %w", err)
	}
	s.chunks = chunks

	report(fmt.Sprintf("Vector store created with %d chunks", len(chunks)), 1.0)
	return nil
}

// Search embeds the query and returns up to topK chunks ordered by ascending
// distance. An empty or never-built store yields no results and no error.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if len(s.chunks) == 0 || s.index.Len() == 0 {
		return nil, nil
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if topK > len(s.chunks) {
		topK = len(s.chunks)
	}
	hits, err := s.index.Search(ctx, vec, topK)
	if err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(s.chunks) {
			continue
		}
		results = append(results, domain.SearchResult{Text: s.chunks[h.Position], Distance: h.Distance})
	}
	return results, nil
}

// ContextForQuery formats the top matches as numbered context blocks for
// prompt assembly. An empty string signals that no context is available.
func (s *Store) ContextForQuery(ctx context.Context, query string, topK int) (string, error) {
	results, err := s.Search(ctx, query, topK)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Context %d]\n%s\n", i+1, r.Text)
	}
	return strings.Join(parts, "\n"), nil
}

// Save persists the index and the chunk sequence as companion artifacts
// under the store directory. It is a no-op when nothing has been built, or
// when the index backend keeps its rows elsewhere.
func (s *Store) Save() error {
	if len(s.chunks) == 0 {
		return nil
	}
	wt, ok := s.index.(io.WriterTo)
	if !ok {
		log.Printf("index backend does not persist to files; skipping save")
		return nil
	}
	indexPath := filepath.Join(s.dir, indexArtifact)
	f, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("save vector index: %w", err)
	}
	if _, err = wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("save vector index: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("save vector index: %w", err)
	}

	data, err := json.Marshal(s.chunks)
	if err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}
	chunksPath := filepath.Join(s.dir, chunksArtifact)
	if err = os.WriteFile(chunksPath, data, 0o644); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}
	log.Printf("vector store saved to %s", indexPath)
	log.Printf("chunks saved to %s", chunksPath)
	return nil
}

// Load reads both artifacts, reporting success as a boolean. Missing
// artifacts yield false; corrupt artifacts are logged and yield false,
// leaving the store unchanged.
func (s *Store) Load() bool {
	rf, ok := s.index.(io.ReaderFrom)
	if !ok {
		return false
	}
	indexPath := filepath.Join(s.dir, indexArtifact)
	chunksPath := filepath.Join(s.dir, chunksArtifact)

	indexData, err := os.ReadFile(indexPath)
	if err != nil {
		return false
	}
	chunksData, err := os.ReadFile(chunksPath)
	if err != nil {
		return false
	}

	var chunks []string
	if err := json.Unmarshal(chunksData, &chunks); err != nil {
		log.Printf("error loading vector store: %v", err)
		return false
	}
	if _, err := rf.ReadFrom(bytes.NewReader(indexData)); err != nil {
		log.Printf("error loading vector store: %v", err)
		return false
	}
	s.chunks = chunks
	log.Printf("vector store loaded with %d chunks", len(chunks))
	return true
}
