// Package wordvec implements a local embedding backend over a pretrained
// word-vector model in GloVe-style text format: one "word v1 ... vn" line
// per word, with an optional "count dimension" header line.
package wordvec

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Embedder embeds text as the L2-normalized mean of its known word vectors.
// It is deterministic and has no network dependency; the dimension is fixed
// by the model file at load time.
type Embedder struct {
	dimension    int
	vectors      map[string][]float32
	tokenPattern *regexp.Regexp
}

// Load reads a word-vector model file. It fails if the file cannot be opened
// or any line does not match the declared dimension.
func Load(path string) (*Embedder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word-vector model %s: %w", path, err)
	}
	defer f.Close()

	e := &Embedder{
		vectors:      make(map[string][]float32),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNo == 1 && isHeader(fields) {
			dim, _ := strconv.Atoi(fields[1])
			e.dimension = dim
			continue
		}
		if e.dimension == 0 {
			e.dimension = len(fields) - 1
			if e.dimension == 0 {
				return nil, fmt.Errorf("model %s line %d: no vector values", path, lineNo)
			}
		}
		if len(fields)-1 != e.dimension {
			return nil, fmt.Errorf("model %s line %d: expected %d values, got %d", path, lineNo, e.dimension, len(fields)-1)
		}
		vec := make([]float32, e.dimension)
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("model %s line %d: parse %q: %w", path, lineNo, field, err)
			}
			vec[i] = float32(v)
		}
		e.vectors[strings.ToLower(fields[0])] = vec
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word-vector model %s: %w", path, err)
	}
	if len(e.vectors) == 0 {
		return nil, fmt.Errorf("word-vector model %s contains no vectors", path)
	}
	return e, nil
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "wordvec" }

// Dimension returns the model's declared vector width.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed averages the vectors of known words in text and L2-normalizes the
// result. Text with no known words yields the zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	tokens := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	known := 0
	for _, tok := range tokens {
		wv, ok := e.vectors[tok]
		if !ok {
			continue
		}
		for i, v := range wv {
			vec[i] += v
		}
		known++
	}
	if known == 0 {
		return vec, nil
	}
	inv := 1 / float32(known)
	var norm float32
	for i := range vec {
		vec[i] *= inv
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(float64(norm)))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// isHeader reports whether the first line is a "count dimension" header.
func isHeader(fields []string) bool {
	if len(fields) != 2 {
		return false
	}
	for _, f := range fields {
		if _, err := strconv.Atoi(f); err != nil {
			return false
		}
	}
	return true
}
