package index

import "context"

// Hit is a single nearest-neighbor result: the insertion position of the
// matched vector and its distance to the query.
type Hit struct {
	Position int
	Distance float32
}

// Index is a nearest-neighbor structure over fixed-width vectors. Positions
// returned by Search reference insertion order. There is no per-row update
// or delete; rebuilding means Reset followed by Add.
type Index interface {
	Reset(ctx context.Context, dimension int) error
	Add(ctx context.Context, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)
	Len() int
	Dimension() int
}
