package index

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
)

// flatMagic identifies the on-disk format of a serialized flat index.
var flatMagic = [8]byte{'F', 'L', 'A', 'T', 'I', 'D', 'X', '1'}

// maxIndexFloats caps dimension*count from a file header at 4 GiB of row
// data, so a corrupt header cannot force an outsized or negative allocation.
const maxIndexFloats = 1 << 30

// Flat is an exact L2 nearest-neighbor index over float32 vectors. Vectors
// are stored row-major in insertion order; searches scan every row.
// Distances are squared L2, which preserves nearest-first ordering.
type Flat struct {
	dimension int
	data      []float32
}

// NewFlat creates an empty flat index. Reset must be called before Add.
func NewFlat() *Flat { return &Flat{} }

// Reset discards all rows and fixes the vector width for subsequent Adds.
func (f *Flat) Reset(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid index dimension %d", dimension)
	}
	f.dimension = dimension
	f.data = nil
	return nil
}

// Add appends rows in insertion order. Every vector must match the index
// dimension.
func (f *Flat) Add(_ context.Context, vectors [][]float32) error {
	if f.dimension == 0 {
		return errors.New("index dimension not set; call Reset first")
	}
	for i, v := range vectors {
		if len(v) != f.dimension {
			return fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(v), f.dimension)
		}
	}
	for _, v := range vectors {
		f.data = append(f.data, v...)
	}
	return nil
}

// Search returns up to k hits ordered by ascending distance, ties broken by
// insertion order.
func (f *Flat) Search(_ context.Context, query []float32, k int) ([]Hit, error) {
	if len(query) != f.dimension {
		return nil, fmt.Errorf("query has dimension %d, index expects %d", len(query), f.dimension)
	}
	n := f.Len()
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}
	hits := make([]Hit, n)
	for i := 0; i < n; i++ {
		row := f.data[i*f.dimension : (i+1)*f.dimension]
		var dist float32
		for j, q := range query {
			d := row[j] - q
			dist += d * d
		}
		hits[i] = Hit{Position: i, Distance: dist}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits[:k], nil
}

// Len returns the number of rows in the index.
func (f *Flat) Len() int {
	if f.dimension == 0 {
		return 0
	}
	return len(f.data) / f.dimension
}

// Dimension returns the vector width, or 0 before the first Reset.
func (f *Flat) Dimension() int { return f.dimension }

// WriteTo serializes the index: magic, dimension, row count, then the rows
// as little-endian float32 values in insertion order.
func (f *Flat) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	if _, err := bw.Write(flatMagic[:]); err != nil {
		return written, err
	}
	written += int64(len(flatMagic))
	header := []uint32{uint32(f.dimension), uint32(f.Len())}
	for _, h := range header {
		if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
			return written, err
		}
		written += 4
	}
	if err := binary.Write(bw, binary.LittleEndian, f.data); err != nil {
		return written, err
	}
	written += int64(4 * len(f.data))
	return written, bw.Flush()
}

// ReadFrom replaces the index contents with a serialized flat index.
func (f *Flat) ReadFrom(r io.Reader) (int64, error) {
	br := bufio.NewReader(r)
	var read int64
	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return read, fmt.Errorf("read index header: %w", err)
	}
	read += int64(len(magic))
	if !bytes.Equal(magic[:], flatMagic[:]) {
		return read, errors.New("not a flat index file")
	}
	var dimension, count uint32
	if err := binary.Read(br, binary.LittleEndian, &dimension); err != nil {
		return read, fmt.Errorf("read index dimension: %w", err)
	}
	read += 4
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return read, fmt.Errorf("read index row count: %w", err)
	}
	read += 4
	if dimension == 0 {
		return read, errors.New("flat index file declares zero dimension")
	}
	if total := int64(dimension) * int64(count); total > maxIndexFloats {
		return read, fmt.Errorf("flat index file declares implausible size (%d rows of dimension %d)", count, dimension)
	}
	data := make([]float32, int(dimension)*int(count))
	if err := binary.Read(br, binary.LittleEndian, data); err != nil {
		return read, fmt.Errorf("read index rows: %w", err)
	}
	read += int64(4 * len(data))
	f.dimension = int(dimension)
	f.data = data
	return read, nil
}
