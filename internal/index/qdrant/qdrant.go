// Package qdrant backs the vector index with a remote Qdrant collection.
// Rows live server-side, so file persistence does not apply to this backend.
package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"docchat/internal/index"
)

type Config struct {
	Host       string
	Port       int
	APIKey     string
	Collection string
}

// Store implements index.Index over a Qdrant collection using Euclidean
// distance. Point IDs are the insertion positions.
type Store struct {
	client     *qdrant.Client
	collection string
	dimension  int
	count      int
}

func New(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}
	return &Store{client: client, collection: cfg.Collection}, nil
}

// Reset drops and recreates the collection for vectors of the given width.
func (s *Store) Reset(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid index dimension %d", dimension)
	}
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		if err = s.client.DeleteCollection(ctx, s.collection); err != nil {
			return fmt.Errorf("drop collection: %w", err)
		}
	}
	if err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(dimension),
					Distance: qdrant.Distance_Euclid,
				},
			},
		},
	}); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	s.dimension = dimension
	s.count = 0
	return nil
}

// Add upserts rows with sequential numeric IDs continuing insertion order.
func (s *Store) Add(ctx context.Context, vectors [][]float32) error {
	if s.dimension == 0 {
		return fmt.Errorf("index dimension not set; call Reset first")
	}
	pts := make([]*qdrant.PointStruct, len(vectors))
	for i, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(v), s.dimension)
		}
		pts[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(s.count + i)),
			Vectors: qdrant.NewVectors(v...),
		}
	}
	wait := true
	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         pts,
		Wait:           &wait,
	}); err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	s.count += len(vectors)
	return nil
}

// Search returns up to k hits nearest-first. Qdrant reports Euclidean
// distances as scores sorted ascending for this metric.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]index.Hit, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("query has dimension %d, index expects %d", len(query), s.dimension)
	}
	if k <= 0 {
		return nil, nil
	}
	limit := uint64(k)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	hits := make([]index.Hit, 0, len(resp))
	for _, r := range resp {
		id, ok := r.Id.PointIdOptions.(*qdrant.PointId_Num)
		if !ok {
			continue
		}
		hits = append(hits, index.Hit{Position: int(id.Num), Distance: r.Score})
	}
	return hits, nil
}

func (s *Store) Len() int { return s.count }

func (s *Store) Dimension() int { return s.dimension }

func (s *Store) Close() error { return s.client.Close() }
