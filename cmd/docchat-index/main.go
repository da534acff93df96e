// docchat-index builds the vector store for a document and persists it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"docchat/internal/config"
	"docchat/internal/embedding"
	"docchat/internal/extract"
	"docchat/internal/index"
	"docchat/internal/index/qdrant"
	"docchat/internal/store"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docchat/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	document := cfg.Document
	if args := flag.Args(); len(args) > 0 {
		document = args[0]
	}
	if document == "" {
		fmt.Println("Usage: docchat-index [--config=config.yaml] document.pdf")
		os.Exit(1)
	}

	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	var idx index.Index
	switch cfg.Index.Type {
	case "flat", "":
		idx = index.NewFlat()
	case "qdrant":
		idx, err = qdrant.New(qdrant.Config{
			Host:       cfg.Index.Qdrant.Host,
			Port:       cfg.Index.Qdrant.Port,
			APIKey:     cfg.Index.Qdrant.APIKey,
			Collection: cfg.Index.Qdrant.Collection,
		})
		if err != nil {
			log.Fatalf("qdrant init failed: %v", err)
		}
	default:
		log.Fatalf("unknown index type: %s", cfg.Index.Type)
	}

	s := store.New(extract.NewPDFExtractor(), emb, idx, cfg.Index.Dir)
	err = s.Build(context.Background(), document, store.BuildOptions{
		ChunkSize:    cfg.Chunker.ChunkSize,
		ChunkOverlap: cfg.Chunker.ChunkOverlap,
		Progress: func(status string, fraction float64) {
			fmt.Printf("[%3.0f%%] %s\n", fraction*100, status)
		},
	})
	if err != nil {
		log.Fatalf("indexing failed: %v", err)
	}
	if err := s.Save(); err != nil {
		log.Fatalf("saving vector store failed: %v", err)
	}
}
