// docchat indexes a PDF document (or loads a previously saved index) and
// opens an interactive chat over it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"docchat/internal/config"
	"docchat/internal/embedding"
	"docchat/internal/extract"
	"docchat/internal/generate"
	"docchat/internal/history"
	"docchat/internal/index"
	"docchat/internal/index/qdrant"
	"docchat/internal/service"
	"docchat/internal/store"
	"docchat/internal/summarizer"
	"docchat/internal/tui"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "", "Path to config YAML (default: ~/.config/docchat/config.yaml)")
	ask := flag.String("ask", "", "Ask a single question, stream the answer to stdout and exit")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if *cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(*cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	document := cfg.Document
	if args := flag.Args(); len(args) > 0 {
		document = args[0]
	}

	// Assemble components via interfaces
	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	var idx index.Index
	switch cfg.Index.Type {
	case "flat", "":
		idx = index.NewFlat()
	case "qdrant":
		if cfg.Index.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
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
	if !s.Load() {
		if document == "" {
			fmt.Println("Usage: docchat [--config=config.yaml] document.pdf")
			os.Exit(1)
		}
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
			log.Printf("saving vector store failed: %v", err)
		}
	}

	digest, err := summarizer.NewFrequency().Summarize(strings.Join(s.Chunks(), " "), 3)
	if err != nil {
		digest = ""
	}

	gen := generate.NewClient(cfg.Generator.Host, cfg.Generator.Model,
		time.Duration(cfg.Generator.TimeoutSecs)*time.Second)
	if !gen.Ping(context.Background()) {
		log.Printf("warning: ollama is not reachable at %s, answers will fail", cfg.Generator.Host)
	}

	hist, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		log.Printf("chat history disabled: %v", err)
		hist = nil
	} else {
		defer hist.Close()
	}

	opts := generate.Options{
		Temperature: cfg.Generator.Temperature,
		MaxTokens:   cfg.Generator.MaxTokens,
		TopK:        cfg.Generator.TopK,
		TopP:        cfg.Generator.TopP,
	}
	var histStore service.HistoryStore
	if hist != nil {
		histStore = hist
	}
	chat := service.NewChat(s, gen, histStore, uuid.New().String(), cfg.Search.TopK, opts)

	if *ask != "" {
		err := chat.AskStream(context.Background(), *ask, func(token string) error {
			_, err := fmt.Print(token)
			return err
		})
		if err != nil {
			log.Fatalf("ask failed: %v", err)
		}
		fmt.Println()
		return
	}

	m := tui.New(chat, digest)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
