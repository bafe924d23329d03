package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/cognicore/rarity/pkg/rarity"
	"github.com/cognicore/rarity/pkg/rarity/config"
	"github.com/cognicore/rarity/pkg/rarity/rank"
	"github.com/cognicore/rarity/pkg/rarity/score"
	"github.com/cognicore/rarity/pkg/rarity/store"
	"github.com/cognicore/rarity/pkg/rarity/store/sqlite"
	"github.com/cognicore/rarity/pkg/rarity/token"
)

type report struct {
	RunID      string             `json:"run_id,omitempty"`
	Collection string             `json:"collection"`
	Algorithm  string             `json:"algorithm"`
	Total      int                `json:"total"`
	Tokens     []rank.RankedToken `json:"tokens"`
}

func main() {
	var (
		input      = flag.String("input", "", "Path to .jsonl, .json or .yaml token file (required)")
		configPath = flag.String("config", "", "Optional: YAML config file")
		algorithm  = flag.String("algorithm", "", "Scoring algorithm: statistical or information_content")
		workers    = flag.Int("workers", -1, "Scoring goroutines (overrides config)")
		top        = flag.Int("top", -1, "Only print the top N tokens (overrides config)")
		dbPath     = flag.String("db", "", "Optional: SQLite database to save the run into")
		collection = flag.String("collection", "default", "Collection name recorded with the run")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("env config: %v", err)
	}
	if *algorithm != "" {
		cfg.Algorithm = *algorithm
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	if *top >= 0 {
		cfg.TopK = *top
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	scorer, err := cfg.Scorer()
	if err != nil {
		log.Fatalf("scorer: %v", err)
	}

	tokens, err := token.LoadFile(*input)
	if err != nil {
		log.Fatalf("load tokens: %v", err)
	}
	log.Printf("Loaded %d tokens from %s", len(tokens), *input)

	ctx := context.Background()
	engine := rarity.New(rarity.Options{Workers: cfg.Workers})

	start := time.Now()
	ranked, err := engine.ScoreAndRank(ctx, scorer, tokens)
	if err != nil {
		log.Fatalf("rank: %v", err)
	}
	log.Printf("Ranked %d tokens with %s in %s", len(ranked), scorer.Name(), time.Since(start))

	out := report{
		Collection: *collection,
		Algorithm:  string(score.Canonical(scorer)),
		Total:      len(ranked),
		Tokens:     rank.Top(ranked, cfg.TopK),
	}

	if cfg.DBPath != "" {
		runID, err := saveRun(ctx, cfg.DBPath, store.NewRun(out.Collection, out.Algorithm, ranked))
		if err != nil {
			log.Fatalf("save run: %v", err)
		}
		out.RunID = runID
		log.Printf("✓ Saved run %s to %s", runID, cfg.DBPath)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("encode report: %v", err)
	}
	fmt.Println(string(b))
}

func saveRun(ctx context.Context, path string, run store.Run) (string, error) {
	st, err := sqlite.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	if err := st.SaveRun(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}
