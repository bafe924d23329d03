package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/netutil"

	"github.com/cognicore/rarity/internal/api"
	"github.com/cognicore/rarity/pkg/rarity"
	"github.com/cognicore/rarity/pkg/rarity/config"
	"github.com/cognicore/rarity/pkg/rarity/score"
	"github.com/cognicore/rarity/pkg/rarity/store"
	"github.com/cognicore/rarity/pkg/rarity/store/cache"
	"github.com/cognicore/rarity/pkg/rarity/store/memstore"
	"github.com/cognicore/rarity/pkg/rarity/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "Optional: YAML config file")
	flag.Parse()

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
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	router, err := api.NewRouter(api.Config{
		Engine:           rarity.New(rarity.Options{Workers: cfg.Workers}),
		Store:            st,
		DefaultAlgorithm: score.Algorithm(cfg.Algorithm),
	})
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	if cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConns)
	}

	server := &http.Server{
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("rarity server listening on %s (algorithm=%s, workers=%d)", cfg.ListenAddr, cfg.Algorithm, cfg.Workers)
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openStore opens SQLite when a path is configured, memory otherwise,
// behind an LRU of recent runs.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	var inner store.Store
	if cfg.DBPath != "" {
		st, err := sqlite.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		inner = st
	} else {
		log.Printf("Warning: no db_path configured, runs are kept in memory")
		inner = memstore.New()
	}

	cached, err := cache.New(inner, cfg.CacheSize)
	if err != nil {
		inner.Close()
		return nil, err
	}
	return cached, nil
}
