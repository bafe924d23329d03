package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/rarity/internal/obs"
	"github.com/cognicore/rarity/pkg/rarity"
	"github.com/cognicore/rarity/pkg/rarity/internalerr"
	"github.com/cognicore/rarity/pkg/rarity/rank"
	"github.com/cognicore/rarity/pkg/rarity/score"
	"github.com/cognicore/rarity/pkg/rarity/store"
	"github.com/cognicore/rarity/pkg/rarity/token"
)

// maxBodyBytes caps rank request bodies.
const maxBodyBytes = 64 << 20

// Config controls the router
type Config struct {
	Engine           *rarity.Engine
	Store            store.Store
	DefaultAlgorithm score.Algorithm
}

// Router wires the HTTP endpoints for the rarity service.
type Router struct {
	engine           *rarity.Engine
	store            store.Store
	defaultAlgorithm score.Algorithm
}

// NewRouter constructs the HTTP router.
func NewRouter(cfg Config) (*chi.Mux, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.DefaultAlgorithm == "" {
		cfg.DefaultAlgorithm = score.AlgorithmStatistical
	}
	if _, err := score.ForAlgorithm(cfg.DefaultAlgorithm); err != nil {
		return nil, err
	}

	r := &Router{
		engine:           cfg.Engine,
		store:            cfg.Store,
		defaultAlgorithm: cfg.DefaultAlgorithm,
	}

	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Use(observe)

	mux.Get("/healthz", r.handleHealthz)
	mux.Handle("/metrics", obs.Handler())
	mux.Post("/v1/collections/{collection}/rank", r.handleRank)
	mux.Get("/v1/collections/{collection}/runs", r.handleListRuns)
	mux.Get("/v1/runs/{id}", r.handleGetRun)
	mux.Get("/v1/runs/{id}/tokens/{token}", r.handleTokenRank)

	return mux, nil
}

// observe counts responses by route pattern and status code
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		obs.ObserveRequest(route, status)
	})
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Router) handleRank(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	collection := normalizeName(chi.URLParam(req, "collection"))
	if collection == "" {
		writeError(w, http.StatusBadRequest, "collection is required")
		return
	}

	algorithm := score.Algorithm(req.URL.Query().Get("algorithm"))
	if algorithm == "" {
		algorithm = r.defaultAlgorithm
	}
	scorer, err := score.ForAlgorithm(algorithm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body RankRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if len(body.Tokens) == 0 {
		writeError(w, http.StatusBadRequest, "tokens are required")
		return
	}

	tokens := token.Tokens(body.Tokens)
	canonical := string(score.Canonical(scorer))

	start := time.Now()
	ranked, err := r.engine.ScoreAndRank(ctx, scorer, tokens)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	obs.ObserveRun(canonical, len(tokens), time.Since(start))

	run := store.NewRun(collection, canonical, ranked)
	if err := r.store.SaveRun(ctx, run); err != nil {
		log.Printf("save run %s for %s: %v", run.ID, collection, err)
		writeError(w, http.StatusInternalServerError, "failed to save run")
		return
	}

	writeJSON(w, http.StatusOK, RankResponse{
		RunID:      run.ID,
		Collection: run.Collection,
		Algorithm:  run.Algorithm,
		CreatedAt:  run.CreatedAt,
		Tokens:     ranked,
	})
}

func (r *Router) handleGetRun(w http.ResponseWriter, req *http.Request) {
	run, err := r.store.GetRun(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (r *Router) handleTokenRank(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	runID := chi.URLParam(req, "id")

	run, err := r.store.GetRun(ctx, runID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	tok, err := r.store.TokenRank(ctx, runID, chi.URLParam(req, "token"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		RunID:      runID,
		ID:         tok.ID,
		Score:      tok.Score,
		Rank:       tok.Rank,
		Percentile: rank.Percentile(tok, run.TokenCount),
	})
}

func (r *Router) handleListRuns(w http.ResponseWriter, req *http.Request) {
	collection := normalizeName(chi.URLParam(req, "collection"))
	limit := parseInt(req.URL.Query().Get("limit"), store.DefaultListLimit)

	runs, err := r.store.ListRuns(req.Context(), collection, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, RunsResponse{Collection: collection, Runs: runs})
}

// normalizeName folds collection names to NFKC and trims whitespace
func normalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return norm.NFKC.String(s)
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	num, err := strconv.Atoi(value)
	if err != nil || num <= 0 {
		return fallback
	}
	return num
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, internalerr.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	log.Printf("store: %v", err)
	writeError(w, http.StatusInternalServerError, "store error")
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}
