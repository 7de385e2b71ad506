// Package api provides the HTTP surface for world generation and retrieval.
// World generation never hard-fails: provider errors degrade to the fallback
// record inside the generator. Request validation and query-embedding
// failures, by contrast, surface as real HTTP statuses with a JSON error
// body — a deliberate departure from the always-200 style.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/talgya/worldforge/internal/llm"
	"github.com/talgya/worldforge/internal/persistence"
	"github.com/talgya/worldforge/internal/vector"
	"github.com/talgya/worldforge/internal/worldgen"
)

// WorldCaller asks the model whether a free-text message should invoke the
// declared generateWorld function.
type WorldCaller interface {
	RequestWorldCall(ctx context.Context, message string) (*llm.ToolCall, error)
}

// Server serves the worldforge API over HTTP.
type Server struct {
	Gen      *worldgen.Generator
	Embedder worldgen.Embedder
	Tools    WorldCaller
	Store    *persistence.Store
	Port     int
}

// Handler builds the route table. Split out from Start so tests can drive it
// through httptest.
func (s *Server) Handler() http.Handler {
	// The generation endpoints spend model quota; keep them behind a
	// per-IP limiter.
	genLimiter := NewRateLimiter(20, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate-world", RateLimitMiddleware(genLimiter, s.handleGenerateWorld))
	mux.HandleFunc("GET /worlds", s.handleWorlds)
	mux.HandleFunc("POST /similar-worlds-dot", s.handleSimilar(vector.MetricDot, "score"))
	mux.HandleFunc("POST /similar-worlds-cosine", s.handleSimilar(vector.MetricCosine, "similarity"))
	mux.HandleFunc("POST /similar-worlds-l2", s.handleSimilar(vector.MetricEuclidean, "distance"))
	mux.HandleFunc("POST /ai-function-call", RateLimitMiddleware(genLimiter, s.handleFunctionCall))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list of extra origins; localhost dev
// servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleGenerateWorld(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Biome   string `json:"biome"`
		Culture string `json:"culture"`
		Tone    string `json:"tone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Biome == "" || req.Culture == "" || req.Tone == "" {
		writeError(w, http.StatusBadRequest, "biome, culture, and tone are required")
		return
	}

	res := s.Gen.Generate(r.Context(), req.Biome, req.Culture, req.Tone)
	world, err := s.Store.Append(res)
	if err != nil {
		slog.Error("world append failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store world")
		return
	}

	slog.Info("world generated",
		"id", world.ID,
		"biome", world.Biome,
		"tone", world.Tone,
		"embedded", world.Embedding != nil,
	)
	writeJSON(w, map[string]any{
		"message": "World generated",
		"world":   world,
	})
}

func (s *Server) handleWorlds(w http.ResponseWriter, r *http.Request) {
	worlds, err := s.Store.List()
	if err != nil {
		slog.Error("world list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list worlds")
		return
	}

	writeJSON(w, map[string]any{"worlds": worlds})
}

// handleSimilar builds a handler for one similarity metric. scoreKey is the
// response field name the metric's value is reported under.
func (s *Server) handleSimilar(metric vector.Metric, scoreKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
			TopN  int    `json:"topN"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Query == "" {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		if req.TopN <= 0 {
			req.TopN = 3
		}

		queryVec, err := s.Embedder.Embed(r.Context(), req.Query)
		if err != nil {
			slog.Error("query embedding failed", "error", err)
			writeError(w, http.StatusBadGateway, "query embedding unavailable")
			return
		}

		worlds, err := s.Store.List()
		if err != nil {
			slog.Error("world list failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list worlds")
			return
		}

		cands := make([]vector.Candidate, len(worlds))
		byID := make(map[int64]persistence.StoredWorld, len(worlds))
		for i, world := range worlds {
			cands[i] = vector.Candidate{ID: world.ID, Vector: world.Embedding}
			byID[world.ID] = world
		}

		scored, err := vector.Rank(queryVec, cands, metric, req.TopN)
		if err != nil {
			slog.Error("ranking failed", "error", err)
			writeError(w, http.StatusInternalServerError, "ranking failed")
			return
		}

		matches := make([]map[string]any, 0, len(scored))
		for _, sc := range scored {
			world := byID[sc.ID]
			matches = append(matches, map[string]any{
				"id":      world.ID,
				"summary": world.Summary,
				"tone":    world.Tone,
				scoreKey:  sc.Score,
			})
		}

		writeJSON(w, map[string]any{"matches": matches})
	}
}

func (s *Server) handleFunctionCall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	call, err := s.Tools.RequestWorldCall(r.Context(), req.Message)
	if err != nil {
		slog.Error("function calling failed", "error", err)
		writeJSON(w, map[string]any{"error": "function calling failed"})
		return
	}

	biome, culture, tone, ok := worldCallArgs(call)
	if !ok {
		writeJSON(w, map[string]any{"error": "no valid function call returned"})
		return
	}

	res := s.Gen.Generate(r.Context(), biome, culture, tone)
	world, err := s.Store.Append(res)
	if err != nil {
		slog.Error("world append failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store world")
		return
	}

	slog.Info("world generated via function call", "id", world.ID)
	writeJSON(w, map[string]any{
		"message":      "Function call successful",
		"functionCall": call,
		"world":        world,
	})
}

// worldCallArgs pulls the three string arguments out of the model's tool
// call. A nil call or mis-typed arguments count as "no valid invocation".
func worldCallArgs(call *llm.ToolCall) (biome, culture, tone string, ok bool) {
	if call == nil {
		return "", "", "", false
	}
	biome, okB := call.Args["biome"].(string)
	culture, okC := call.Args["culture"].(string)
	tone, okT := call.Args["tone"].(string)
	if !okB || !okC || !okT {
		return "", "", "", false
	}
	return biome, culture, tone, true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(map[string]string{"error": msg})
}
