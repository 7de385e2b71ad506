// Command worldforge runs the world generation and retrieval HTTP service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/talgya/worldforge/internal/api"
	"github.com/talgya/worldforge/internal/llm"
	"github.com/talgya/worldforge/internal/persistence"
	"github.com/talgya/worldforge/internal/worldgen"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("WORLDFORGE — fictional world generation service")

	port := 3000
	if p := os.Getenv("PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			port = v
		}
	}

	// ── World Store ───────────────────────────────────────────────────
	store, err := persistence.Open(persistence.MemoryDSN)
	if err != nil {
		slog.Error("failed to open world store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// ── Gemini Client ─────────────────────────────────────────────────
	ctx := context.Background()
	apiKey := os.Getenv("GEMINI_API_KEY")
	model := os.Getenv("GEMINI_MODEL")

	client, err := llm.NewClient(ctx, apiKey, model)
	if err != nil {
		slog.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	if client.Enabled() {
		slog.Info("gemini client enabled")
	} else {
		slog.Warn("GEMINI_API_KEY not set — generation will serve fallback worlds without embeddings")
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	server := &api.Server{
		Gen:      worldgen.NewGenerator(client, client),
		Embedder: client,
		Tools:    client,
		Store:    store,
		Port:     port,
	}
	server.Start()

	fmt.Printf("Worldforge is listening: http://localhost:%d/worlds\n", port)

	// ── Shutdown ──────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
}
