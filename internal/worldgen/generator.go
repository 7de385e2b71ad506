package worldgen

import (
	"context"
	"log/slog"
	"strings"
)

// TextModel is the generative-model collaborator.
type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into a fixed-length vector. Implementations own their
// retry behavior; the generator treats any error as "no embedding".
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Result is one complete generation: the model's reasoning trace, the
// reconciled record, and its embedding (nil when unavailable).
type Result struct {
	Reasoning string
	World     World
	Embedding []float32
}

// Generator orchestrates a single world generation end to end.
type Generator struct {
	Model     TextModel
	Embedder  Embedder
	Extractor Extractor
}

// NewGenerator wires a generator with the default brace extractor.
func NewGenerator(model TextModel, embedder Embedder) *Generator {
	return &Generator{Model: model, Embedder: embedder, Extractor: BraceExtractor{}}
}

// Generate builds a world for the given inputs. It never fails: a model
// failure falls back to the default record with empty reasoning, and an
// embedding failure yields a record without an embedding.
func (g *Generator) Generate(ctx context.Context, biome, culture, tone string) Result {
	defaults := Defaults(biome, culture, tone)

	reasoning := ""
	world := defaults

	raw, err := g.Model.Generate(ctx, BuildPrompt(biome, culture, tone))
	if err != nil {
		slog.Error("world generation failed, using fallback record", "error", err)
	} else {
		reasoning, world = Reconcile(raw, defaults, g.Extractor)
	}

	input := strings.Join([]string{world.Summary, world.Biome, world.Culture, world.Myth}, " ")
	embedding, err := g.Embedder.Embed(ctx, input)
	if err != nil {
		slog.Error("embedding failed, storing world without one", "error", err)
		embedding = nil
	}

	return Result{Reasoning: reasoning, World: world, Embedding: embedding}
}
