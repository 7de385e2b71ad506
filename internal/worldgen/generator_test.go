package worldgen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	response string
	err      error
	prompt   string
}

func (m *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

type fakeEmbedder struct {
	vector []float32
	err    error
	input  string
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.input = text
	return e.vector, e.err
}

func TestGenerateFallsBackWhenModelFails(t *testing.T) {
	model := &fakeModel{err: errors.New("provider unreachable")}
	embedder := &fakeEmbedder{vector: []float32{1, 2, 3}}
	gen := NewGenerator(model, embedder)

	res := gen.Generate(context.Background(), "tundra", "nomadic", "hopeful")

	defaults := Defaults("tundra", "nomadic", "hopeful")
	assert.Equal(t, "", res.Reasoning)
	assert.Equal(t, defaults, res.World)
	assert.Equal(t, []float32{1, 2, 3}, res.Embedding)
}

func TestGenerateReconcilesModelResponse(t *testing.T) {
	model := &fakeModel{response: `The ice shapes everything. {"summary":"Frozen plains under auroras.","myth":"The Sky Serpent sheds light."}`}
	embedder := &fakeEmbedder{vector: []float32{0.5}}
	gen := NewGenerator(model, embedder)

	res := gen.Generate(context.Background(), "tundra", "nomadic", "hopeful")

	assert.Equal(t, "The ice shapes everything.", res.Reasoning)
	assert.Equal(t, "Frozen plains under auroras.", res.World.Summary)
	assert.Equal(t, "The Sky Serpent sheds light.", res.World.Myth)
	assert.Equal(t, "tundra", res.World.Biome)
}

func TestGenerateEmbedsReconciledFields(t *testing.T) {
	model := &fakeModel{response: `r {"summary":"S","myth":"M"}`}
	embedder := &fakeEmbedder{vector: []float32{1}}
	gen := NewGenerator(model, embedder)

	gen.Generate(context.Background(), "B", "C", "T")

	// Embedding input is summary, biome, culture, myth, space-joined.
	assert.Equal(t, "S B C M", embedder.input)
}

func TestGenerateWithoutEmbeddingOnFailure(t *testing.T) {
	model := &fakeModel{response: `r {"summary":"S"}`}
	embedder := &fakeEmbedder{err: errors.New("rate limited")}
	gen := NewGenerator(model, embedder)

	res := gen.Generate(context.Background(), "B", "C", "T")
	assert.Nil(t, res.Embedding)
	assert.Equal(t, "S", res.World.Summary)
}

func TestGenerateUsesDefaultsWhenResponseMalformed(t *testing.T) {
	model := &fakeModel{response: "prose with no payload at all"}
	embedder := &fakeEmbedder{vector: []float32{1}}
	gen := NewGenerator(model, embedder)

	res := gen.Generate(context.Background(), "desert", "nomad", "mystical")

	require.Equal(t, Defaults("desert", "nomad", "mystical"), res.World)
	assert.Equal(t, "", res.Reasoning)
}

func TestBuildPromptToneInstruction(t *testing.T) {
	assert.Contains(t, BuildPrompt("b", "c", "mystical"), "poetic language")
	assert.Contains(t, BuildPrompt("b", "c", "GRIMDARK"), "moral ambiguity")
	assert.Contains(t, BuildPrompt("b", "c", "hopeful"), "rebirth")

	// Unknown tones get no extra instruction, not an error.
	p := BuildPrompt("b", "c", "whimsical")
	assert.Contains(t, p, "Tone: whimsical")
	assert.NotContains(t, p, "poetic language")
}

func TestBuildPromptEmbedsInputs(t *testing.T) {
	p := BuildPrompt("mangrove", "riverfolk", "hopeful")
	assert.Contains(t, p, "Biome: mangrove")
	assert.Contains(t, p, "Culture: riverfolk")
	assert.Contains(t, p, "Reflect the tone (hopeful)")
}
