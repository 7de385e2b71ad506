package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/worldforge/internal/worldgen"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func result(summary string, emb []float32) worldgen.Result {
	return worldgen.Result{
		Reasoning: "because",
		World: worldgen.World{
			Summary: summary,
			Biome:   "tundra",
			Culture: "nomadic",
			Tone:    "hopeful",
			Myth:    "a myth",
		},
		Embedding: emb,
	}
}

func TestAppendAssignsSequentialIDs(t *testing.T) {
	s := openTestStore(t)

	for i := 1; i <= 5; i++ {
		w, err := s.Append(result("w", []float32{1}))
		require.NoError(t, err)
		assert.Equal(t, int64(i), w.ID)
	}

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestListReturnsInsertionOrder(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Append(result("first", nil))
	require.NoError(t, err)
	_, err = s.Append(result("second", nil))
	require.NoError(t, err)
	_, err = s.Append(result("third", nil))
	require.NoError(t, err)

	worlds, err := s.List()
	require.NoError(t, err)
	require.Len(t, worlds, 3)
	assert.Equal(t, "first", worlds[0].Summary)
	assert.Equal(t, "second", worlds[1].Summary)
	assert.Equal(t, "third", worlds[2].Summary)
	assert.Equal(t, int64(1), worlds[0].ID)
	assert.Equal(t, int64(3), worlds[2].ID)
}

func TestEmbeddingRoundTrip(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Append(result("with", []float32{0.25, -1.5, 3}))
	require.NoError(t, err)
	_, err = s.Append(result("without", nil))
	require.NoError(t, err)

	worlds, err := s.List()
	require.NoError(t, err)
	require.Len(t, worlds, 2)
	assert.Equal(t, []float32{0.25, -1.5, 3}, worlds[0].Embedding)
	assert.Nil(t, worlds[1].Embedding)
}

func TestStoredFieldsSurvive(t *testing.T) {
	s := openTestStore(t)

	in := worldgen.Result{
		Reasoning: "step by step",
		World: worldgen.World{
			Summary: "S", Biome: "B", Culture: "C", Tone: "T", Myth: "M",
		},
	}
	stored, err := s.Append(in)
	require.NoError(t, err)

	worlds, err := s.List()
	require.NoError(t, err)
	require.Len(t, worlds, 1)
	assert.Equal(t, stored, worlds[0])
	assert.Equal(t, "step by step", worlds[0].Reasoning)
	assert.Equal(t, "M", worlds[0].Myth)
}

func TestEmptyStoreLists(t *testing.T) {
	s := openTestStore(t)

	worlds, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, worlds)
}
