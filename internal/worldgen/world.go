// Package worldgen builds fictional-world records: it prompts the text
// model, reconciles the model's free-form answer into a fixed schema, and
// attaches an embedding of the result.
package worldgen

// World is the fixed-shape record the reconciler fills in. Reasoning and the
// embedding vector are attached afterward by the generator; they are not part
// of the reconciled schema.
type World struct {
	Summary string `json:"summary"`
	Biome   string `json:"biome"`
	Culture string `json:"culture"`
	Tone    string `json:"tone"`
	Myth    string `json:"myth"`
}

// Defaults returns the fallback record used whenever the model cannot be
// reached or its answer cannot be parsed. Biome, culture, and tone pass
// through from the request; summary and myth are fixed literals.
func Defaults(biome, culture, tone string) World {
	return World{
		Summary: "A mystical desert world shaped by nomadic wisdom.",
		Biome:   biome,
		Culture: culture,
		Tone:    tone,
		Myth:    "The Whispering Wind guides lost souls to hidden sanctuaries.",
	}
}
