package worldgen

import (
	"encoding/json"
	"log/slog"
)

// Reconcile merges the model's answer into the default record. Only keys
// that exist in the record schema are recognized; parsed keys outside it are
// ignored, and keys the model omitted keep their defaults. Any extraction
// failure degrades to the defaults with empty reasoning — the caller never
// sees an error, matching the generator's fallback-first behavior.
func Reconcile(raw string, defaults World, ex Extractor) (string, World) {
	reasoning, fields, err := ex.Extract(raw)
	if err != nil {
		slog.Warn("world response not reconcilable, using defaults", "error", err)
		return "", defaults
	}

	world := defaults
	overlay(fields, "summary", &world.Summary)
	overlay(fields, "biome", &world.Biome)
	overlay(fields, "culture", &world.Culture)
	overlay(fields, "tone", &world.Tone)
	overlay(fields, "myth", &world.Myth)

	return reasoning, world
}

// overlay replaces *dst with the parsed value for key when present and a
// string. Non-string values keep the default.
func overlay(fields map[string]json.RawMessage, key string, dst *string) {
	rawValue, ok := fields[key]
	if !ok {
		return
	}
	var s string
	if err := json.Unmarshal(rawValue, &s); err != nil {
		slog.Warn("world field has non-string value, keeping default", "key", key)
		return
	}
	*dst = s
}
