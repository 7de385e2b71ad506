package worldgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed marks a model response that carries no parsable JSON payload.
var ErrMalformed = errors.New("worldgen: malformed model response")

// Extractor splits a raw model response into a natural-language reasoning
// segment and a parsed JSON payload. It is an interface so a future
// structured-output response format can replace the brace heuristic without
// touching the generator.
type Extractor interface {
	Extract(raw string) (reasoning string, fields map[string]json.RawMessage, err error)
}

// BraceExtractor locates the first "{" and the last "}" in the response and
// parses everything between them as JSON; the trimmed prefix becomes the
// reasoning text. Brittle by nature, but it matches what current models
// return for "reason first, then JSON" prompts.
type BraceExtractor struct{}

// Extract implements Extractor.
func (BraceExtractor) Extract(raw string) (string, map[string]json.RawMessage, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return "", nil, fmt.Errorf("%w: no JSON object found", ErrMalformed)
	}

	reasoning := strings.TrimSpace(raw[:start])

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return reasoning, fields, nil
}
