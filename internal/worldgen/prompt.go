package worldgen

import (
	"fmt"
	"strings"
)

// toneInstructions maps recognized tones to an extra style directive.
// Unknown tones get no directive.
var toneInstructions = map[string]string{
	"mystical": "Use poetic language and evoke ancient mysteries.",
	"grimdark": "Emphasize brutality, decay, and moral ambiguity.",
	"hopeful":  "Highlight resilience, rebirth, and unity.",
}

// BuildPrompt produces the worldbuilder prompt for the given inputs. The
// prompt asks the model to reason step by step in natural language and then
// append a compact JSON object, which is what the extractor expects.
func BuildPrompt(biome, culture, tone string) string {
	instruction := toneInstructions[strings.ToLower(tone)]

	var b strings.Builder
	b.WriteString("You are an AI worldbuilder. Your task is to generate a fictional world using step-by-step reasoning.\n\n")
	b.WriteString("Step 1: Describe the biome - its climate, terrain, and flora.\n")
	b.WriteString("Step 2: Based on the biome, infer the types of civilizations that could emerge.\n")
	b.WriteString("Step 3: Describe the dominant culture - values, rituals, and architecture.\n")
	fmt.Fprintf(&b, "Step 4: Reflect the tone (%s) in the world's atmosphere and conflicts.\n", tone)
	b.WriteString("Step 5: Create a myth or legend that embodies the world's essence.\n\n")
	b.WriteString("User Input:\n")
	fmt.Fprintf(&b, "Biome: %s\n", biome)
	fmt.Fprintf(&b, "Culture: %s\n", culture)
	fmt.Fprintf(&b, "Tone: %s\n\n", tone)
	b.WriteString("Instructions:\n")
	fmt.Fprintf(&b, "%s\n\n", instruction)
	b.WriteString("First, reason through each step in natural language.\n")
	b.WriteString("Then, return the final result in compact JSON format.\n")
	b.WriteString("Do not skip the reasoning. Do not return only JSON.\n")

	return b.String()
}
