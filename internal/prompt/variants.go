package prompt

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Variation selects how the K prompts of one request differ from each other.
type Variation string

const (
	// Identical sends the same prompt every time and relies on the provider
	// being non-deterministic.
	Identical Variation = "identical"
	// Suffix appends ", variation i" to reduce near-duplicate outputs.
	Suffix Variation = "suffix"
)

func ParseVariation(s string) (Variation, error) {
	switch v := Variation(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return Identical, nil
	case Identical, Suffix:
		return v, nil
	default:
		return "", fmt.Errorf("unknown prompt variation %q", s)
	}
}

// Variants returns k prompts derived from prompt.
func Variants(prompt string, k int, v Variation) []string {
	return lo.Times(k, func(i int) string {
		return lo.Ternary(v == Suffix, fmt.Sprintf("%s, variation %d", prompt, i+1), prompt)
	})
}
