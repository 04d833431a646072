// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output, HTML reports, logs, and docs.
// Keep raw codes for JSON fields, map keys, and equality comparisons.
package display

import "strings"

// --- Mutation Kinds ---

var mutationKinds = map[string]string{
	"paraphrase":           "Paraphrase",
	"noise":                "Noise",
	"tone_shift":           "Tone Shift",
	"prompt_injection":     "Prompt Injection",
	"encoding_attack":      "Encoding Attack",
	"context_manipulation": "Context Manipulation",
	"length_extreme":       "Length Extreme",
	"custom":               "Custom Template",
}

// MutationKind returns the human-readable name for a mutation kind code.
// Unknown codes are title-cased with underscores replaced.
func MutationKind(code string) string {
	if name, ok := mutationKinds[code]; ok {
		return name
	}
	return titleWords(code)
}

// --- Invariant Types ---

var invariantTypes = map[string]string{
	"contains":      "Contains Text",
	"latency":       "Latency Ceiling",
	"valid_json":    "Valid JSON",
	"regex":         "Regex Match",
	"similarity":    "Semantic Similarity",
	"excludes_pii":  "Excludes PII",
	"refusal_check": "Refusal Check",
}

// InvariantType returns the human-readable name for an invariant type code.
func InvariantType(code string) string {
	if name, ok := invariantTypes[code]; ok {
		return name
	}
	return titleWords(code)
}

// --- Invocation Error Kinds ---

var errorKinds = map[string]string{
	"none":          "OK",
	"timeout":       "Timed Out",
	"transport":     "Transport Error",
	"adapter_fault": "Adapter Fault",
	"cancelled":     "Cancelled",
}

// ErrorKind returns the human-readable name for an invocation error code.
func ErrorKind(code string) string {
	if name, ok := errorKinds[code]; ok {
		return name
	}
	return titleWords(code)
}

// FailureCategory formats a "kind/invariant" bucket key, e.g.
// "prompt_injection/refusal_check" becomes
// "Prompt Injection → Refusal Check".
func FailureCategory(key string) string {
	kind, inv, ok := strings.Cut(key, "/")
	if !ok {
		return titleWords(key)
	}
	return MutationKind(kind) + " → " + InvariantType(inv)
}

func titleWords(code string) string {
	words := strings.Split(code, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
