// Package mutation defines the adversarial mutation model: the kinds of
// perturbation applied to a golden prompt, their difficulty weights, and the
// engine that expands a prompt into concrete mutation specs.
package mutation

import "fmt"

// Kind identifies one class of adversarial perturbation.
type Kind string

const (
	KindParaphrase          Kind = "paraphrase"
	KindNoise               Kind = "noise"
	KindToneShift           Kind = "tone_shift"
	KindPromptInjection     Kind = "prompt_injection"
	KindEncodingAttack      Kind = "encoding_attack"
	KindContextManipulation Kind = "context_manipulation"
	KindLengthExtreme       Kind = "length_extreme"
	KindCustom              Kind = "custom"
)

// AllKinds returns every supported mutation kind in stable order.
func AllKinds() []Kind {
	return []Kind{
		KindParaphrase,
		KindNoise,
		KindToneShift,
		KindPromptInjection,
		KindEncodingAttack,
		KindContextManipulation,
		KindLengthExtreme,
		KindCustom,
	}
}

// ParseKind validates a kind name from configuration.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	for _, known := range AllKinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown mutation kind %q", s)
}

// Spec is an immutable descriptor of one adversarial variant of a golden
// prompt. Created once by the engine; never modified afterwards.
type Spec struct {
	ID         string  `json:"id"`
	Kind       Kind    `json:"kind"`
	Text       string  `json:"text"`
	Weight     float64 `json:"weight"`
	SourceSeed string  `json:"source_seed"`
}
