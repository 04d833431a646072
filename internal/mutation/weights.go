package mutation

import "fmt"

// defaultWeights assigns a difficulty weight per kind. Adversarial kinds
// (injection, encoding, context manipulation) count more toward the score
// than cheap perturbations like typo noise.
var defaultWeights = map[Kind]float64{
	KindParaphrase:          1.0,
	KindNoise:               0.5,
	KindToneShift:           0.75,
	KindPromptInjection:     3.0,
	KindEncodingAttack:      2.5,
	KindContextManipulation: 2.0,
	KindLengthExtreme:       1.5,
	KindCustom:              1.0,
}

// WeightTable resolves the difficulty weight for each mutation kind.
type WeightTable map[Kind]float64

// NewWeightTable merges user overrides over the defaults. Overrides must be
// strictly positive and name known kinds.
func NewWeightTable(overrides map[string]float64) (WeightTable, error) {
	wt := make(WeightTable, len(defaultWeights))
	for k, w := range defaultWeights {
		wt[k] = w
	}
	for name, w := range overrides {
		kind, err := ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("weight table: %w", err)
		}
		if w <= 0 {
			return nil, fmt.Errorf("weight table: weight for %q must be > 0, got %v", name, w)
		}
		wt[kind] = w
	}
	return wt, nil
}

// Weight returns the table weight for kind, or 1.0 when unlisted.
func (wt WeightTable) Weight(kind Kind) float64 {
	if w, ok := wt[kind]; ok {
		return w
	}
	return 1.0
}
