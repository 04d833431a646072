package invariant

import (
	"context"
	"errors"
	"fmt"
)

type similarityChecker struct {
	expected  string
	threshold float64
	scorer    Scorer
}

// buildSimilarity wires the external similarity collaborator. The checker
// itself is pure comparison: score >= threshold.
func (r *Registry) buildSimilarity(p Params) (Checker, error) {
	if r.scorer == nil {
		return nil, errors.New("similarity requires a configured similarity scorer (model.embedding_model)")
	}
	if p.Value == "" {
		return nil, errors.New("similarity requires an expected text in value")
	}
	if p.Threshold <= 0 || p.Threshold > 1 {
		return nil, fmt.Errorf("similarity threshold must be in (0,1], got %v", p.Threshold)
	}
	return &similarityChecker{expected: p.Value, threshold: p.Threshold, scorer: r.scorer}, nil
}

func (c *similarityChecker) Name() string { return "similarity" }

func (c *similarityChecker) Check(ctx context.Context, resp Response) Verdict {
	score, err := c.scorer.Score(ctx, resp.Text, c.expected)
	if err != nil {
		return Verdict{Invariant: c.Name(), Passed: false,
			Detail: fmt.Sprintf("similarity scoring failed: %v", err)}
	}
	if score >= c.threshold {
		return Verdict{Invariant: c.Name(), Passed: true,
			Detail: fmt.Sprintf("%.3f >= %.3f", score, c.threshold)}
	}
	return Verdict{Invariant: c.Name(), Passed: false,
		Detail: fmt.Sprintf("%.3f < %.3f", score, c.threshold)}
}
