package invariant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// --- contains ---

type containsChecker struct {
	value string
}

func buildContains(p Params) (Checker, error) {
	if p.Value == "" {
		return nil, errors.New("contains requires a non-empty value")
	}
	return &containsChecker{value: p.Value}, nil
}

func (c *containsChecker) Name() string { return "contains" }

// Check is case-sensitive, exact substring.
func (c *containsChecker) Check(_ context.Context, resp Response) Verdict {
	if strings.Contains(resp.Text, c.value) {
		return Verdict{Invariant: c.Name(), Passed: true}
	}
	return Verdict{
		Invariant: c.Name(),
		Passed:    false,
		Detail:    fmt.Sprintf("response does not contain %q", c.value),
	}
}

// --- latency ---

type latencyChecker struct {
	maxMS float64
}

func buildLatency(p Params) (Checker, error) {
	if p.MaxMS <= 0 {
		return nil, errors.New("latency requires max_ms > 0")
	}
	return &latencyChecker{maxMS: p.MaxMS}, nil
}

func (c *latencyChecker) Name() string { return "latency" }

func (c *latencyChecker) Check(_ context.Context, resp Response) Verdict {
	if resp.ElapsedMS <= c.maxMS {
		return Verdict{Invariant: c.Name(), Passed: true,
			Detail: fmt.Sprintf("%.0fms <= %.0fms", resp.ElapsedMS, c.maxMS)}
	}
	return Verdict{Invariant: c.Name(), Passed: false,
		Detail: fmt.Sprintf("%.0fms > %.0fms", resp.ElapsedMS, c.maxMS)}
}

// --- valid_json ---

type validJSONChecker struct{}

func buildValidJSON(Params) (Checker, error) {
	return &validJSONChecker{}, nil
}

func (c *validJSONChecker) Name() string { return "valid_json" }

// Check requires syntactic validity only; no schema is applied.
func (c *validJSONChecker) Check(_ context.Context, resp Response) Verdict {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Text)), &v); err != nil {
		return Verdict{Invariant: c.Name(), Passed: false,
			Detail: fmt.Sprintf("not valid JSON: %v", err)}
	}
	return Verdict{Invariant: c.Name(), Passed: true}
}

// --- regex ---

type regexChecker struct {
	re *regexp.Regexp
}

func buildRegex(p Params) (Checker, error) {
	if p.Value == "" {
		return nil, errors.New("regex requires a pattern in value")
	}
	re, err := regexp.Compile(p.Value)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	return &regexChecker{re: re}, nil
}

func (c *regexChecker) Name() string { return "regex" }

func (c *regexChecker) Check(_ context.Context, resp Response) Verdict {
	if c.re.MatchString(resp.Text) {
		return Verdict{Invariant: c.Name(), Passed: true}
	}
	return Verdict{Invariant: c.Name(), Passed: false,
		Detail: fmt.Sprintf("response does not match %q", c.re.String())}
}
