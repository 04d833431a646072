package invariant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustBuild(t *testing.T, r *Registry, p Params) Checker {
	t.Helper()
	checkers, err := r.Build([]Params{p})
	if err != nil {
		t.Fatalf("build %s: %v", p.Type, err)
	}
	return checkers[0]
}

func TestContains(t *testing.T) {
	r := NewRegistry()
	c := mustBuild(t, r, Params{Type: "contains", Value: "confirmation_code"})

	cases := []struct {
		text string
		want bool
	}{
		{"Your confirmation_code is 882", true},
		{"Your Confirmation_Code is 882", false}, // case-sensitive
		{"no code here", false},
	}
	for _, tc := range cases {
		v := c.Check(context.Background(), Response{Text: tc.text})
		if v.Passed != tc.want {
			t.Errorf("contains(%q) = %v, want %v (%s)", tc.text, v.Passed, tc.want, v.Detail)
		}
	}
}

func TestLatency(t *testing.T) {
	r := NewRegistry()
	c := mustBuild(t, r, Params{Type: "latency", MaxMS: 2000})

	if v := c.Check(context.Background(), Response{ElapsedMS: 2500}); v.Passed {
		t.Errorf("2500ms should fail a 2000ms bound: %+v", v)
	}
	if v := c.Check(context.Background(), Response{ElapsedMS: 2000}); !v.Passed {
		t.Errorf("2000ms should pass a 2000ms bound: %+v", v)
	}
}

func TestValidJSON(t *testing.T) {
	r := NewRegistry()
	c := mustBuild(t, r, Params{Type: "valid_json"})

	cases := []struct {
		text string
		want bool
	}{
		{`{"ok": true}`, true},
		{`  [1, 2, 3] `, true},
		{`"bare string"`, true},
		{`{"ok": }`, false},
		{`not json at all`, false},
	}
	for _, tc := range cases {
		v := c.Check(context.Background(), Response{Text: tc.text})
		if v.Passed != tc.want {
			t.Errorf("valid_json(%q) = %v, want %v", tc.text, v.Passed, tc.want)
		}
	}
}

func TestRegex(t *testing.T) {
	r := NewRegistry()
	c := mustBuild(t, r, Params{Type: "regex", Value: `order #\d{4}`})

	if v := c.Check(context.Background(), Response{Text: "created order #1234 for you"}); !v.Passed {
		t.Errorf("should match: %+v", v)
	}
	if v := c.Check(context.Background(), Response{Text: "created order for you"}); v.Passed {
		t.Error("should not match")
	}

	if _, err := r.Build([]Params{{Type: "regex", Value: `([`}}); err == nil {
		t.Fatal("invalid pattern must fail at build time")
	}
}

func TestExcludesPII(t *testing.T) {
	r := NewRegistry()
	c := mustBuild(t, r, Params{Type: "excludes_pii"})

	cases := []struct {
		name string
		text string
		want bool
	}{
		{"clean", "Your order has shipped.", true},
		{"email", "Contact alice@example.com for details", false},
		{"phone", "Call me at 555-867-5309 tomorrow", false},
		{"credit card", "charged to 4111 1111 1111 1111 today", false},
	}
	for _, tc := range cases {
		v := c.Check(context.Background(), Response{Text: tc.text})
		if v.Passed != tc.want {
			t.Errorf("%s: excludes_pii = %v, want %v (%s)", tc.name, v.Passed, tc.want, v.Detail)
		}
	}
}

func TestExcludesPII_MultiMatchDetailIsStable(t *testing.T) {
	r := NewRegistry()
	c := mustBuild(t, r, Params{Type: "excludes_pii"})

	// Contains both an email and a phone number; the detail must name the
	// same match on every check, not vary between runs.
	resp := Response{Text: "Reach alice@example.com or call 555-867-5309."}

	first := c.Check(context.Background(), resp)
	if first.Passed {
		t.Fatal("response with PII must fail")
	}
	if !strings.Contains(first.Detail, "email-like") {
		t.Errorf("detail should name the email match first, got %q", first.Detail)
	}
	for i := 0; i < 50; i++ {
		if v := c.Check(context.Background(), resp); v.Detail != first.Detail {
			t.Fatalf("detail drifted on check %d: %q vs %q", i, v.Detail, first.Detail)
		}
	}
}

func TestRefusal_Polarity(t *testing.T) {
	r := NewRegistry()
	comply := mustBuild(t, r, Params{Type: "refusal_check", Intent: "comply"})
	refuse := mustBuild(t, r, Params{Type: "refusal_check", Intent: "refuse"})

	refusing := Response{Text: "I'm sorry, I cannot help with that request."}
	complying := Response{Text: "Sure, here is the summary you asked for."}

	if v := comply.Check(context.Background(), refusing); v.Passed {
		t.Error("comply intent must fail on refusal")
	}
	if v := comply.Check(context.Background(), complying); !v.Passed {
		t.Error("comply intent must pass on compliance")
	}
	if v := refuse.Check(context.Background(), refusing); !v.Passed {
		t.Error("refuse intent must pass on refusal")
	}
	if v := refuse.Check(context.Background(), complying); v.Passed {
		t.Error("refuse intent must fail on compliance")
	}
}

func TestRefusal_BadIntent(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Build([]Params{{Type: "refusal_check", Intent: "maybe"}}); err == nil {
		t.Fatal("expected error for unknown intent")
	}
}

type stubScorer struct {
	score float64
	err   error
}

func (s stubScorer) Score(context.Context, string, string) (float64, error) {
	return s.score, s.err
}

func TestSimilarity(t *testing.T) {
	r := NewRegistry(WithScorer(stubScorer{score: 0.91}))
	c := mustBuild(t, r, Params{Type: "similarity", Value: "expected answer", Threshold: 0.85})

	if v := c.Check(context.Background(), Response{Text: "close enough answer"}); !v.Passed {
		t.Errorf("0.91 >= 0.85 should pass: %+v", v)
	}

	low := NewRegistry(WithScorer(stubScorer{score: 0.2}))
	c = mustBuild(t, low, Params{Type: "similarity", Value: "expected answer", Threshold: 0.85})
	if v := c.Check(context.Background(), Response{Text: "way off"}); v.Passed {
		t.Error("0.2 < 0.85 should fail")
	}
}

func TestSimilarity_ScorerErrorFailsVerdict(t *testing.T) {
	r := NewRegistry(WithScorer(stubScorer{err: errors.New("embedding backend down")}))
	c := mustBuild(t, r, Params{Type: "similarity", Value: "x", Threshold: 0.5})

	v := c.Check(context.Background(), Response{Text: "anything"})
	if v.Passed {
		t.Error("scorer error must yield a failed verdict, not a panic or pass")
	}
}

func TestSimilarity_RequiresScorer(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Build([]Params{{Type: "similarity", Value: "x", Threshold: 0.5}}); err == nil {
		t.Fatal("similarity without a scorer must fail at build time")
	}
}

func TestRegistry_UnknownInvariant(t *testing.T) {
	r := NewRegistry()
	_, err := r.Build([]Params{{Type: "clairvoyance"}})

	var unknown *UnknownInvariantError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownInvariantError, got %v", err)
	}
	if unknown.Name != "clairvoyance" {
		t.Errorf("error names %q", unknown.Name)
	}
}

func TestCheck_Idempotent(t *testing.T) {
	r := NewRegistry(WithScorer(stubScorer{score: 0.7}))
	checkers, err := r.Build([]Params{
		{Type: "contains", Value: "ok"},
		{Type: "latency", MaxMS: 100},
		{Type: "valid_json"},
		{Type: "excludes_pii"},
		{Type: "refusal_check"},
		{Type: "similarity", Value: "ok", Threshold: 0.5},
	})
	if err != nil {
		t.Fatal(err)
	}

	resp := Response{Text: `{"status": "ok"}`, ElapsedMS: 50}
	for _, c := range checkers {
		first := c.Check(context.Background(), resp)
		second := c.Check(context.Background(), resp)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%s not idempotent (-first +second):\n%s", c.Name(), diff)
		}
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	want := []string{"contains", "excludes_pii", "latency", "refusal_check", "regex", "similarity", "valid_json"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}
