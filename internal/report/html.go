package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"math"
	"os"

	"flakestorm/internal/display"
	"flakestorm/internal/format"
	"flakestorm/internal/orchestrate"
)

// WriteHTML renders the run as a self-contained HTML page: score ring,
// per-kind breakdown, mutation grid with drill-down. No external assets,
// so the file can be attached to a CI run or mailed around as-is.
func WriteHTML(w io.Writer, run *orchestrate.RunResult) error {
	view, err := newHTMLView(run)
	if err != nil {
		return err
	}
	if err := htmlTmpl.Execute(w, view); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

// SaveHTML writes the HTML report to a file at path.
func SaveHTML(path string, run *orchestrate.RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := WriteHTML(f, run); err != nil {
		return err
	}
	return f.Close()
}

const scoreRingRadius = 78

type htmlView struct {
	Date          string
	Duration      string
	ScoreDisplay  string
	Circumference float64
	ScoreOffset   float64
	Total         int
	Passed        int
	Failed        int
	AvgLatency    string
	P95Latency    string
	Kinds         []htmlKind
	Results       []htmlResult
	ResultsJSON   template.JS
}

type htmlKind struct {
	Name        string
	Total       int
	Passed      int
	RatePercent float64
}

type htmlResult struct {
	Index   int
	Kind    string
	Text    string
	Elapsed string
	Passed  bool
	Mark    string
}

// resultDetail is the drill-down payload embedded as JSON for the modal.
type resultDetail struct {
	Kind     string              `json:"kind"`
	Seed     string              `json:"seed"`
	Text     string              `json:"text"`
	Response string              `json:"response"`
	Error    string              `json:"error"`
	Checks   []resultDetailCheck `json:"checks"`
}

type resultDetailCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

func newHTMLView(run *orchestrate.RunResult) (*htmlView, error) {
	circumference := 2 * math.Pi * scoreRingRadius

	view := &htmlView{
		Date:          run.StartedAt.Format("2006-01-02 15:04:05"),
		Duration:      format.Duration(run.Duration()),
		Circumference: circumference,
		ScoreOffset:   circumference,
		ScoreDisplay:  "n/a",
		Total:         run.Total,
		Passed:        run.Passed,
		Failed:        run.Failed,
		AvgLatency:    fmt.Sprintf("%.0f", run.Latency.AvgMS),
		P95Latency:    fmt.Sprintf("%.0f", run.Latency.P95MS),
	}
	if !run.Undefined() {
		view.ScoreDisplay = fmt.Sprintf("%.1f%%", run.Score*100)
		view.ScoreOffset = circumference * (1 - run.Score)
	}

	for _, ks := range run.ByKind {
		k := htmlKind{
			Name:   display.MutationKind(string(ks.Kind)),
			Total:  ks.Total,
			Passed: ks.Passed,
		}
		if ks.Total > 0 {
			k.RatePercent = math.Round(1000*float64(ks.Passed)/float64(ks.Total)) / 10
		}
		view.Kinds = append(view.Kinds, k)
	}

	details := make([]resultDetail, 0, len(run.Results))
	for i, r := range run.Results {
		view.Results = append(view.Results, htmlResult{
			Index:   i,
			Kind:    display.MutationKind(string(r.Mutation.Kind)),
			Text:    r.Mutation.Text,
			Elapsed: fmt.Sprintf("%.0fms", r.Outcome.ElapsedMS),
			Passed:  r.Passed,
			Mark:    format.PassMark(r.Passed),
		})
		d := resultDetail{
			Kind:     display.MutationKind(string(r.Mutation.Kind)),
			Seed:     r.Mutation.SourceSeed,
			Text:     r.Mutation.Text,
			Response: r.Outcome.Response,
		}
		if r.Outcome.Failed() {
			d.Error = display.ErrorKind(string(r.Outcome.Error))
		}
		for _, v := range r.Verdicts {
			d.Checks = append(d.Checks, resultDetailCheck{
				Name:   display.InvariantType(v.Invariant),
				Passed: v.Passed,
				Detail: v.Detail,
			})
		}
		details = append(details, d)
	}

	raw, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode report details: %w", err)
	}
	view.ResultsJSON = template.JS(raw)
	return view, nil
}

var htmlTmpl = template.Must(template.New("report").Parse(htmlPage))

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>flakestorm report {{.Date}}</title>
<style>
:root {
  --bg: #0b0b11; --card: #191923; --text: #e9e9ee; --muted: #8d8da0;
  --accent: #6366f1; --good: #22c55e; --bad: #ef4444; --line: #2b2b3b;
}
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: var(--bg); color: var(--text); line-height: 1.6; }
.wrap { max-width: 1280px; margin: 0 auto; padding: 2rem; }
header { display: flex; justify-content: space-between; align-items: center; border-bottom: 1px solid var(--line); padding-bottom: 1rem; margin-bottom: 2rem; }
.brand { font-size: 1.4rem; font-weight: 600; }
.meta { color: var(--muted); font-size: .85rem; text-align: right; }
.top { display: grid; grid-template-columns: 1fr 2fr; gap: 1.5rem; margin-bottom: 2rem; }
.card { background: var(--card); border-radius: 14px; padding: 1.5rem; }
.ring { position: relative; width: 180px; height: 180px; margin: 0 auto; }
.ring svg { transform: rotate(-90deg); }
.ring circle { fill: none; stroke-width: 12; }
.ring .track { stroke: var(--line); }
.ring .arc { stroke: var(--accent); stroke-linecap: round; }
.ring .value { position: absolute; top: 50%; left: 50%; transform: translate(-50%,-50%); font-size: 2rem; font-weight: 700; }
.ring-label { text-align: center; margin-top: .75rem; color: var(--muted); }
.stats { display: grid; grid-template-columns: repeat(2,1fr); gap: 1rem; }
.stat .label { font-size: .85rem; color: var(--muted); }
.stat .value { font-size: 1.5rem; font-weight: 600; }
.good { color: var(--good); } .bad { color: var(--bad); }
h2 { font-size: 1.15rem; margin-bottom: 1rem; }
.section { margin-bottom: 2rem; }
.kinds { display: grid; grid-template-columns: repeat(auto-fit,minmax(240px,1fr)); gap: 1rem; }
.kind-head { display: flex; justify-content: space-between; margin-bottom: .75rem; }
.bar { height: 8px; background: var(--line); border-radius: 4px; overflow: hidden; }
.bar > div { height: 100%; background: var(--accent); }
.kind-sub { margin-top: .5rem; font-size: .85rem; color: var(--muted); }
.grid { display: grid; grid-template-columns: repeat(auto-fill,minmax(220px,1fr)); gap: 1rem; }
.cell { background: var(--card); border-radius: 12px; padding: 1rem; cursor: pointer; border-left: 4px solid var(--line); }
.cell.passed { border-left-color: var(--good); }
.cell.failed { border-left-color: var(--bad); }
.cell .kind { font-size: .7rem; text-transform: uppercase; letter-spacing: .05em; color: var(--muted); }
.cell .text { font-size: .85rem; overflow: hidden; display: -webkit-box; -webkit-line-clamp: 2; -webkit-box-orient: vertical; }
.cell .foot { display: flex; justify-content: space-between; margin-top: .5rem; font-size: .75rem; color: var(--muted); }
.modal { display: none; position: fixed; inset: 0; background: rgba(0,0,0,.8); z-index: 10; align-items: center; justify-content: center; padding: 2rem; }
.modal.open { display: flex; }
.modal-box { background: var(--card); border-radius: 14px; max-width: 760px; width: 100%; max-height: 80vh; overflow-y: auto; padding: 2rem; }
.modal-box h3 { margin-bottom: 1rem; }
.field { margin-bottom: 1rem; }
.field .label { font-size: .8rem; color: var(--muted); }
.field pre { background: var(--bg); border-radius: 8px; padding: .75rem; font-size: .85rem; white-space: pre-wrap; word-break: break-word; }
.check { display: flex; gap: .5rem; padding: .5rem .75rem; background: var(--bg); border-radius: 8px; margin-bottom: .4rem; font-size: .85rem; }
</style>
</head>
<body>
<div class="wrap">
  <header>
    <div class="brand">flakestorm</div>
    <div class="meta"><div>{{.Date}}</div><div>Duration: {{.Duration}}</div></div>
  </header>

  <div class="top">
    <div class="card">
      <div class="ring">
        <svg width="180" height="180">
          <circle class="track" cx="90" cy="90" r="78"></circle>
          <circle class="arc" cx="90" cy="90" r="78"
            stroke-dasharray="{{printf "%.2f" .Circumference}}"
            stroke-dashoffset="{{printf "%.2f" .ScoreOffset}}"></circle>
        </svg>
        <div class="value">{{.ScoreDisplay}}</div>
      </div>
      <div class="ring-label">Robustness Score</div>
    </div>
    <div class="card stats">
      <div class="stat"><div class="label">Total Mutations</div><div class="value">{{.Total}}</div></div>
      <div class="stat"><div class="label">Passed</div><div class="value good">{{.Passed}}</div></div>
      <div class="stat"><div class="label">Failed</div><div class="value bad">{{.Failed}}</div></div>
      <div class="stat"><div class="label">Latency avg / p95</div><div class="value">{{.AvgLatency}} / {{.P95Latency}} ms</div></div>
    </div>
  </div>

  {{if .Kinds}}
  <div class="section">
    <h2>By Mutation Kind</h2>
    <div class="kinds">
      {{range .Kinds}}
      <div class="card">
        <div class="kind-head"><span>{{.Name}}</span><span>{{.RatePercent}}%</span></div>
        <div class="bar"><div style="width: {{.RatePercent}}%"></div></div>
        <div class="kind-sub">{{.Passed}}/{{.Total}} passed</div>
      </div>
      {{end}}
    </div>
  </div>
  {{end}}

  <div class="section">
    <h2>Mutation Results</h2>
    <div class="grid">
      {{range .Results}}
      <div class="cell {{if .Passed}}passed{{else}}failed{{end}}" onclick="showDetail({{.Index}})">
        <div class="kind">{{.Kind}}</div>
        <div class="text">{{.Text}}</div>
        <div class="foot"><span>{{.Elapsed}}</span><span>{{.Mark}}</span></div>
      </div>
      {{end}}
    </div>
  </div>
</div>

<div class="modal" id="modal">
  <div class="modal-box">
    <h3>Mutation Detail</h3>
    <div id="modal-body"></div>
  </div>
</div>

<script>
const results = {{.ResultsJSON}};

function esc(s) {
  const d = document.createElement('div');
  d.textContent = s || '';
  return d.innerHTML;
}

function showDetail(i) {
  const r = results[i];
  const checks = (r.checks || []).map(c =>
    '<div class="check"><span class="' + (c.passed ? 'good' : 'bad') + '">' +
    (c.passed ? '✓' : '✗') + '</span><span><strong>' + esc(c.name) +
    '</strong> ' + esc(c.detail) + '</span></div>').join('');
  document.getElementById('modal-body').innerHTML =
    '<div class="field"><div class="label">Golden Prompt</div><pre>' + esc(r.seed) + '</pre></div>' +
    '<div class="field"><div class="label">Mutated (' + esc(r.kind) + ')</div><pre>' + esc(r.text) + '</pre></div>' +
    '<div class="field"><div class="label">Agent Response</div><pre>' + esc(r.response || r.error || '(empty)') + '</pre></div>' +
    '<div class="field"><div class="label">Invariant Checks</div>' + checks + '</div>';
  document.getElementById('modal').classList.add('open');
}

document.getElementById('modal').addEventListener('click', e => {
  if (e.target.id === 'modal') e.target.classList.remove('open');
});
document.addEventListener('keydown', e => {
  if (e.key === 'Escape') document.getElementById('modal').classList.remove('open');
});
</script>
</body>
</html>
`
