// Package report renders a finished run as JSON, terminal text or a
// self-contained HTML page, and emits the CI workflow template.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"flakestorm/internal/orchestrate"
)

// SchemaVersion identifies the JSON document layout.
const SchemaVersion = 1

// Document is the serialized form of a run. Score is a pointer so the
// undefined case (zero total weight) serializes as null rather than a
// misleading 0.
type Document struct {
	Version int      `json:"version"`
	Score   *float64 `json:"score"`
	orchestrate.RunResult
}

// NewDocument wraps a run result for serialization.
func NewDocument(run *orchestrate.RunResult) *Document {
	doc := &Document{Version: SchemaVersion, RunResult: *run}
	if !run.Undefined() {
		s := run.Score
		doc.Score = &s
	}
	return doc
}

// Run returns the embedded run result with the score restored from the
// serialized pointer.
func (d *Document) Run() *orchestrate.RunResult {
	run := d.RunResult
	if d.Score != nil {
		run.Score = *d.Score
	} else {
		run.Score = math.NaN()
	}
	return &run
}

// WriteJSON writes the run as an indented JSON document.
func WriteJSON(w io.Writer, run *orchestrate.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(run)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// SaveJSON writes the run as a JSON file at path.
func SaveJSON(path string, run *orchestrate.RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := WriteJSON(f, run); err != nil {
		return err
	}
	return f.Close()
}

// LoadJSON reads a previously saved JSON report.
func LoadJSON(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &doc, nil
}
