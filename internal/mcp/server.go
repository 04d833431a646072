// Package mcp exposes flakestorm runs as MCP tools over stdio, so agent
// frameworks can trigger storms and read reports without shelling out.
package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"flakestorm/internal/config"
	"flakestorm/internal/logging"
	"flakestorm/internal/orchestrate"
	"flakestorm/internal/report"
	"flakestorm/internal/wiring"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultGetReportTimeout bounds how long get_report blocks waiting for a
// running storm when the client supplies no timeout.
var DefaultGetReportTimeout = 60 * time.Second

// Server wraps the MCP SDK server and manages one storm run at a time.
type Server struct {
	MCPServer *sdkmcp.Server
	Version   string

	mu  sync.Mutex
	run *runState
}

// runState tracks one in-flight or finished run.
type runState struct {
	id        string
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}

	// set before done is closed, read-only after
	result *orchestrate.RunResult
	err    error
}

// NewServer creates an MCP server with the storm tools registered.
func NewServer(version string) *Server {
	s := &Server{Version: version}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "flakestorm", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP over stdio until ctx is cancelled or the parent process
// goes away.
func (s *Server) Run(ctx context.Context) error {
	defer s.Shutdown()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	WatchParent(ctx, cancel)
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_storm",
		Description: "Start a mutation storm from a flakestorm.yaml config. Runs in the background and returns a run ID.",
	}, s.handleRunStorm)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_report",
		Description: "Get the result of a storm run. Blocks until the run finishes or the timeout elapses.",
	}, s.handleGetReport)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "verify_setup",
		Description: "Validate a flakestorm.yaml config and check that the configured model server is reachable.",
	}, s.handleVerifySetup)
}

// --- Tool input/output types ---

type runStormInput struct {
	ConfigPath string `json:"config_path" jsonschema:"path to flakestorm.yaml"`
	Force      bool   `json:"force,omitempty" jsonschema:"cancel any running storm and start fresh"`
}

type runStormOutput struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

type getReportInput struct {
	RunID     string `json:"run_id" jsonschema:"run ID from run_storm"`
	TimeoutMS int    `json:"timeout_ms,omitempty" jsonschema:"max wait in milliseconds (default 60000)"`
}

type getReportOutput struct {
	Status  string           `json:"status"` // running, done, error
	Score   *float64         `json:"score,omitempty"`
	Total   int              `json:"total,omitempty"`
	Passed  int              `json:"passed,omitempty"`
	Failed  int              `json:"failed,omitempty"`
	Summary string           `json:"summary,omitempty"`
	Report  *report.Document `json:"report,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type verifySetupInput struct {
	ConfigPath string `json:"config_path" jsonschema:"path to flakestorm.yaml"`
}

type verifySetupOutput struct {
	OK string `json:"ok"`
}

// --- Tool handlers ---

func (s *Server) handleRunStorm(ctx context.Context, _ *sdkmcp.CallToolRequest, input runStormInput) (*sdkmcp.CallToolResult, runStormOutput, error) {
	logger := logging.New("mcp")

	cfg, err := config.Load(input.ConfigPath)
	if err != nil {
		return nil, runStormOutput{}, err
	}
	pipeline, err := wiring.Build(cfg)
	if err != nil {
		return nil, runStormOutput{}, err
	}

	s.mu.Lock()
	if s.run != nil {
		select {
		case <-s.run.done:
			// previous run finished, safe to replace
		default:
			if !input.Force {
				id := s.run.id
				s.mu.Unlock()
				return nil, runStormOutput{}, fmt.Errorf("a storm is already running (run_id=%s); pass force to replace it", id)
			}
			logger.Warn("force-cancelling running storm", "run_id", s.run.id)
			s.run.cancel()
		}
	}

	// The run outlives this tool call, so it gets its own context.
	runCtx, cancel := context.WithCancel(context.Background())
	run := &runState{
		id:        uuid.NewString(),
		startedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	s.run = run
	s.mu.Unlock()

	go func() {
		defer close(run.done)
		defer cancel()
		run.result, run.err = pipeline.Run(runCtx)
		if run.err != nil {
			logger.Error("storm failed", "run_id", run.id, "error", run.err)
			return
		}
		logger.Info("storm finished",
			"run_id", run.id,
			"total", run.result.Total,
			"failed", run.result.Failed)
	}()

	logger.Info("storm started", "run_id", run.id, "config", input.ConfigPath)
	return nil, runStormOutput{RunID: run.id, Status: "running"}, nil
}

func (s *Server) handleGetReport(ctx context.Context, _ *sdkmcp.CallToolRequest, input getReportInput) (*sdkmcp.CallToolResult, getReportOutput, error) {
	run, err := s.getRun(input.RunID)
	if err != nil {
		return nil, getReportOutput{}, err
	}

	timeout := DefaultGetReportTimeout
	if input.TimeoutMS > 0 {
		timeout = time.Duration(input.TimeoutMS) * time.Millisecond
	}

	select {
	case <-run.done:
	case <-time.After(timeout):
		return nil, getReportOutput{Status: "running"}, nil
	case <-ctx.Done():
		return nil, getReportOutput{}, ctx.Err()
	}

	if run.err != nil {
		return nil, getReportOutput{Status: "error", Error: run.err.Error()}, nil
	}

	doc := report.NewDocument(run.result)
	return nil, getReportOutput{
		Status:  "done",
		Score:   doc.Score,
		Total:   run.result.Total,
		Passed:  run.result.Passed,
		Failed:  run.result.Failed,
		Summary: report.Summary(run.result),
		Report:  doc,
	}, nil
}

func (s *Server) handleVerifySetup(ctx context.Context, _ *sdkmcp.CallToolRequest, input verifySetupInput) (*sdkmcp.CallToolResult, verifySetupOutput, error) {
	cfg, err := config.Load(input.ConfigPath)
	if err != nil {
		return nil, verifySetupOutput{}, err
	}
	pipeline, err := wiring.Build(cfg)
	if err != nil {
		return nil, verifySetupOutput{}, err
	}
	if err := pipeline.Verify(ctx); err != nil {
		return nil, verifySetupOutput{}, err
	}
	return nil, verifySetupOutput{OK: "config valid, collaborators reachable"}, nil
}

// RunID returns the current run's ID, or empty string if none.
func (s *Server) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != nil {
		return s.run.id
	}
	return ""
}

// Shutdown cancels any running storm.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != nil {
		s.run.cancel()
		s.run = nil
	}
}

func (s *Server) getRun(id string) (*runState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run == nil {
		return nil, fmt.Errorf("no storm run (call run_storm first)")
	}
	if s.run.id != id {
		return nil, fmt.Errorf("run_id mismatch: have %s, got %s", s.run.id, id)
	}
	return s.run, nil
}
