package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentic-rfp/rfp-engine/constants"
)

// Run is the observable record of one pipeline execution. Completed
// and failed are terminal; there is no cancellation.
type Run struct {
	ID          string              `json:"run_id"`
	Status      constants.RunStatus `json:"status"`
	Error       string              `json:"error,omitempty"`
	Override    *int                `json:"manual_override,omitempty"`
	SubmittedAt time.Time           `json:"submitted_at"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
}

// RunManager starts pipeline runs in the background and tracks their
// status. One run executes at a time; starting a second while one is
// active queues behind it on the internal mutex of the executor.
type RunManager struct {
	orch   *Orchestrator
	logger *slog.Logger

	mu      sync.RWMutex
	runs    map[string]*Run
	execMu  sync.Mutex
	baseCtx context.Context
}

func NewRunManager(orch *Orchestrator, logger *slog.Logger) *RunManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunManager{
		orch:    orch,
		logger:  logger,
		runs:    make(map[string]*Run),
		baseCtx: context.Background(),
	}
}

// Start registers a queued run and launches it in the background,
// returning immediately with the run's observable snapshot.
func (m *RunManager) Start(override *int) Run {
	run := &Run{
		ID:          uuid.New().String(),
		Status:      constants.RunQueued,
		Override:    override,
		SubmittedAt: time.Now().UTC(),
	}
	m.mu.Lock()
	m.runs[run.ID] = run
	m.mu.Unlock()

	m.logger.Info("run.queued", "run_id", run.ID)
	go m.execute(run.ID, override)
	return *run
}

func (m *RunManager) execute(runID string, override *int) {
	m.execMu.Lock()
	defer m.execMu.Unlock()

	m.setStatus(runID, constants.RunRunning, "")
	m.logger.Info("run.started", "run_id", runID)

	_, err := m.orch.Execute(m.baseCtx, override)
	if err != nil {
		m.logger.Error("run.failed", "run_id", runID, "error", err)
		m.setStatus(runID, constants.RunFailed, err.Error())
		return
	}
	m.logger.Info("run.completed", "run_id", runID)
	m.setStatus(runID, constants.RunCompleted, "")
}

func (m *RunManager) setStatus(runID string, status constants.RunStatus, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return
	}
	run.Status = status
	run.Error = errMsg
	if status.Terminal() {
		now := time.Now().UTC()
		run.FinishedAt = &now
	}
}

// Get returns a snapshot of one run.
func (m *RunManager) Get(runID string) (Run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[runID]
	if !ok {
		return Run{}, false
	}
	return *run, true
}

// List returns snapshots of every tracked run, newest first.
func (m *RunManager) List() []Run {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Run, 0, len(m.runs))
	for _, run := range m.runs {
		out = append(out, *run)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}
