// Package workspace manages the per-run scratch directory holding
// checkpoint files, so an expensive fan-out can be inspected or
// resumed without re-running the model calls.
package workspace

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Checkpoint file names written during a run.
const (
	ExtractedTreeFile    = "result.json"
	ReducedAnalysisFile  = "final_result.json"
	ConsolidatedFundFile = "combined_fund_data.json"
)

// Workspace is one run's scratch directory, keyed by the run ID.
type Workspace struct {
	runID uuid.UUID
	dir   string
	keep  bool
}

// Manager creates and disposes run workspaces under a fixed root.
type Manager struct {
	root   string
	keep   bool
	logger *log.Logger
}

func NewManager(root string, keep bool, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{root: root, keep: keep, logger: logger}
}

// Create makes a fresh directory for the given run.
func (m *Manager) Create(runID uuid.UUID) (*Workspace, error) {
	dir := filepath.Join(m.root, runID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace %s: %w", dir, err)
	}
	return &Workspace{runID: runID, dir: dir, keep: m.keep}, nil
}

func (w *Workspace) Dir() string {
	return w.dir
}

// WriteCheckpoint serializes v as indented JSON under the workspace.
func (w *Workspace) WriteCheckpoint(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing checkpoint %s: %w", name, err)
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing checkpoint %s: %w", name, err)
	}
	return nil
}

// ReadCheckpoint loads a checkpoint previously written this run.
func (w *Workspace) ReadCheckpoint(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(w.dir, name))
	if err != nil {
		return fmt.Errorf("reading checkpoint %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding checkpoint %s: %w", name, err)
	}
	return nil
}

// ReadFile returns a checkpoint's raw bytes, for artifact upload.
func (w *Workspace) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(w.dir, name))
}

// WriteFile stores raw bytes (rendered artifacts) in the workspace.
func (w *Workspace) WriteFile(name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Cleanup removes the directory unless the manager was configured to
// keep workspaces for debugging. Safe to call multiple times.
func (w *Workspace) Cleanup(logger *log.Logger) {
	if w.keep {
		return
	}
	if err := os.RemoveAll(w.dir); err != nil && logger != nil {
		logger.Printf("[WARN] workspace: cleanup of %s failed: %v", w.dir, err)
	}
}
