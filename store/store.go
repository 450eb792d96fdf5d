package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mshekow/vm-benchmark/parser"
)

type RunState string

const (
	StatePending   RunState = "Pending"
	StateRunning   RunState = "Running"
	StateSucceeded RunState = "Succeeded"
	StateFailed    RunState = "Failed"
	StateTimedOut  RunState = "TimedOut"
)

// Terminal reports whether the state is final. The runner never re-polls a VM type
// once its run is terminal.
func (s RunState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateTimedOut
}

// RunResult is the outcome of one workload unit. It is owned by the runner until the
// state is terminal, then copied into the Store, after which it is only read.
type RunResult struct {
	VMType  string
	UnitID  string
	State   RunState
	RawLog  string // empty if no log could be retrieved
	Metrics []parser.MetricRecord
	Err     string // non-empty iff the run failed or timed out
}

// Store collects one RunResult per VM type and persists raw logs into a timestamped
// session directory, so that historical runs are never overwritten and can be
// re-parsed offline later.
type Store struct {
	mu         sync.Mutex
	results    map[string]*RunResult
	sessionDir string
}

const sessionStampLayout = "2006-01-02T15-04-05"

// NewStore creates a store with a fresh session directory under root.
func NewStore(root string) (*Store, error) {
	dir := filepath.Join(root, time.Now().Format(sessionStampLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session directory %s: %w", dir, err)
	}
	return &Store{results: map[string]*RunResult{}, sessionDir: dir}, nil
}

// OpenSession opens the session directory of an earlier run for re-parsing.
func OpenSession(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot open session directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("session path %s is not a directory", dir)
	}
	return &Store{results: map[string]*RunResult{}, sessionDir: dir}, nil
}

func (s *Store) SessionDir() string {
	return s.sessionDir
}

// Put stores a copy of the result under its VM type. Each VM type is written by
// exactly one watcher, but writes from different watchers may be concurrent.
func (s *Store) Put(rr *RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rr
	cp.Metrics = append([]parser.MetricRecord(nil), rr.Metrics...)
	s.results[rr.VMType] = &cp
}

// All returns the stored results keyed by VM type.
func (s *Store) All() map[string]*RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*RunResult, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}

func (s *Store) rawPath(vmType string) string {
	return filepath.Join(s.sessionDir, vmType+".log")
}

// PersistRaw writes the raw log for one VM type into the session directory.
func (s *Store) PersistRaw(vmType, raw string) error {
	if err := os.WriteFile(s.rawPath(vmType), []byte(raw), 0o644); err != nil {
		return fmt.Errorf("failed to persist raw log for %s: %w", vmType, err)
	}
	return nil
}

// LoadRaw reads a previously persisted raw log.
func (s *Store) LoadRaw(vmType string) (string, error) {
	buf, err := os.ReadFile(s.rawPath(vmType))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
