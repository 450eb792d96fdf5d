package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alitto/pond"
	"github.com/schollz/progressbar/v3"

	"github.com/mshekow/vm-benchmark/cluster"
	"github.com/mshekow/vm-benchmark/config"
	"github.com/mshekow/vm-benchmark/parser"
	"github.com/mshekow/vm-benchmark/store"
)

type Mode string

const (
	// CreateUnits schedules a fresh workload unit for every VM type.
	CreateUnits Mode = "create"
	// ReuseExisting skips creation and polls units left behind by an earlier run.
	ReuseExisting Mode = "reuse"
)

// How many consecutive status poll errors are tolerated before a VM type is failed.
const maxPollErrors = 3

// Runner drives one workload unit per configured VM type through its lifecycle and
// fills the store with terminal results.
type Runner struct {
	client cluster.Client
	parser parser.Parser
	store  *store.Store
	cfg    *config.Config
}

func New(client cluster.Client, p parser.Parser, st *store.Store, cfg *config.Config) *Runner {
	return &Runner{client: client, parser: p, store: st, cfg: cfg}
}

type launchedUnit struct {
	vmType string
	unitID string
}

// Run takes every configured VM type to a terminal state and returns the results
// keyed by VM type. A failure on one VM type never aborts the others; it is recorded
// as that VM type's Failed result instead.
func (r *Runner) Run(ctx context.Context, mode Mode) (map[string]*store.RunResult, error) {
	// Launch phase: schedule every unit before polling any of them, so that one slow
	// node pool cannot delay another's start.
	var units []launchedUnit
	for _, vt := range r.cfg.VMTypes {
		unitID, err := r.launch(ctx, vt, mode)
		if err != nil {
			slog.Error("failed to launch workload unit",
				slog.String("vmType", vt.Name), slog.String("error", err.Error()))
			r.store.Put(&store.RunResult{
				VMType: vt.Name,
				State:  store.StateFailed,
				Err:    err.Error(),
			})
			continue
		}
		slog.Info("launched workload unit", slog.String("vmType", vt.Name), slog.String("unitID", unitID))
		units = append(units, launchedUnit{vmType: vt.Name, unitID: unitID})
	}

	// Watch phase: one concurrent watcher per VM type.
	resultCh := make(chan *store.RunResult, len(units))
	bar := progressbar.Default(int64(len(units)), "Waiting for workloads:")
	if r.cfg.Concurrency == 0 {
		wg := &sync.WaitGroup{}
		for _, u := range units {
			wg.Add(1)
			go func(u launchedUnit) {
				defer wg.Done()
				resultCh <- r.watch(ctx, u.vmType, u.unitID)
				bar.Add(1)
			}(u)
		}
		wg.Wait()
	} else {
		pool := pond.New(r.cfg.Concurrency, 0, pond.MinWorkers(r.cfg.Concurrency))
		for _, u := range units {
			u := u
			pool.Submit(func() {
				resultCh <- r.watch(ctx, u.vmType, u.unitID)
				bar.Add(1)
			})
		}
		pool.StopAndWait()
	}
	close(resultCh)

	for rr := range resultCh {
		if rr.RawLog != "" {
			if err := r.store.PersistRaw(rr.VMType, rr.RawLog); err != nil {
				slog.Error("failed to persist raw log",
					slog.String("vmType", rr.VMType), slog.String("error", err.Error()))
			}
		}
		r.store.Put(rr)
	}

	if r.cfg.DeleteUnits {
		r.cleanUp(ctx, units)
	}

	return r.store.All(), nil
}

func (r *Runner) launch(ctx context.Context, vt config.VMType, mode Mode) (string, error) {
	if mode == ReuseExisting {
		return cluster.UnitName(vt.Name), nil
	}
	return r.client.CreateUnit(ctx, vt.Name, r.cfg.Image, vt.NodeSelector)
}

// watch polls one unit until it is terminal or the wait budget is exhausted. The
// returned result is always terminal.
func (r *Runner) watch(ctx context.Context, vmType, unitID string) *store.RunResult {
	rr := &store.RunResult{VMType: vmType, UnitID: unitID, State: store.StatePending}
	deadline := time.Now().Add(time.Duration(r.cfg.WaitBudget))

	pollErrors := 0
	for {
		status, err := r.client.UnitStatus(ctx, unitID)
		if err != nil {
			pollErrors++
			slog.Debug("status poll failed",
				slog.String("vmType", vmType), slog.Int("attempt", pollErrors), slog.String("error", err.Error()))
			if pollErrors >= maxPollErrors {
				rr.State = store.StateFailed
				rr.Err = fmt.Errorf("polling unit %s failed: %w", unitID, err).Error()
				return rr
			}
		} else {
			pollErrors = 0
			switch status {
			case cluster.UnitRunning:
				if rr.State == store.StatePending {
					slog.Info("workload unit started", slog.String("vmType", vmType))
				}
				rr.State = store.StateRunning
			case cluster.UnitSucceeded:
				r.finish(ctx, rr, store.StateSucceeded, "")
				return rr
			case cluster.UnitFailed:
				// The log is still retrieved below: partial metrics are useful even
				// for a failed run.
				r.finish(ctx, rr, store.StateFailed, fmt.Sprintf("unit %s exited with an error status", unitID))
				return rr
			}
		}

		if time.Now().After(deadline) {
			r.finish(ctx, rr, store.StateTimedOut,
				fmt.Sprintf("unit %s did not finish within %s", unitID, time.Duration(r.cfg.WaitBudget)))
			return rr
		}

		select {
		case <-ctx.Done():
			rr.State = store.StateFailed
			rr.Err = ctx.Err().Error()
			return rr
		case <-time.After(time.Duration(r.cfg.PollInterval)):
		}
	}
}

// finish moves the run into a terminal state, retrieving and parsing whatever log
// output the unit produced. A run that finished but whose log cannot be retrieved is
// failed, because it can contribute nothing to the matrix.
func (r *Runner) finish(ctx context.Context, rr *store.RunResult, state store.RunState, reason string) {
	rr.State = state
	rr.Err = reason

	raw, err := r.client.UnitLog(ctx, rr.UnitID)
	if err != nil {
		slog.Warn("failed to retrieve unit log",
			slog.String("vmType", rr.VMType), slog.String("error", err.Error()))
		if rr.Err == "" {
			rr.State = store.StateFailed
			rr.Err = fmt.Errorf("retrieving unit %s log failed: %w", rr.UnitID, err).Error()
		}
		return
	}

	rr.RawLog = raw
	rr.Metrics = r.parser.Parse(raw)
	slog.Info("workload unit finished",
		slog.String("vmType", rr.VMType),
		slog.String("state", string(rr.State)),
		slog.Int("metrics", len(rr.Metrics)))
}

func (r *Runner) cleanUp(ctx context.Context, units []launchedUnit) {
	for _, u := range units {
		if err := r.client.DeleteUnit(ctx, u.unitID); err != nil {
			slog.Error("failed to delete workload unit",
				slog.String("vmType", u.vmType), slog.String("error", err.Error()))
		}
	}
}

// Reparse rebuilds results from the raw logs of an earlier session without touching
// the cluster. A VM type whose log file is missing is reported as failed; everything
// else is parsed exactly like a fresh run.
func Reparse(st *store.Store, p parser.Parser, vmTypes []string) map[string]*store.RunResult {
	for _, vmType := range vmTypes {
		raw, err := st.LoadRaw(vmType)
		if err != nil {
			slog.Error("no raw log for VM type",
				slog.String("vmType", vmType), slog.String("error", err.Error()))
			st.Put(&store.RunResult{
				VMType: vmType,
				State:  store.StateFailed,
				Err:    fmt.Sprintf("no raw log in session %s", st.SessionDir()),
			})
			continue
		}
		st.Put(&store.RunResult{
			VMType:  vmType,
			State:   store.StateSucceeded,
			RawLog:  raw,
			Metrics: p.Parse(raw),
		})
	}
	return st.All()
}
