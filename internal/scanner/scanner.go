// Package scanner runs one planning round for a scan: it asks the planner
// for actions, executes them through the tool registry, normalizes and scores
// the results and persists everything in one transaction.
package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Kedareswar13/Privacy-Protector/internal/planner"
	"github.com/Kedareswar13/Privacy-Protector/internal/registry"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
	"github.com/Kedareswar13/Privacy-Protector/internal/store"
	"go.uber.org/zap"
)

var ErrScanNotFound = errors.New("scan not found")

// ScanStore is the persistence the runner needs.
type ScanStore interface {
	GetScan(ctx context.Context, id string) (*store.Scan, error)
	CompleteScan(ctx context.Context, scanID string, items []*store.Item, calls []*store.ToolCall) (*store.Scan, error)
}

// Planner proposes the actions of a run.
type Planner interface {
	Plan(ctx context.Context, state any, goal string) planner.Result
}

// Outcome summarizes one run.
type Outcome struct {
	ScanID       string         `json:"scan_id"`
	Status       string         `json:"status"`
	ItemsCreated int            `json:"items_created"`
	PlanSource   planner.Source `json:"-"`
	Skipped      int            `json:"-"`
}

// Runner executes scan runs. Runs against the same scan are serialized.
type Runner struct {
	store   ScanStore
	planner Planner
	tools   *registry.Auditor
	logger  *zap.Logger
	locks   *keyedMutex
}

func New(st ScanStore, pl Planner, tools *registry.Auditor, logger *zap.Logger) *Runner {
	return &Runner{
		store:   st,
		planner: pl,
		tools:   tools,
		logger:  logger,
		locks:   newKeyedMutex(),
	}
}

// RunOnce performs a single planning round for scanID. A connector failure
// aborts the run; nothing from that run is persisted and the scan keeps its
// previous status.
func (r *Runner) RunOnce(ctx context.Context, scanID string) (*Outcome, error) {
	unlock := r.locks.Lock(scanID)
	defer unlock()

	scan, err := r.store.GetScan(ctx, scanID)
	if err != nil {
		return nil, fmt.Errorf("load scan: %w", err)
	}
	if scan == nil {
		return nil, ErrScanNotFound
	}

	var seeds any
	if err := json.Unmarshal([]byte(scan.SeedsJSON), &seeds); err != nil {
		return nil, fmt.Errorf("decode seeds of scan %s: %w", scanID, err)
	}
	state := map[string]any{
		"seeds":      seeds,
		"items":      []any{},
		"tool_calls": []any{},
	}

	planned := r.planner.Plan(ctx, state, planner.DefaultGoal)
	log := r.logger.With(zap.String("scan_id", scanID), zap.String("plan_source", string(planned.Source)))
	log.Info("scan run planned",
		zap.Int("actions", len(planned.Plan.Actions)),
		zap.Bool("degraded", planned.Degraded),
	)

	out := &Outcome{ScanID: scanID, PlanSource: planned.Source}
	var (
		items []*store.Item
		calls []*store.ToolCall
	)
	reg := r.tools.Registry()

	for i, action := range planned.Plan.Actions {
		id, ok := reg.Lookup(action.Tool)
		if !ok || !scanTools[id] {
			log.Debug("skipping unsupported planned tool", zap.Int("action", i), zap.String("tool", action.Tool))
			out.Skipped++
			continue
		}
		args, err := action.ArgsJSON()
		if err != nil {
			log.Warn("skipping action with unencodable args", zap.Int("action", i), zap.Error(err))
			out.Skipped++
			continue
		}

		res, err := r.tools.Invoke(ctx, registry.Call{
			Origin: storage.OriginScan,
			ScanID: scanID,
			Tool:   action.Tool,
			Args:   args,
		})
		if errors.Is(err, registry.ErrInvalidArguments) {
			log.Warn("skipping planned action with invalid args", zap.Int("action", i), zap.Error(err))
			out.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("run scan %s: %w", scanID, err)
		}

		items = append(items, normalize(id, res.Args, res.Value)...)
		durationMs := res.Duration.Milliseconds()
		calls = append(calls, &store.ToolCall{
			ToolName:     action.Tool,
			ArgsJSON:     string(args),
			ResponseJSON: string(res.JSON),
			DurationMs:   &durationMs,
		})
	}

	applyScores(items)

	done, err := r.store.CompleteScan(ctx, scanID, items, calls)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrScanNotFound
	}
	if err != nil {
		return nil, err
	}

	out.Status = done.Status
	out.ItemsCreated = len(items)
	log.Info("scan run completed",
		zap.Int("items_created", out.ItemsCreated),
		zap.Int("tool_calls", len(calls)),
		zap.Int("skipped", out.Skipped),
	)
	return out, nil
}
