package scanner

import (
	"context"
	"sync"
	"testing"

	"github.com/Kedareswar13/Privacy-Protector/internal/config"
	"github.com/Kedareswar13/Privacy-Protector/internal/connectors"
	"github.com/Kedareswar13/Privacy-Protector/internal/planner"
	"github.com/Kedareswar13/Privacy-Protector/internal/pseudonymize"
	"github.com/Kedareswar13/Privacy-Protector/internal/registry"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage/storagetest"
	"github.com/Kedareswar13/Privacy-Protector/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedPlanner struct {
	plan planner.Plan
}

func (f fixedPlanner) Plan(context.Context, any, string) planner.Result {
	return planner.Result{Plan: f.plan, Source: planner.SourceModel}
}

type harness struct {
	store  *store.Store
	events *storagetest.Recorder
	runner *Runner
}

func newHarness(t *testing.T, mock bool, pl Planner) *harness {
	t.Helper()
	st, err := store.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := &config.Config{MockConnectors: mock}
	reg, err := registry.New(connectors.New(cfg, zap.NewNop()))
	require.NoError(t, err)

	if pl == nil {
		shots, err := planner.LoadFewShots("")
		require.NoError(t, err)
		pl = planner.New(shots, nil, zap.NewNop())
	}

	rec := storagetest.NewRecorder()
	audit := registry.NewAuditor(reg, rec, pseudonymize.New("salt"), mock, zap.NewNop())
	return &harness{store: st, events: rec, runner: New(st, pl, audit, zap.NewNop())}
}

func (h *harness) newScan(t *testing.T, seeds string) *store.Scan {
	t.Helper()
	sc, err := h.store.CreateScan(context.Background(), nil, seeds)
	require.NoError(t, err)
	return sc
}

func TestRunOnceMockScan(t *testing.T) {
	h := newHarness(t, true, nil)
	sc := h.newScan(t, `{"name":"Jane Doe"}`)

	out, err := h.runner.RunOnce(context.Background(), sc.ID)
	require.NoError(t, err)
	assert.Equal(t, sc.ID, out.ScanID)
	assert.Equal(t, store.ScanCompleted, out.Status)
	assert.Equal(t, 4, out.ItemsCreated)
	assert.Equal(t, planner.SourceFallback, out.PlanSource)

	items, err := h.store.ListItems(context.Background(), sc.ID)
	require.NoError(t, err)
	require.Len(t, items, 4)

	want := []struct {
		category string
		source   string
		score    float64
	}{
		{"web_result", "web", 0.20 * 0.7},
		{"breach", "hibp", 0.40 * 0.9},
		{"social_post", "github", 0.10 * 0.7},
		{"image_match", "reverse_image", 0.15 * 0.95},
	}
	for i, w := range want {
		assert.Equal(t, w.category, items[i].Category)
		assert.Equal(t, w.source, items[i].Source)
		assert.InDelta(t, w.score, items[i].RiskScore, 1e-9)
		assert.GreaterOrEqual(t, items[i].RiskScore, 0.0)
		assert.LessOrEqual(t, items[i].RiskScore, 1.0)
		assert.NotEmpty(t, items[i].MetadataJSON)
	}
	assert.Equal(t, "MockBreach2023", items[1].Title)
	assert.Equal(t, "Mock breach details", items[1].Snippet)
	assert.Equal(t, items[2].Title, items[2].Snippet)

	calls, err := h.store.ListToolCalls(context.Background(), sc.ID)
	require.NoError(t, err)
	require.Len(t, calls, 4)
	assert.Equal(t, "searchWeb", calls[0].ToolName)
	assert.Equal(t, "reverseImageSearch", calls[3].ToolName)
	require.NotNil(t, calls[0].DurationMs)
	assert.JSONEq(t, `{"query":"Jane Doe","limit":5}`, calls[0].ArgsJSON)

	events := h.events.Events()
	require.Len(t, events, 4)
	for _, ev := range events {
		assert.Equal(t, storage.OriginScan, ev.Origin)
		assert.Equal(t, sc.ID, ev.ScanID)
		assert.Equal(t, storage.StatusOK, ev.Status)
	}
}

func TestRunOnceScanNotFound(t *testing.T) {
	h := newHarness(t, true, nil)
	_, err := h.runner.RunOnce(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrScanNotFound)
}

func TestRunOnceConnectorFailureLeavesScanPending(t *testing.T) {
	h := newHarness(t, false, nil)
	sc := h.newScan(t, `{"name":"Jane Doe","email":"jane@example.com"}`)

	_, err := h.runner.RunOnce(context.Background(), sc.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, connectors.ErrNotImplemented)

	got, err := h.store.GetScan(context.Background(), sc.ID)
	require.NoError(t, err)
	assert.Equal(t, store.ScanPending, got.Status)

	items, err := h.store.ListItems(context.Background(), sc.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	calls, err := h.store.ListToolCalls(context.Background(), sc.ID)
	require.NoError(t, err)
	assert.Empty(t, calls)

	events := h.events.Events()
	require.Len(t, events, 2, "searchWeb degrades, checkBreach fails")
	assert.Equal(t, storage.StatusOK, events[0].Status)
	assert.Equal(t, storage.StatusError, events[1].Status)
}

func TestRunOnceSkipsUnknownAndInvalidActions(t *testing.T) {
	pl := fixedPlanner{plan: planner.Plan{Actions: []planner.Action{
		{Tool: "deleteAccount", Args: map[string]any{"id": "x"}},
		{Tool: "searchWeb", Args: map[string]any{}},
		{Tool: "scoreRisk", Args: map[string]any{"items": []any{}}},
		{Tool: "checkBreach", Args: map[string]any{"email": "jane@example.com"}},
	}}}
	h := newHarness(t, true, pl)
	sc := h.newScan(t, `{"email":"jane@example.com"}`)

	out, err := h.runner.RunOnce(context.Background(), sc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.ItemsCreated)
	assert.Equal(t, 3, out.Skipped)
	assert.Equal(t, store.ScanCompleted, out.Status)
}

func TestRunOnceEmptyPlanCompletes(t *testing.T) {
	h := newHarness(t, true, planner.New(&planner.FewShots{}, nil, zap.NewNop()))
	sc := h.newScan(t, `{}`)

	out, err := h.runner.RunOnce(context.Background(), sc.ID)
	require.NoError(t, err)
	assert.Equal(t, store.ScanCompleted, out.Status)
	assert.Zero(t, out.ItemsCreated)
}

func TestRunOnceRerunAppends(t *testing.T) {
	h := newHarness(t, true, nil)
	sc := h.newScan(t, `{"name":"Jane Doe"}`)

	for i := 0; i < 2; i++ {
		out, err := h.runner.RunOnce(context.Background(), sc.ID)
		require.NoError(t, err)
		assert.Equal(t, store.ScanCompleted, out.Status)
	}
	items, err := h.store.ListItems(context.Background(), sc.ID)
	require.NoError(t, err)
	assert.Len(t, items, 8)
}

func TestRunOnceConcurrentSameScan(t *testing.T) {
	h := newHarness(t, true, nil)
	sc := h.newScan(t, `{"name":"Jane Doe"}`)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.runner.RunOnce(context.Background(), sc.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	items, err := h.store.ListItems(context.Background(), sc.ID)
	require.NoError(t, err)
	assert.Len(t, items, 16)
	assert.Zero(t, h.runner.locks.size())
}

func TestNormalizeBreachDefaults(t *testing.T) {
	items := normalize(registry.CheckBreach, connectors.BreachArgs{Email: "a@b.com"},
		&connectors.BreachReport{Pwned: true, Breaches: []connectors.Breach{{Details: "d"}}})
	require.Len(t, items, 1)
	assert.Equal(t, "Breach", items[0].Title)
	assert.Equal(t, 0.9, items[0].Confidence)

	items = normalize(registry.SearchSocial, connectors.SocialSearchArgs{Query: "x"},
		[]connectors.SocialPost{{ID: "1", Text: "t", URL: "u"}})
	require.Len(t, items, 1)
	assert.Equal(t, "social", items[0].Source)

	items = normalize(registry.SearchSocial, connectors.SocialSearchArgs{Service: "reddit", Query: "x"},
		[]connectors.SocialPost{{ID: "1", Text: "t", URL: "u"}})
	require.Len(t, items, 1)
	assert.Equal(t, "reddit", items[0].Source)
}

func TestKeyedMutexReleases(t *testing.T) {
	k := newKeyedMutex()
	unlockA := k.Lock("a")
	unlockB := k.Lock("b")
	assert.Equal(t, 2, k.size())
	unlockA()
	unlockB()
	assert.Zero(t, k.size())
}
