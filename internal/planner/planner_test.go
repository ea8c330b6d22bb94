package planner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Kedareswar13/Privacy-Protector/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubModel struct {
	reply  string
	err    error
	prompt Prompt
}

func (s *stubModel) Name() string { return "stub" }

func (s *stubModel) Complete(_ context.Context, p Prompt) (string, error) {
	s.prompt = p
	return s.reply, s.err
}

func bundled(t *testing.T) *FewShots {
	t.Helper()
	shots, err := LoadFewShots("")
	require.NoError(t, err)
	return shots
}

func TestBundledFewShots(t *testing.T) {
	shots := bundled(t)
	assert.NotEmpty(t, shots.SystemPrompt)
	require.NotEmpty(t, shots.Examples)

	first := shots.Examples[0].Output
	require.NotEmpty(t, first.Actions)
	assert.Equal(t, "searchWeb", first.Actions[0].Tool)
	assert.Equal(t, "Jane Doe", first.Actions[0].Args["query"])
}

func TestFallbackWithoutExamples(t *testing.T) {
	p := New(&FewShots{}, nil, zap.NewNop())
	res := p.Plan(context.Background(), map[string]any{}, DefaultGoal)

	assert.Equal(t, SourceFallback, res.Source)
	assert.False(t, res.Degraded)

	body, err := json.Marshal(res.Plan)
	require.NoError(t, err)
	assert.JSONEq(t, `{"actions": [], "stop": true}`, string(body))
}

func TestFallbackUsesFirstExample(t *testing.T) {
	shots := bundled(t)
	p := New(shots, nil, zap.NewNop())

	a := p.Plan(context.Background(), nil, "")
	b := p.Plan(context.Background(), map[string]any{"seeds": map[string]any{"name": "x"}}, "other")
	assert.Equal(t, shots.Examples[0].Output, a.Plan)
	assert.Equal(t, a.Plan, b.Plan)

	// Mutating a returned plan must not leak into later plans.
	a.Plan.Actions[0].Args["query"] = "changed"
	c := p.Plan(context.Background(), nil, "")
	assert.Equal(t, "Jane Doe", c.Plan.Actions[0].Args["query"])
}

func TestFallbackCopiesNestedArgs(t *testing.T) {
	shots, err := ParseFewShots([]byte(`
examples:
  - input: {}
    output:
      stop: false
      actions:
        - tool: scoreRisk
          args:
            items:
              - {id: i1, category: breach, meta: {tags: [a, b]}}
`))
	require.NoError(t, err)

	first := shots.Fallback()
	items := first.Actions[0].Args["items"].([]any)
	item := items[0].(map[string]any)
	item["id"] = "changed"
	item["meta"].(map[string]any)["tags"].([]any)[0] = "z"
	first.Actions[0].Args["items"] = append(items, "extra")

	second := shots.Fallback()
	got := second.Actions[0].Args["items"].([]any)
	require.Len(t, got, 1)
	gotItem := got[0].(map[string]any)
	assert.Equal(t, "i1", gotItem["id"])
	assert.Equal(t, []any{"a", "b"}, gotItem["meta"].(map[string]any)["tags"])
}

func TestModelPlan(t *testing.T) {
	m := &stubModel{reply: `{"actions":[{"tool":"checkBreach","args":{"email":"a@b.com"}}],"stop":false}`}
	p := New(bundled(t), m, zap.NewNop())

	res := p.Plan(context.Background(), map[string]any{"seeds": map[string]any{"email": "a@b.com"}}, "")
	assert.Equal(t, SourceModel, res.Source)
	assert.False(t, res.Degraded)
	require.Len(t, res.Plan.Actions, 1)
	assert.Equal(t, "checkBreach", res.Plan.Actions[0].Tool)

	// system prompt, one user/assistant pair per example, then the current state
	shots := bundled(t)
	assert.Equal(t, shots.SystemPrompt, m.prompt.System)
	require.Len(t, m.prompt.Turns, 2*len(shots.Examples)+1)
	last := m.prompt.Turns[len(m.prompt.Turns)-1]
	assert.Equal(t, "user", last.Role)
	assert.JSONEq(t, `{"state":{"seeds":{"email":"a@b.com"}},"goal":"produce_risk_report"}`, last.Content)
}

func TestModelPlanDegrades(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"transport error", "", errors.New("connection refused")},
		{"malformed json", "I think you should search the web", nil},
		{"missing stop", `{"actions": []}`, nil},
		{"missing actions", `{"stop": true}`, nil},
		{"wrong types", `{"actions": "searchWeb", "stop": "no"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shots := bundled(t)
			p := New(shots, &stubModel{reply: tt.reply, err: tt.err}, zap.NewNop())

			res := p.Plan(context.Background(), map[string]any{}, DefaultGoal)
			assert.Equal(t, SourceFallback, res.Source)
			assert.True(t, res.Degraded)
			assert.Error(t, res.Err)
			assert.Equal(t, shots.Fallback(), res.Plan)
		})
	}
}

func TestParsePlanFenced(t *testing.T) {
	p, err := ParsePlan("```json\n{\"actions\": [], \"stop\": true}\n```")
	require.NoError(t, err)
	assert.True(t, p.Stop)
	assert.NotNil(t, p.Actions)
}

func TestActionArgsJSON(t *testing.T) {
	raw, err := Action{Tool: "searchWeb"}.ArgsJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))

	raw, err = Action{Tool: "searchWeb", Args: map[string]any{"query": "x", "limit": 3}}.ArgsJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"x","limit":3}`, string(raw))
}

func TestLoadFewShotsFromJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shots.json")
	doc := `{"system_prompt": "plan", "examples": [{"input": {"goal": "g"}, "output": {"actions": [{"tool": "searchWeb", "args": {"query": "q"}}], "stop": false}}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	shots, err := LoadFewShots(path)
	require.NoError(t, err)
	assert.Equal(t, "plan", shots.SystemPrompt)
	require.Len(t, shots.Examples, 1)
	assert.Equal(t, "q", shots.Fallback().Actions[0].Args["query"])

	_, err = LoadFewShots(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOpenAIModel(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"actions\":[],\"stop\":true}"}}]}`))
	}))
	defer srv.Close()

	m := NewOpenAIModel(resty.New(), srv.URL+"/v1/", "sk-test", "gpt-4o-mini")
	out, err := m.Complete(context.Background(), Prompt{System: "sys", Turns: []Turn{{Role: "user", Content: "{}"}}})
	require.NoError(t, err)
	assert.Equal(t, `{"actions":[],"stop":true}`, out)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.InDelta(t, 0.1, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestOpenAIModelErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	m := NewOpenAIModel(resty.New(), srv.URL, "sk-bad", "gpt-4o-mini")
	_, err := m.Complete(context.Background(), Prompt{Turns: []Turn{{Role: "user", Content: "{}"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{MockConnectors: true}
	cfg.Planner.Provider = "openai"
	cfg.Planner.APIKey = "sk-test"
	p, err := FromConfig(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.ModelMode(), "mock mode forces fallback")

	cfg.MockConnectors = false
	cfg.Planner.BaseURL = "http://127.0.0.1:1"
	cfg.Planner.Model = "gpt-4o-mini"
	p, err = FromConfig(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, p.ModelMode())

	cfg.Planner.APIKey = ""
	p, err = FromConfig(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.ModelMode())

	cfg.Planner.Provider = "llama"
	cfg.Planner.APIKey = "k"
	_, err = FromConfig(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
