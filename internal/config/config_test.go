package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MOCK_CONNECTORS", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("PLANNER_PROVIDER", "")
	t.Setenv("PLANNER_MODEL", "")

	cfg := Load()
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q, want :8000", cfg.HTTPAddr)
	}
	if cfg.AccessTokenTTL != 24*time.Hour {
		t.Errorf("AccessTokenTTL = %v, want 24h", cfg.AccessTokenTTL)
	}
	if cfg.MockConnectors {
		t.Error("MockConnectors should default to false")
	}
	if cfg.Planner.Model != "gpt-4o-mini" {
		t.Errorf("Planner.Model = %q, want gpt-4o-mini", cfg.Planner.Model)
	}
	if cfg.UseModelPlanner() {
		t.Error("UseModelPlanner should be false without a credential")
	}
}

func TestLoad_MockModeDisablesModelPlanner(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MOCK_CONNECTORS", "TRUE")

	cfg := Load()
	if !cfg.MockConnectors {
		t.Fatal("MOCK_CONNECTORS=TRUE should enable mock mode")
	}
	if cfg.UseModelPlanner() {
		t.Error("mock mode must force the fallback planner")
	}
}

func TestLoad_GeminiProvider(t *testing.T) {
	t.Setenv("PLANNER_PROVIDER", "gemini")
	t.Setenv("PLANNER_MODEL", "")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("MOCK_CONNECTORS", "false")

	cfg := Load()
	if cfg.Planner.Model != "gemini-1.5-flash" {
		t.Errorf("Planner.Model = %q", cfg.Planner.Model)
	}
	if cfg.PlannerCredential() != "g-key" {
		t.Errorf("PlannerCredential = %q", cfg.PlannerCredential())
	}
	if !cfg.UseModelPlanner() {
		t.Error("expected model planner with gemini credential")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,c")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("splitList = %#v", got)
	}
}
