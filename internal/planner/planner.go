package planner

import (
	"context"
	"fmt"
	"io"

	"github.com/Kedareswar13/Privacy-Protector/internal/config"
	"github.com/Kedareswar13/Privacy-Protector/internal/connectors"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Source tells which path produced a plan.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Result is a plan tagged with its origin. Degraded is set when a model was
// configured but its reply could not be used; Err then holds the cause.
type Result struct {
	Plan     Plan
	Source   Source
	Degraded bool
	Err      error
}

// Planner produces plans. A nil model means fallback mode.
type Planner struct {
	shots  *FewShots
	model  Model
	logger *zap.Logger
}

// New returns a planner over the given examples and model. model may be nil.
func New(shots *FewShots, model Model, logger *zap.Logger) *Planner {
	if shots == nil {
		shots = &FewShots{}
	}
	return &Planner{shots: shots, model: model, logger: logger}
}

// FromConfig loads the few-shot file and picks the model backend. Model mode
// requires a credential for the configured provider and mock mode off.
func FromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Planner, error) {
	shots, err := LoadFewShots(cfg.Planner.FewShotsPath)
	if err != nil {
		return nil, err
	}
	if !cfg.UseModelPlanner() {
		logger.Info("planner in fallback mode", zap.Bool("mock_connectors", cfg.MockConnectors))
		return New(shots, nil, logger), nil
	}

	var model Model
	switch cfg.Planner.Provider {
	case "gemini":
		model, err = NewGeminiModel(ctx, cfg.Planner.GeminiAPIKey, cfg.Planner.Model)
		if err != nil {
			return nil, err
		}
	case "openai", "":
		client := resty.New().SetLogger(connectors.NewRestyLogger(logger))
		model = NewOpenAIModel(client, cfg.Planner.BaseURL, cfg.Planner.APIKey, cfg.Planner.Model)
	default:
		return nil, fmt.Errorf("unknown planner provider %q", cfg.Planner.Provider)
	}
	logger.Info("planner in model mode", zap.String("model", model.Name()))
	return New(shots, model, logger), nil
}

// ModelMode reports whether a language model is configured.
func (p *Planner) ModelMode() bool { return p.model != nil }

// Plan proposes actions for state toward goal. It never fails: model errors
// degrade to the fallback plan.
func (p *Planner) Plan(ctx context.Context, state any, goal string) Result {
	if goal == "" {
		goal = DefaultGoal
	}
	if p.model == nil {
		return Result{Plan: p.shots.Fallback(), Source: SourceFallback}
	}

	plan, err := p.modelPlan(ctx, state, goal)
	if err != nil {
		p.logger.Warn("planner degraded to fallback plan",
			zap.String("model", p.model.Name()),
			zap.String("goal", goal),
			zap.Error(err),
		)
		return Result{Plan: p.shots.Fallback(), Source: SourceFallback, Degraded: true, Err: err}
	}
	return Result{Plan: plan, Source: SourceModel}
}

func (p *Planner) modelPlan(ctx context.Context, state any, goal string) (Plan, error) {
	prompt, err := p.shots.BuildPrompt(state, goal)
	if err != nil {
		return Plan{}, err
	}
	content, err := p.model.Complete(ctx, prompt)
	if err != nil {
		return Plan{}, err
	}
	return ParsePlan(content)
}

// Close releases the model client, if it holds one.
func (p *Planner) Close() error {
	if c, ok := p.model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
