// Package planner proposes the tool calls of a scan, either from a language
// model primed with few-shot examples or from a fixed fallback plan.
package planner

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultGoal is the goal label the scan orchestrator plans toward.
const DefaultGoal = "produce_risk_report"

// Action is one proposed tool invocation.
type Action struct {
	Tool string         `json:"tool" yaml:"tool"`
	Args map[string]any `json:"args" yaml:"args"`
}

// ArgsJSON returns the action arguments as a JSON object.
func (a Action) ArgsJSON() (json.RawMessage, error) {
	if a.Args == nil {
		return json.RawMessage(`{}`), nil
	}
	raw, err := json.Marshal(a.Args)
	if err != nil {
		return nil, fmt.Errorf("encode args for %s: %w", a.Tool, err)
	}
	return raw, nil
}

// Plan is an ordered list of actions and a stop flag.
type Plan struct {
	Actions []Action `json:"actions" yaml:"actions"`
	Stop    bool     `json:"stop" yaml:"stop"`
}

// EmptyPlan is returned when there is nothing to fall back on.
func EmptyPlan() Plan {
	return Plan{Actions: []Action{}, Stop: true}
}

var errMissingKeys = errors.New("plan must contain actions and stop")

// ParsePlan decodes a model reply. Markdown code fences around the JSON are
// tolerated; both "actions" and "stop" must be present.
func ParsePlan(content string) (Plan, error) {
	body := stripFences(content)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &keys); err != nil {
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}
	if _, ok := keys["actions"]; !ok {
		return Plan{}, errMissingKeys
	}
	if _, ok := keys["stop"]; !ok {
		return Plan{}, errMissingKeys
	}

	var p Plan
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}
	if p.Actions == nil {
		p.Actions = []Action{}
	}
	return p, nil
}
