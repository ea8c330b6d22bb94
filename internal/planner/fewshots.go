package planner

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fewshots.yaml
var bundledFewShots []byte

// Example is one recorded planner input and the plan it should produce.
type Example struct {
	Input  map[string]any `yaml:"input" json:"input"`
	Output Plan           `yaml:"output" json:"output"`
}

// FewShots is the system prompt and examples used to prime the model.
type FewShots struct {
	SystemPrompt string    `yaml:"system_prompt" json:"system_prompt"`
	Examples     []Example `yaml:"examples" json:"examples"`
}

// LoadFewShots reads the few-shot file at path, or the bundled file when path
// is empty. JSON files are accepted since YAML is a superset.
func LoadFewShots(path string) (*FewShots, error) {
	data := bundledFewShots
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read few-shot file: %w", err)
		}
		data = b
	}
	return ParseFewShots(data)
}

// ParseFewShots decodes a few-shot document.
func ParseFewShots(data []byte) (*FewShots, error) {
	var fs FewShots
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("parse few-shot file: %w", err)
	}
	for i := range fs.Examples {
		if fs.Examples[i].Output.Actions == nil {
			fs.Examples[i].Output.Actions = []Action{}
		}
	}
	return &fs, nil
}

// Fallback returns the first example's plan, or EmptyPlan when there are
// no examples. The returned plan does not alias the loaded examples.
func (f *FewShots) Fallback() Plan {
	if f == nil || len(f.Examples) == 0 {
		return EmptyPlan()
	}
	src := f.Examples[0].Output
	out := Plan{Actions: make([]Action, 0, len(src.Actions)), Stop: src.Stop}
	for _, a := range src.Actions {
		args, _ := copyValue(a.Args).(map[string]any)
		out.Actions = append(out.Actions, Action{Tool: a.Tool, Args: args})
	}
	return out
}

// copyValue deep-copies the maps and slices yaml and json decode into.
func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return map[string]any(nil)
		}
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = copyValue(val)
		}
		return out
	case []any:
		if t == nil {
			return []any(nil)
		}
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = copyValue(val)
		}
		return out
	default:
		return v
	}
}

// Turn is one chat message sent to the model.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Prompt is the full model input for one planning request.
type Prompt struct {
	System string
	Turns  []Turn
}

// BuildPrompt lays out the system prompt, every example as a user/assistant
// pair, and the current state and goal as the final user turn.
func (f *FewShots) BuildPrompt(state any, goal string) (Prompt, error) {
	p := Prompt{System: f.SystemPrompt}
	for _, ex := range f.Examples {
		in, err := json.Marshal(ex.Input)
		if err != nil {
			return Prompt{}, fmt.Errorf("encode example input: %w", err)
		}
		out, err := json.Marshal(ex.Output)
		if err != nil {
			return Prompt{}, fmt.Errorf("encode example output: %w", err)
		}
		p.Turns = append(p.Turns,
			Turn{Role: "user", Content: string(in)},
			Turn{Role: "assistant", Content: string(out)},
		)
	}

	current, err := json.Marshal(map[string]any{"state": state, "goal": goal})
	if err != nil {
		return Prompt{}, fmt.Errorf("encode planner state: %w", err)
	}
	p.Turns = append(p.Turns, Turn{Role: "user", Content: string(current)})
	return p, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
