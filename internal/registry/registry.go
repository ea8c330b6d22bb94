package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kedareswar13/Privacy-Protector/internal/connectors"
	"github.com/Kedareswar13/Privacy-Protector/internal/risk"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Connectors is the capability set the registry dispatches to.
type Connectors interface {
	SearchWeb(ctx context.Context, args connectors.WebSearchArgs) ([]connectors.WebResult, error)
	SearchSocial(ctx context.Context, args connectors.SocialSearchArgs) ([]connectors.SocialPost, error)
	CheckBreach(ctx context.Context, args connectors.BreachArgs) (*connectors.BreachReport, error)
	ReverseImageSearch(ctx context.Context, args connectors.ReverseImageArgs) ([]connectors.ImageMatch, error)
	GenerateRemediation(ctx context.Context, args connectors.RemediationArgs) (*connectors.Remediation, error)
}

// Tool describes one registered tool and its schemas.
type Tool struct {
	ID           ToolID         `json:"-"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	InputSchema  map[string]any `json:"input_schema"`
	OutputSchema any            `json:"output_schema"`

	input  *jsonschema.Schema
	output *jsonschema.Schema
}

// Result is a validated tool output. Value holds the typed connector result
// ([]connectors.WebResult, *connectors.BreachReport, []risk.Score, ...).
type Result struct {
	Tool     ToolID
	Args     any // typed connector arguments, e.g. connectors.WebSearchArgs
	Value    any
	JSON     json.RawMessage
	Duration time.Duration
}

// ScoreRiskItem is one element of the scoreRisk input.
type ScoreRiskItem struct {
	ID         string   `json:"id"`
	Category   string   `json:"category,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// ScoreRiskArgs are the arguments of scoreRisk.
type ScoreRiskArgs struct {
	Items []ScoreRiskItem `json:"items"`
}

// defaultScoreConfidence applies to scoreRisk items that carry no confidence.
const defaultScoreConfidence = 0.5

// Registry maps tool names to schemas and connector dispatch.
type Registry struct {
	conn   Connectors
	tools  [numTools]*Tool
	byName map[string]ToolID
}

// New compiles every tool schema. It fails only if a bundled schema is broken.
func New(conn Connectors) (*Registry, error) {
	r := &Registry{conn: conn, byName: make(map[string]ToolID, numTools)}
	for _, id := range AllTools() {
		doc, err := loadSchemaDoc(id)
		if err != nil {
			return nil, err
		}
		in, err := compileSchema(id.String()+".input.json", doc.Input)
		if err != nil {
			return nil, err
		}
		out, err := compileSchema(id.String()+".output.json", doc.Output)
		if err != nil {
			return nil, err
		}
		r.tools[id] = &Tool{
			ID:           id,
			Name:         id.String(),
			Description:  doc.Description,
			InputSchema:  doc.Input,
			OutputSchema: doc.Output,
			input:        in,
			output:       out,
		}
		r.byName[id.String()] = id
	}
	return r, nil
}

func compileSchema(name string, doc any) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("schema compile error: %w", err)
	}
	sch, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("schema compile error: %w", err)
	}
	return sch, nil
}

// List returns every registered tool in registration order.
func (r *Registry) List() []*Tool {
	out := make([]*Tool, 0, numTools)
	for _, t := range r.tools {
		out = append(out, t)
	}
	return out
}

// Lookup resolves a wire name to its ToolID.
func (r *Registry) Lookup(name string) (ToolID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Tool returns the descriptor for id.
func (r *Registry) Tool(id ToolID) *Tool {
	if id < 0 || id >= numTools {
		return nil
	}
	return r.tools[id]
}

// Validate checks value against schema and returns a one-line reason on failure.
func Validate(schema *jsonschema.Schema, value any) error {
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("%s", oneLine(err.Error()))
	}
	return nil
}

func oneLine(s string) string {
	fields := strings.Fields(strings.ReplaceAll(s, "\n", " "))
	return strings.Join(fields, " ")
}

// Invoke validates args, dispatches to the tool's connector and validates
// the result. Errors are *ToolError for registry failures and
// *ConnectorError when the connector itself failed.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (*Result, error) {
	id, ok := r.Lookup(name)
	if !ok {
		return nil, &ToolError{Tool: name, Kind: ErrUnknownTool}
	}
	return r.InvokeID(ctx, id, args)
}

// InvokeID is Invoke for a known tool tag.
func (r *Registry) InvokeID(ctx context.Context, id ToolID, args json.RawMessage) (*Result, error) {
	t := r.Tool(id)
	if t == nil {
		return nil, &ToolError{Tool: id.String(), Kind: ErrUnknownTool}
	}
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage(`{}`)
	}

	var inst any
	if err := json.Unmarshal(args, &inst); err != nil {
		return nil, &ToolError{Tool: t.Name, Kind: ErrInvalidArguments, Detail: "arguments are not valid JSON"}
	}
	if err := Validate(t.input, inst); err != nil {
		return nil, &ToolError{Tool: t.Name, Kind: ErrInvalidArguments, Detail: err.Error()}
	}

	// Typed decoding reads the validated value, so 10.0 or 1e1 reach an int field as 10.
	normalized, err := json.Marshal(inst)
	if err != nil {
		return nil, &ToolError{Tool: t.Name, Kind: ErrInvalidArguments, Detail: err.Error()}
	}

	start := time.Now()
	typed, value, err := r.dispatch(ctx, id, normalized)
	elapsed := time.Since(start)
	var de *decodeError
	if errors.As(err, &de) {
		return nil, &ToolError{Tool: t.Name, Kind: ErrInvalidArguments, Detail: de.Error()}
	}
	if err != nil {
		return nil, &ConnectorError{Tool: t.Name, Err: err}
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, &ToolError{Tool: t.Name, Kind: ErrInvalidResult, Detail: err.Error()}
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ToolError{Tool: t.Name, Kind: ErrInvalidResult, Detail: err.Error()}
	}
	if err := Validate(t.output, out); err != nil {
		return nil, &ToolError{Tool: t.Name, Kind: ErrInvalidResult, Detail: err.Error()}
	}

	return &Result{Tool: id, Args: typed, Value: value, JSON: raw, Duration: elapsed}, nil
}

// decodeError marks arguments that passed the schema but do not fit the
// connector's typed struct.
type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode arguments: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func decodeArgs(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

// dispatch decodes the typed arguments for id and calls its connector. It
// returns the decoded arguments alongside the connector's value.
func (r *Registry) dispatch(ctx context.Context, id ToolID, raw json.RawMessage) (any, any, error) {
	switch id {
	case SearchWeb:
		var a connectors.WebSearchArgs
		if err := decodeArgs(raw, &a); err != nil {
			return nil, nil, err
		}
		v, err := r.conn.SearchWeb(ctx, a)
		return a, v, err
	case SearchSocial:
		var a connectors.SocialSearchArgs
		if err := decodeArgs(raw, &a); err != nil {
			return nil, nil, err
		}
		v, err := r.conn.SearchSocial(ctx, a)
		return a, v, err
	case CheckBreach:
		var a connectors.BreachArgs
		if err := decodeArgs(raw, &a); err != nil {
			return nil, nil, err
		}
		v, err := r.conn.CheckBreach(ctx, a)
		return a, v, err
	case ReverseImageSearch:
		var a connectors.ReverseImageArgs
		if err := decodeArgs(raw, &a); err != nil {
			return nil, nil, err
		}
		v, err := r.conn.ReverseImageSearch(ctx, a)
		return a, v, err
	case ScoreRisk:
		var a ScoreRiskArgs
		if err := decodeArgs(raw, &a); err != nil {
			return nil, nil, err
		}
		return a, risk.ScoreItems(scoreInputs(a.Items)), nil
	case GenerateRemediation:
		var a connectors.RemediationArgs
		if err := decodeArgs(raw, &a); err != nil {
			return nil, nil, err
		}
		v, err := r.conn.GenerateRemediation(ctx, a)
		return a, v, err
	}
	return nil, nil, fmt.Errorf("no dispatcher for %s", id)
}

func scoreInputs(items []ScoreRiskItem) []risk.Input {
	in := make([]risk.Input, 0, len(items))
	for _, it := range items {
		conf := defaultScoreConfidence
		if it.Confidence != nil {
			conf = *it.Confidence
		}
		in = append(in, risk.Input{ID: it.ID, Category: it.Category, Confidence: conf})
	}
	return in
}
