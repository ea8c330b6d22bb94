package registry

import (
	"embed"
	"encoding/json"
	"fmt"
)

// ToolID is the stable tag of a registered tool.
type ToolID int

const (
	SearchWeb ToolID = iota
	SearchSocial
	CheckBreach
	ReverseImageSearch
	ScoreRisk
	GenerateRemediation

	numTools
)

// toolNames is indexed by ToolID; its length is fixed by numTools so adding
// a tool without naming it fails to compile.
var toolNames = [numTools]string{
	SearchWeb:           "searchWeb",
	SearchSocial:        "searchSocial",
	CheckBreach:         "checkBreach",
	ReverseImageSearch:  "reverseImageSearch",
	ScoreRisk:           "scoreRisk",
	GenerateRemediation: "generateRemediation",
}

// String returns the wire name of the tool.
func (id ToolID) String() string {
	if id < 0 || id >= numTools {
		return fmt.Sprintf("ToolID(%d)", int(id))
	}
	return toolNames[id]
}

// AllTools lists every tool in registration order.
func AllTools() []ToolID {
	out := make([]ToolID, 0, numTools)
	for id := ToolID(0); id < numTools; id++ {
		out = append(out, id)
	}
	return out
}

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaDoc is the on-disk shape of schemas/<tool>.json.
type schemaDoc struct {
	Description string         `json:"description"`
	Input       map[string]any `json:"input"`
	Output      any            `json:"output"`
}

func loadSchemaDoc(id ToolID) (*schemaDoc, error) {
	raw, err := schemaFS.ReadFile("schemas/" + id.String() + ".json")
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", id, err)
	}
	var doc schemaDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("schema for %s: %w", id, err)
	}
	if doc.Input == nil || doc.Output == nil {
		return nil, fmt.Errorf("schema for %s: input and output are required", id)
	}
	return &doc, nil
}
