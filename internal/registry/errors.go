package registry

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrInvalidResult    = errors.New("invalid result")
)

// ToolError reports a registry-level failure for one tool. It matches
// ErrUnknownTool, ErrInvalidArguments or ErrInvalidResult under errors.Is.
type ToolError struct {
	Tool   string
	Kind   error
	Detail string
}

func (e *ToolError) Error() string {
	switch e.Kind {
	case ErrUnknownTool:
		return fmt.Sprintf("Unknown tool: %s", e.Tool)
	case ErrInvalidArguments:
		return fmt.Sprintf("Invalid args for %s: %s", e.Tool, e.Detail)
	case ErrInvalidResult:
		return fmt.Sprintf("Tool output invalid for %s: %s", e.Tool, e.Detail)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Kind, e.Detail)
}

func (e *ToolError) Unwrap() error { return e.Kind }

// ConnectorError wraps a failure returned by a connector.
type ConnectorError struct {
	Tool string
	Err  error
}

func (e *ConnectorError) Error() string { return e.Tool + ": " + e.Err.Error() }

func (e *ConnectorError) Unwrap() error { return e.Err }
