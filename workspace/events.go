package workspace

import "github.com/tailored-agentic-units/varbind/observability"

// Workspace event types. Variable events come from the variable package.
const (
	EventCreate       observability.EventType = "workspace.create"
	EventDispose      observability.EventType = "workspace.dispose"
	EventBlockCreate  observability.EventType = "block.create"
	EventBlockDispose observability.EventType = "block.dispose"
)
