package variable

import "github.com/tailored-agentic-units/varbind/observability"

const (
	EventCreate observability.EventType = "variable.create"
	EventRename observability.EventType = "variable.rename"
	EventRetype observability.EventType = "variable.retype"
	EventDelete observability.EventType = "variable.delete"
	EventClear  observability.EventType = "variable.clear"
)
