package field

import "github.com/tailored-agentic-units/varbind/observability"

// EventBind is emitted when a field's bound variable changes.
const EventBind observability.EventType = "field.bind"
