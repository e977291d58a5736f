package agent

// StreamEvent is the closed set of events a turn can yield. The orchestrator
// dispatches on the concrete type, never on attribute probing.
type StreamEvent interface {
	isStreamEvent()
}

// TextDeltaEvent carries one increment of the assistant's visible text.
type TextDeltaEvent struct {
	Delta string
}

// ToolCallEvent reports that the model invoked a tool.
type ToolCallEvent struct {
	Name  string
	Input string
}

// ToolResultEvent carries the result blob a tool returned to the model.
type ToolResultEvent struct {
	Name   string
	Result string
}

func (TextDeltaEvent) isStreamEvent()  {}
func (ToolCallEvent) isStreamEvent()   {}
func (ToolResultEvent) isStreamEvent() {}
