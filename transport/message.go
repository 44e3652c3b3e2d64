package transport

const (
	MessageTypeInfo  = "info"
	MessageTypeFrame = "frame"
	MessageTypeInput = "input"
	MessageTypeError = "error"
)

// Message is the envelope of every message sent to a client.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// InputMessage is sent by a client every time the set of held keys changes. Keys are named after
// KeyboardEvent.code, for example "ArrowUp" or "KeyT".
type InputMessage struct {
	Type string   `json:"type"`
	Keys []string `json:"keys"`
}
