package ws

import "encoding/json"

// client → server
type InboundMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Procedure string          `json:"procedure,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
}

// server → client
type ResultPayload struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Result any    `json:"result"`
}

type ErrorPayload struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

type simpleMessage struct {
	Type string `json:"type"`
}
