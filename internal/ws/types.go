package ws

const (
	// client - server
	MsgCall = "call"
	MsgPing = "ping"

	// server - client
	MsgReady  = "ready"
	MsgPong   = "pong"
	MsgResult = "result"
	MsgError  = "error"
)
