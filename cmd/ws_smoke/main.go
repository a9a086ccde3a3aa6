package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// ws_smoke opens two connections against a running server, creates and
// toggles a todo over the first and checks that the second sees the events.
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	addr := flag.String("url", fmt.Sprintf("ws://127.0.0.1:%s/ws", port), "websocket url")
	flag.Parse()

	dialer := websocket.DefaultDialer

	connA, _, err := dialer.Dial(*addr, nil)
	if err != nil {
		log.Fatalf("dial A: %v", err)
	}
	defer connA.Close()

	connB, _, err := dialer.Dial(*addr, nil)
	if err != nil {
		log.Fatalf("dial B: %v", err)
	}
	defer connB.Close()

	waitFor(connA, "A", "ready")
	waitFor(connB, "B", "ready")

	call := func(id, proc string, input any) {
		msg := map[string]any{"type": "call", "id": id, "procedure": proc, "input": input}
		if err := connA.WriteJSON(msg); err != nil {
			log.Fatalf("write %s: %v", id, err)
		}
	}

	call("1", "createTodo", map[string]any{"title": "smoke " + time.Now().Format(time.RFC3339)})
	created := waitFor(connB, "B", "todo_created")

	var ev struct {
		ID int64 `json:"id"`
	}
	_ = json.Unmarshal(created, &ev)

	call("2", "toggleTodo", map[string]any{"id": ev.ID})
	waitFor(connB, "B", "todo_toggled")

	call("3", "deleteTodo", map[string]any{"id": ev.ID})
	waitFor(connB, "B", "todo_deleted")

	log.Println("smoke test finished")
}

// waitFor reads until a message of the given type arrives.
func waitFor(conn *websocket.Conn, name, typ string) []byte {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("%s read error waiting for %s: %v", name, typ, err)
		}
		var obj map[string]any
		_ = json.Unmarshal(msg, &obj)
		log.Printf("%s got: %s", name, string(msg))
		if t, _ := obj["type"].(string); t == typ {
			return msg
		}
	}
	log.Fatalf("%s timed out waiting for %s", name, typ)
	return nil
}
