package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"todo_app/internal/db"
	"todo_app/internal/domain"
	"todo_app/internal/repository"
	"todo_app/internal/rpc"
	"todo_app/internal/service"

	"github.com/gin-gonic/gin"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	conn, err := db.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	store := repository.NewSQLiteTodoRepository(conn)
	reg := rpc.NewRegistry()
	rpc.RegisterTodoProcedures(reg, service.NewTodoService(store, nil))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewRPCHandler(reg)
	r.GET("/api/v1/rpc", h.Procedures)
	r.GET("/api/v1/rpc/:procedure", h.Get)
	r.POST("/api/v1/rpc/:procedure", h.Post)

	health := NewHealthHandler(store, "sqlite", "test", func() int { return 0 })
	r.GET("/health", health.Health)
	r.GET("/readyz", health.Readiness)
	return r
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func post(t *testing.T, r http.Handler, proc, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rpc/"+proc, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return serve(t, r, req)
}

func get(t *testing.T, r http.Handler, path string) (int, envelope) {
	t.Helper()
	return serve(t, r, httptest.NewRequest(http.MethodGet, path, nil))
}

func serve(t *testing.T, r http.Handler, req *http.Request) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return w.Code, env
}

func TestRPC_CreateAndList(t *testing.T) {
	r := newTestEngine(t)

	code, env := post(t, r, "createTodo", `{"title":"Buy milk"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", code, env.Error)
	}
	var created domain.Todo
	if err := json.Unmarshal(env.Result, &created); err != nil {
		t.Fatalf("decode todo: %v", err)
	}
	if created.ID == 0 || created.Title != "Buy milk" || created.Completed {
		t.Fatalf("unexpected todo %+v", created)
	}

	code, env = get(t, r, "/api/v1/rpc/getTodos")
	if code != http.StatusOK {
		t.Fatalf("expected 200 got %d", code)
	}
	var todos []domain.Todo
	if err := json.Unmarshal(env.Result, &todos); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", todos)
	}
}

func TestRPC_EmptyListIsArray(t *testing.T) {
	r := newTestEngine(t)

	_, env := get(t, r, "/api/v1/rpc/getTodos?input="+url.QueryEscape("null"))
	if string(env.Result) != "[]" {
		t.Fatalf("expected [], got %s", env.Result)
	}
}

func TestRPC_StatusMapping(t *testing.T) {
	r := newTestEngine(t)

	cases := []struct {
		name   string
		method string
		proc   string
		body   string
		want   int
	}{
		{"unknown procedure", http.MethodPost, "dropTodos", `{}`, http.StatusNotFound},
		{"missing todo", http.MethodPost, "toggleTodo", `{"id":42}`, http.StatusNotFound},
		{"malformed json", http.MethodPost, "createTodo", `{"title"`, http.StatusBadRequest},
		{"empty title", http.MethodPost, "createTodo", `{"title":"  "}`, http.StatusBadRequest},
		{"zero id toggle", http.MethodPost, "toggleTodo", `{"id":0}`, http.StatusNotFound},
		{"string id", http.MethodPost, "deleteTodo", `{"id":"1"}`, http.StatusBadRequest},
		{"oversized body", http.MethodPost, "createTodo", `{"title":"` + strings.Repeat("x", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge},
		{"mutation over get", http.MethodGet, "createTodo", ``, http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var code int
			var env envelope
			if tc.method == http.MethodGet {
				code, env = get(t, r, "/api/v1/rpc/"+tc.proc)
			} else {
				code, env = post(t, r, tc.proc, tc.body)
			}
			if code != tc.want {
				t.Fatalf("expected %d got %d (%s)", tc.want, code, env.Error)
			}
			if env.Error == "" {
				t.Fatalf("expected an error message")
			}
		})
	}
}

func TestRPC_DeleteReportsSuccess(t *testing.T) {
	r := newTestEngine(t)
	post(t, r, "createTodo", `{"title":"temp"}`)

	for i, want := range []string{`{"success":true}`, `{"success":false}`} {
		code, env := post(t, r, "deleteTodo", `{"id":1}`)
		if code != http.StatusOK || string(env.Result) != want {
			t.Fatalf("delete %d: got %d %s", i+1, code, env.Result)
		}
	}

	// ids that can never exist are just missing
	for _, body := range []string{`{"id":0}`, `{"id":-3}`} {
		code, env := post(t, r, "deleteTodo", body)
		if code != http.StatusOK || string(env.Result) != `{"success":false}` {
			t.Fatalf("delete %s: got %d %s %s", body, code, env.Result, env.Error)
		}
	}
}

func TestHealth(t *testing.T) {
	r := newTestEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Checks["database"] != "healthy" || resp.Checks["database_driver"] != "sqlite" {
		t.Fatalf("unexpected checks %v", resp.Checks)
	}
}
