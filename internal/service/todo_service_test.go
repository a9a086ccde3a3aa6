package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"todo_app/internal/db"
	"todo_app/internal/domain"
	"todo_app/internal/repository"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.TodoEvent
}

func (n *recordingNotifier) Publish(_ context.Context, ev domain.TodoEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) types() []domain.TodoEventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.TodoEventType, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Type)
	}
	return out
}

// newTestService gives every test its own in-memory store.
func newTestService(t *testing.T) (*TodoService, *recordingNotifier) {
	t.Helper()
	conn, err := db.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	n := &recordingNotifier{}
	return NewTodoService(repository.NewSQLiteTodoRepository(conn), n), n
}

func ptr[T any](v T) *T { return &v }

func TestTodoService_Create(t *testing.T) {
	svc, n := newTestService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, domain.CreateTodoInput{Title: "Test Todo Item"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if todo.Title != "Test Todo Item" || todo.Completed || todo.ID == 0 || todo.CreatedAt.IsZero() {
		t.Fatalf("unexpected todo: %+v", todo)
	}

	second, err := svc.Create(ctx, domain.CreateTodoInput{Title: "  Second Todo  "})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.ID == todo.ID {
		t.Fatalf("expected unique ids")
	}
	if second.Title != "Second Todo" {
		t.Fatalf("expected trimmed title, got %q", second.Title)
	}

	if got := n.types(); len(got) != 2 || got[0] != domain.TodoCreated {
		t.Fatalf("expected two created events, got %v", got)
	}
}

func TestTodoService_Create_InvalidTitle(t *testing.T) {
	svc, n := newTestService(t)

	for _, title := range []string{"", "   ", strings.Repeat("x", domain.MaxTitleLength+1)} {
		if _, err := svc.Create(context.Background(), domain.CreateTodoInput{Title: title}); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("title %q: expected ErrInvalidInput, got %v", title, err)
		}
	}
	if len(n.types()) != 0 {
		t.Fatalf("rejected input must not emit events")
	}

	todos, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(todos) != 0 {
		t.Fatalf("rejected input must not reach the store, got %d rows", len(todos))
	}
}

func TestTodoService_Update(t *testing.T) {
	svc, n := newTestService(t)
	ctx := context.Background()
	orig, _ := svc.Create(ctx, domain.CreateTodoInput{Title: "Original Title"})

	got, err := svc.Update(ctx, domain.UpdateTodoInput{ID: orig.ID, Title: ptr("Updated Title")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Updated Title" || got.Completed {
		t.Fatalf("unexpected: %+v", got)
	}

	got, err = svc.Update(ctx, domain.UpdateTodoInput{ID: orig.ID, Completed: ptr(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Updated Title" || !got.Completed {
		t.Fatalf("unexpected: %+v", got)
	}

	if _, err := svc.Update(ctx, domain.UpdateTodoInput{ID: orig.ID, Title: ptr(" ")}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank title, got %v", err)
	}

	if _, err := svc.Update(ctx, domain.UpdateTodoInput{ID: 999, Title: ptr("Updated Title")}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	want := []domain.TodoEventType{domain.TodoCreated, domain.TodoUpdated, domain.TodoUpdated}
	got2 := n.types()
	if len(got2) != len(want) {
		t.Fatalf("events = %v; want %v", got2, want)
	}
}

func TestTodoService_Update_EmptyPatch(t *testing.T) {
	svc, n := newTestService(t)
	ctx := context.Background()
	orig, _ := svc.Create(ctx, domain.CreateTodoInput{Title: "same"})

	got, err := svc.Update(ctx, domain.UpdateTodoInput{ID: orig.ID})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ID != orig.ID || got.Title != "same" || got.Completed {
		t.Fatalf("expected current record, got %+v", got)
	}
	if len(n.types()) != 1 {
		t.Fatalf("empty patch must not emit an update event, got %v", n.types())
	}

	if _, err := svc.Update(ctx, domain.UpdateTodoInput{ID: 999}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTodoService_Toggle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	orig, _ := svc.Create(ctx, domain.CreateTodoInput{Title: "flip"})

	for i, want := range []bool{true, false, true} {
		got, err := svc.Toggle(ctx, domain.ToggleTodoInput{ID: orig.ID})
		if err != nil {
			t.Fatalf("toggle %d: %v", i+1, err)
		}
		if got.Completed != want {
			t.Fatalf("toggle %d: completed = %v; want %v", i+1, got.Completed, want)
		}
	}

	if _, err := svc.Toggle(ctx, domain.ToggleTodoInput{ID: 999}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTodoService_Delete(t *testing.T) {
	svc, n := newTestService(t)
	ctx := context.Background()
	keep, _ := svc.Create(ctx, domain.CreateTodoInput{Title: "keep"})
	drop, _ := svc.Create(ctx, domain.CreateTodoInput{Title: "drop"})

	res, err := svc.Delete(ctx, domain.DeleteTodoInput{ID: drop.ID})
	if err != nil || !res.Success {
		t.Fatalf("expected success, got %+v, %v", res, err)
	}

	res, err = svc.Delete(ctx, domain.DeleteTodoInput{ID: drop.ID})
	if err != nil || res.Success {
		t.Fatalf("expected success=false on repeat delete, got %+v, %v", res, err)
	}

	todos, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != keep.ID || todos[0].Title != "keep" {
		t.Fatalf("unexpected remaining todos: %+v", todos)
	}

	deletes := 0
	for _, typ := range n.types() {
		if typ == domain.TodoDeleted {
			deletes++
		}
	}
	if deletes != 1 {
		t.Fatalf("expected exactly one delete event, got %d", deletes)
	}
}

func TestTodoService_IdentityStableAcrossMutations(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, _ := svc.Create(ctx, domain.CreateTodoInput{Title: "a"})
	b, _ := svc.Create(ctx, domain.CreateTodoInput{Title: "b"})
	c, _ := svc.Create(ctx, domain.CreateTodoInput{Title: "c"})

	steps := []func() error{
		func() error { _, err := svc.Toggle(ctx, domain.ToggleTodoInput{ID: a.ID}); return err },
		func() error {
			_, err := svc.Update(ctx, domain.UpdateTodoInput{ID: b.ID, Title: ptr("b2"), Completed: ptr(true)})
			return err
		},
		func() error { _, err := svc.Delete(ctx, domain.DeleteTodoInput{ID: c.ID}); return err },
		func() error { _, err := svc.Toggle(ctx, domain.ToggleTodoInput{ID: b.ID}); return err },
		func() error { _, err := svc.Update(ctx, domain.UpdateTodoInput{ID: a.ID}); return err },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	todos, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	originals := map[int64]*domain.Todo{a.ID: a, b.ID: b}
	if len(todos) != len(originals) {
		t.Fatalf("expected %d survivors, got %d", len(originals), len(todos))
	}
	for _, got := range todos {
		orig, ok := originals[got.ID]
		if !ok {
			t.Fatalf("unexpected survivor %+v", got)
		}
		if !got.CreatedAt.Equal(orig.CreatedAt) {
			t.Fatalf("created_at changed for %d: %v -> %v", got.ID, orig.CreatedAt, got.CreatedAt)
		}
	}
}

type failingStore struct{ err error }

func (f failingStore) Create(context.Context, *domain.Todo) error { return f.err }
func (f failingStore) GetByID(context.Context, int64) (*domain.Todo, error) {
	return nil, f.err
}
func (f failingStore) List(context.Context) ([]*domain.Todo, error) { return nil, f.err }
func (f failingStore) Update(context.Context, int64, domain.TodoPatch) (*domain.Todo, error) {
	return nil, f.err
}
func (f failingStore) Toggle(context.Context, int64) (*domain.Todo, error) { return nil, f.err }
func (f failingStore) Delete(context.Context, int64) (bool, error)        { return false, f.err }

func TestTodoService_StoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	n := &recordingNotifier{}
	svc := NewTodoService(failingStore{err: storeErr}, n)
	ctx := context.Background()

	calls := map[string]func() error{
		"create": func() error { _, err := svc.Create(ctx, domain.CreateTodoInput{Title: "x"}); return err },
		"list":   func() error { _, err := svc.List(ctx); return err },
		"update": func() error { _, err := svc.Update(ctx, domain.UpdateTodoInput{ID: 1, Completed: ptr(true)}); return err },
		"toggle": func() error { _, err := svc.Toggle(ctx, domain.ToggleTodoInput{ID: 1}); return err },
		"delete": func() error { _, err := svc.Delete(ctx, domain.DeleteTodoInput{ID: 1}); return err },
	}
	for name, call := range calls {
		if err := call(); err != storeErr {
			t.Fatalf("%s: expected store error unchanged, got %v", name, err)
		}
	}
	if len(n.types()) != 0 {
		t.Fatalf("failed calls must not emit events")
	}
}

func TestNewTodoService_NilNotifier(t *testing.T) {
	conn, err := db.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer conn.Close()

	svc := NewTodoService(repository.NewSQLiteTodoRepository(conn), nil)
	if _, err := svc.Create(context.Background(), domain.CreateTodoInput{Title: "no listeners"}); err != nil {
		t.Fatalf("create: %v", err)
	}
}
