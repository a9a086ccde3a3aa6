package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"todo_app/internal/domain"
	"todo_app/internal/logger"
)

// TodoStore is the persistence the service needs. Both the PostgreSQL and the
// SQLite repositories satisfy it.
type TodoStore interface {
	Create(ctx context.Context, t *domain.Todo) error
	GetByID(ctx context.Context, id int64) (*domain.Todo, error)
	List(ctx context.Context) ([]*domain.Todo, error)
	Update(ctx context.Context, id int64, p domain.TodoPatch) (*domain.Todo, error)
	Toggle(ctx context.Context, id int64) (*domain.Todo, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Notifier receives an event after every successful mutation.
type Notifier interface {
	Publish(ctx context.Context, ev domain.TodoEvent)
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, domain.TodoEvent) {}

type TodoService struct {
	store    TodoStore
	notifier Notifier
}

// NewTodoService wires the handlers to a store. notifier may be nil.
func NewTodoService(store TodoStore, notifier Notifier) *TodoService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &TodoService{store: store, notifier: notifier}
}

func (s *TodoService) Create(ctx context.Context, in domain.CreateTodoInput) (*domain.Todo, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}

	todo := &domain.Todo{Title: title}
	if err := s.store.Create(ctx, todo); err != nil {
		s.logFailure(ctx, "create", 0, err)
		return nil, err
	}

	s.notifier.Publish(ctx, domain.TodoEvent{Type: domain.TodoCreated, ID: todo.ID, Todo: todo})
	return todo, nil
}

func (s *TodoService) List(ctx context.Context) ([]*domain.Todo, error) {
	todos, err := s.store.List(ctx)
	if err != nil {
		s.logFailure(ctx, "list", 0, err)
		return nil, err
	}
	return todos, nil
}

// Update applies the supplied fields only. With neither field present the
// current record is returned, or ErrNotFound.
func (s *TodoService) Update(ctx context.Context, in domain.UpdateTodoInput) (*domain.Todo, error) {
	patch := in.Patch()
	if patch.Title != nil {
		title, err := normalizeTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}

	todo, err := s.store.Update(ctx, in.ID, patch)
	if err != nil {
		s.logFailure(ctx, "update", in.ID, err)
		return nil, err
	}

	if !patch.IsEmpty() {
		s.notifier.Publish(ctx, domain.TodoEvent{Type: domain.TodoUpdated, ID: todo.ID, Todo: todo})
	}
	return todo, nil
}

func (s *TodoService) Toggle(ctx context.Context, in domain.ToggleTodoInput) (*domain.Todo, error) {
	todo, err := s.store.Toggle(ctx, in.ID)
	if err != nil {
		s.logFailure(ctx, "toggle", in.ID, err)
		return nil, err
	}

	s.notifier.Publish(ctx, domain.TodoEvent{Type: domain.TodoToggled, ID: todo.ID, Todo: todo})
	return todo, nil
}

// Delete never fails for a missing id; it reports Success == false instead.
func (s *TodoService) Delete(ctx context.Context, in domain.DeleteTodoInput) (*domain.DeleteResult, error) {
	removed, err := s.store.Delete(ctx, in.ID)
	if err != nil {
		s.logFailure(ctx, "delete", in.ID, err)
		return nil, err
	}

	if removed {
		s.notifier.Publish(ctx, domain.TodoEvent{Type: domain.TodoDeleted, ID: in.ID})
	}
	return &domain.DeleteResult{Success: removed}, nil
}

func (s *TodoService) logFailure(ctx context.Context, op string, id int64, err error) {
	log := logger.WithContext(ctx).With("op", op)
	if id != 0 {
		log = log.With("todo_id", id)
	}
	if errors.Is(err, domain.ErrNotFound) {
		log.Debug("todo not found")
		return
	}
	log.Error("todo "+op+" failed", "error", err)
}

func normalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return "", fmt.Errorf("%w: title cannot exceed %d characters", domain.ErrInvalidInput, domain.MaxTitleLength)
	}
	return title, nil
}
