package rpc

import (
	"context"
	"encoding/json"

	"todo_app/internal/domain"
)

// Procedure names as called by the web client.
const (
	ProcCreateTodo = "createTodo"
	ProcGetTodos   = "getTodos"
	ProcUpdateTodo = "updateTodo"
	ProcToggleTodo = "toggleTodo"
	ProcDeleteTodo = "deleteTodo"
)

// TodoHandlers is implemented by service.TodoService.
type TodoHandlers interface {
	Create(ctx context.Context, in domain.CreateTodoInput) (*domain.Todo, error)
	List(ctx context.Context) ([]*domain.Todo, error)
	Update(ctx context.Context, in domain.UpdateTodoInput) (*domain.Todo, error)
	Toggle(ctx context.Context, in domain.ToggleTodoInput) (*domain.Todo, error)
	Delete(ctx context.Context, in domain.DeleteTodoInput) (*domain.DeleteResult, error)
}

func RegisterTodoProcedures(r *Registry, h TodoHandlers) {
	r.Register(ProcGetTodos, KindQuery, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return h.List(ctx)
	})

	r.Register(ProcCreateTodo, KindMutation, func(ctx context.Context, raw json.RawMessage) (any, error) {
		in, err := decodeInput[domain.CreateTodoInput](raw)
		if err != nil {
			return nil, err
		}
		return h.Create(ctx, in)
	})

	r.Register(ProcUpdateTodo, KindMutation, func(ctx context.Context, raw json.RawMessage) (any, error) {
		in, err := decodeInput[domain.UpdateTodoInput](raw)
		if err != nil {
			return nil, err
		}
		return h.Update(ctx, in)
	})

	r.Register(ProcToggleTodo, KindMutation, func(ctx context.Context, raw json.RawMessage) (any, error) {
		in, err := decodeInput[domain.ToggleTodoInput](raw)
		if err != nil {
			return nil, err
		}
		return h.Toggle(ctx, in)
	})

	r.Register(ProcDeleteTodo, KindMutation, func(ctx context.Context, raw json.RawMessage) (any, error) {
		in, err := decodeInput[domain.DeleteTodoInput](raw)
		if err != nil {
			return nil, err
		}
		return h.Delete(ctx, in)
	})
}
