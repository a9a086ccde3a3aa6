package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("todo not found")
	ErrInvalidInput = errors.New("invalid input")
)

// MaxTitleLength is the longest title accepted by create and update.
const MaxTitleLength = 255

// Todo is the only persisted entity. ID and CreatedAt are assigned by the store.
type Todo struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Completed bool      `db:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateTodoInput struct {
	Title string `json:"title"`
}

// UpdateTodoInput is a partial patch: nil fields are left unchanged.
type UpdateTodoInput struct {
	ID        int64   `json:"id"`
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Patch returns the mutable fields carried by the update.
func (in UpdateTodoInput) Patch() TodoPatch {
	return TodoPatch{Title: in.Title, Completed: in.Completed}
}

type ToggleTodoInput struct {
	ID int64 `json:"id"`
}

type DeleteTodoInput struct {
	ID int64 `json:"id"`
}

type DeleteResult struct {
	Success bool `json:"success"`
}

// TodoPatch holds the columns an update should write.
type TodoPatch struct {
	Title     *string
	Completed *bool
}

func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil
}
