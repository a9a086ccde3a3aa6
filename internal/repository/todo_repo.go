package repository

import (
	"context"
	"errors"

	"todo_app/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const todoColumns = `id, title, completed, created_at`

// TodoRepository stores todos in PostgreSQL
type TodoRepository struct {
	db *pgxpool.Pool
}

func NewTodoRepository(db *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{db: db}
}

// Create inserts a todo with completed = false and fills ID and CreatedAt
func (r *TodoRepository) Create(ctx context.Context, t *domain.Todo) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO todos (title, completed)
		 VALUES ($1, FALSE)
		 RETURNING `+todoColumns,
		t.Title,
	).Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt)
}

func (r *TodoRepository) GetByID(ctx context.Context, id int64) (*domain.Todo, error) {
	row := r.db.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id)
	return scanTodoRow(row)
}

// List returns every todo in insertion order
func (r *TodoRepository) List(ctx context.Context) ([]*domain.Todo, error) {
	rows, err := r.db.Query(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]*domain.Todo, 0)
	for rows.Next() {
		var t domain.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

// Update writes only the fields present in the patch. An empty patch reads
// the row instead.
func (r *TodoRepository) Update(ctx context.Context, id int64, p domain.TodoPatch) (*domain.Todo, error) {
	if p.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	set, args := buildTodoPatch(p, dollarPlaceholder)
	args = append(args, id)

	row := r.db.QueryRow(ctx,
		`UPDATE todos SET `+set+`
		 WHERE id = `+dollarPlaceholder(len(args))+`
		 RETURNING `+todoColumns,
		args...,
	)
	return scanTodoRow(row)
}

// Toggle flips completed in a single statement
func (r *TodoRepository) Toggle(ctx context.Context, id int64) (*domain.Todo, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE todos SET completed = NOT completed
		 WHERE id = $1
		 RETURNING `+todoColumns,
		id,
	)
	return scanTodoRow(row)
}

// Delete reports whether a row was removed
func (r *TodoRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TodoRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func scanTodoRow(row pgx.Row) (*domain.Todo, error) {
	var t domain.Todo
	if err := row.Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
