package repository

import (
	"context"
	"database/sql"
	"errors"

	"todo_app/internal/domain"
)

// SQLiteTodoRepository is the database/sql flavour of TodoRepository, used
// for local runs and as the per-test store.
type SQLiteTodoRepository struct {
	db *sql.DB
}

func NewSQLiteTodoRepository(db *sql.DB) *SQLiteTodoRepository {
	return &SQLiteTodoRepository{db: db}
}

func (r *SQLiteTodoRepository) Create(ctx context.Context, t *domain.Todo) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO todos (title, completed)
		 VALUES (?, 0)
		 RETURNING `+todoColumns,
		t.Title,
	).Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt)
}

func (r *SQLiteTodoRepository) GetByID(ctx context.Context, id int64) (*domain.Todo, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	return scanSQLTodoRow(row)
}

func (r *SQLiteTodoRepository) List(ctx context.Context) ([]*domain.Todo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY id`)
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

func (r *SQLiteTodoRepository) Update(ctx context.Context, id int64, p domain.TodoPatch) (*domain.Todo, error) {
	if p.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	set, args := buildTodoPatch(p, questionPlaceholder)
	args = append(args, id)

	row := r.db.QueryRowContext(ctx,
		`UPDATE todos SET `+set+` WHERE id = ? RETURNING `+todoColumns,
		args...,
	)
	return scanSQLTodoRow(row)
}

func (r *SQLiteTodoRepository) Toggle(ctx context.Context, id int64) (*domain.Todo, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE todos SET completed = NOT completed WHERE id = ? RETURNING `+todoColumns,
		id,
	)
	return scanSQLTodoRow(row)
}

func (r *SQLiteTodoRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteTodoRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanSQLTodoRow(row *sql.Row) (*domain.Todo, error) {
	var t domain.Todo
	if err := row.Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
