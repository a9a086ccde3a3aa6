package repository

import (
	"context"
	"fmt"

	"todo_app/internal/config"
	"todo_app/internal/db"
	"todo_app/internal/domain"
)

// Store is the full method set shared by both todo repositories.
type Store interface {
	Create(ctx context.Context, t *domain.Todo) error
	GetByID(ctx context.Context, id int64) (*domain.Todo, error)
	List(ctx context.Context) ([]*domain.Todo, error)
	Update(ctx context.Context, id int64, p domain.TodoPatch) (*domain.Todo, error)
	Toggle(ctx context.Context, id int64) (*domain.Todo, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Ping(ctx context.Context) error
}

var (
	_ Store = (*TodoRepository)(nil)
	_ Store = (*SQLiteTodoRepository)(nil)
)

// Open connects the store selected by cfg.DBDriver. The returned func
// releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool := db.Connect(cfg.DatabaseURL)
		return NewTodoRepository(pool), pool.Close, nil
	case config.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteTodoRepository(conn), func() { _ = conn.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.DBDriver)
	}
}
