package db

import (
	"context"
	"time"

	"todo_app/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(dsn string) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected", "driver", "postgres")
	return pool
}
