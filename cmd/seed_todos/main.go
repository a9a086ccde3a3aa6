package main

import (
	"context"
	"flag"
	"fmt"

	"todo_app/internal/config"
	"todo_app/internal/domain"
	"todo_app/internal/logger"
	"todo_app/internal/repository"
	"todo_app/internal/service"
)

func main() {
	n := flag.Int("n", 5, "number of todos to create")
	prefix := flag.String("prefix", "Sample todo", "title prefix")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx := context.Background()
	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open store", "driver", cfg.DBDriver, "error", err)
	}
	defer closeStore()

	svc := service.NewTodoService(store, nil)
	for i := 1; i <= *n; i++ {
		t, err := svc.Create(ctx, domain.CreateTodoInput{Title: fmt.Sprintf("%s %d", *prefix, i)})
		if err != nil {
			logger.Fatal("create todo failed", "index", i, "error", err)
		}
		logger.Info("todo created", "id", t.ID, "title", t.Title)
	}

	todos, err := svc.List(ctx)
	if err != nil {
		logger.Fatal("list todos failed", "error", err)
	}
	fmt.Printf("store now holds %d todos\n", len(todos))
}
