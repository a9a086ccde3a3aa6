package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"todo_app/internal/config"
	"todo_app/internal/db"
	"todo_app/internal/logger"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations instead of listing them")
	dir := flag.String("dir", filepath.Join("internal", "migrations"), "migrations directory")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	files, err := migrationFiles(*dir)
	if err != nil {
		logger.Fatal("read migrations dir", "dir", *dir, "error", err)
	}
	if !*apply {
		for _, name := range files {
			fmt.Println(name)
		}
		return
	}

	// sqlite creates its schema on open
	if cfg.DBDriver == config.DriverSQLite {
		conn, err := db.OpenSQLite(context.Background(), cfg.SQLitePath)
		if err != nil {
			logger.Fatal("open sqlite", "path", cfg.SQLitePath, "error", err)
		}
		_ = conn.Close()
		fmt.Printf("schema ready in %s\n", cfg.SQLitePath)
		return
	}

	pool := db.Connect(cfg.DatabaseURL)
	defer pool.Close()

	for _, name := range files {
		b, err := os.ReadFile(filepath.Join(*dir, name))
		if err != nil {
			logger.Fatal("read migration", "file", name, "error", err)
		}
		if _, err := pool.Exec(context.Background(), string(b)); err != nil {
			logger.Fatal("apply migration", "file", name, "error", err)
		}
		fmt.Printf("applied %s\n", name)
	}
}

func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
