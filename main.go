package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"jobsh/internal/config"
	"jobsh/internal/executor"
	"jobsh/internal/logging"
	"jobsh/internal/repl"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "jobsh:", err)
		return 1
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "jobsh:", err)
		return 1
	}
	defer closer.Close()

	sh := repl.New(cfg, os.Stdin, os.Stdout, executor.DefaultStdio(), logger)
	if err := sh.Run(context.Background()); err != nil {
		logger.Error("shell stopped", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
