package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kentxun/anymind/internal/client/cli"
	"github.com/kentxun/anymind/internal/client/config"
	"github.com/kentxun/anymind/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		fw := logging.NewFileWriter(cfg.LogFile)
		defer fw.Close()
		w = fw
	}
	logger := logging.New(w, logging.ParseLevel(cfg.LogLevel), false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "error starting client", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app.Run(ctx)
}
