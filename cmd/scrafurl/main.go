package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/scrafurl/internal/config"
	"github.com/samvad-hq/scrafurl/internal/logger"
	"github.com/samvad-hq/scrafurl/pkg/httpclient"
)

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errNoResponse) {
			fmt.Fprintf(os.Stderr, "scrafurl: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()
	defer httpclient.Shutdown()

	logger.DebugObj("scrafurl starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(cfg, log)
	root.SetArgs(os.Args[1:])
	return root.ExecuteContext(ctx)
}
