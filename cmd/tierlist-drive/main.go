package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/0xJagger/poc-geo-tier-list/internal/drive"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	config, err := drive.ParseFlags("tierlist-drive", args, stderr)
	if errors.Is(err, drive.ErrHelp) {
		return 0
	}
	if err != nil {
		_, _ = io.WriteString(stderr, "invalid arguments: "+err.Error()+"\n")
		return 2
	}

	closer, err := drive.SetupLogging(config)
	if err != nil {
		_, _ = io.WriteString(stderr, "failed to setup logging: "+err.Error()+"\n")
		return 1
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	if err := drive.Run(ctx, config); err != nil {
		_, _ = io.WriteString(stderr, "drive failed: "+err.Error()+"\n")
		return 1
	}
	return 0
}
