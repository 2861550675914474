package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Soodgit/ai-code-documenter/internal/cli"
	"github.com/Soodgit/ai-code-documenter/internal/common/config"
)

func main() {
	cfg := config.LoadClientConfig()

	server := flag.String("server", cfg.ServerURL, "server base URL")
	flag.Parse()
	cfg.ServerURL = *server

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := app.Run(ctx, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}
