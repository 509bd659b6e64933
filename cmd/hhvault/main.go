package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/hhvault/hhvault/internal/cli"
	"github.com/hhvault/hhvault/internal/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
