package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/vide-coded/voxel-warfare/internal/app"
	"github.com/vide-coded/voxel-warfare/internal/config"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "server.yaml", "path to the server configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, app.Config{Server: cfg}); err != nil {
		log.Fatalf("%v", err)
	}
}
