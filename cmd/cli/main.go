package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/familyorganizer/internal/buildinfo"
	"github.com/dmitrijs2005/familyorganizer/internal/client/cli"
	"github.com/dmitrijs2005/familyorganizer/internal/client/config"
	"github.com/dmitrijs2005/familyorganizer/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if s, ok := logger.(interface{ Sync() error }); ok {
		defer s.Sync()
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
