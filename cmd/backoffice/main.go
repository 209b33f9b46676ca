package main

import (
	"flag"
	"fmt"
	"os"

	"trading-backoffice/internal/cli"
	"trading-backoffice/internal/config"
	"trading-backoffice/internal/logging"
)

func main() {
	configDir := flag.String("config", "", "configuration directory (default ~/.config/backoffice)")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(cfg.Log)

	rootCmd := cli.NewRootCmd(cfg, logger)
	rootCmd.SetArgs(flag.Args())
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("load failed")
		os.Exit(1)
	}
}
