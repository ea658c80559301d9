// Command web serves the sales metrics API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"shopmetrics/internal/app"
	"shopmetrics/internal/config"
	"shopmetrics/pkg/contracts"
)

func main() {
	configPath := flag.String("config", "", "config.yaml to load instead of the search path")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionInfo())
		return
	}

	if err := serve(*configPath); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func serve(configPath string) error {
	load := config.Load
	if configPath != "" {
		load = func() (*config.Config, error) { return config.LoadFrom(configPath) }
	}
	cfg, err := load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	application, err := app.NewApplication(cfg, nil)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	return application.Run()
}
