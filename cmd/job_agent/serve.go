package main

import (
	"context"
	"fmt"

	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/fetch"
	"github.com/jonathan/job-tracker/internal/server"
	"github.com/jonathan/job-tracker/internal/users"
	"github.com/spf13/cobra"
)

var (
	servePort      int
	serveNoBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the folders, jobs, schedule, extraction, assistant and notification endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "Disable the headless browser fallback for URL extraction")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}

	port := a.cfg.Port
	if servePort > 0 {
		port = servePort
	}

	var render fetch.RenderFunc = fetch.WithBrowser
	if serveNoBrowser {
		render = nil
	}

	srv, err := server.New(server.Config{
		Port:                 port,
		Store:                a.store,
		Users:                users.NewService(a.users, passwords, a.store, a.store),
		Assistant:            a.assistant,
		Extractor:            a.extractor,
		Fetcher:              fetch.NewFetcher(fetch.DefaultOptions(), render),
		JWT:                  jwtConfig,
		NotificationDuration: a.cfg.NotificationDurationOrDefault(),
		OnShutdown:           []func(){a.Close},
	})
	if err != nil {
		a.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
