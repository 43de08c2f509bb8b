package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	httpadapter "linguacv/internal/adapter/http"
	"linguacv/internal/adapter/repository"
	"linguacv/internal/infrastructure/migration"
	"linguacv/internal/logger"
	"linguacv/internal/usecase"
	"linguacv/pkg/backend"
	"linguacv/pkg/infrastructure"
	"linguacv/pkg/voice"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Poll the backend and serve the live preview",
	RunE:    runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.Named("serve")

	pool, err := infrastructure.NewExportsPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warnw("Exports database not available, export log disabled", "error", err)
	}
	if pool != nil {
		defer pool.Close()
		if err := migration.RunMigrations(ctx, pool, logger.Named("migration")); err != nil {
			return err
		}
	}
	exports := repository.NewExportsRepo(pool)

	backendClient := backend.NewClient(cfg.BackendURL, cfg.FetchTimeout())
	poller := usecase.NewPoller(backendClient, usecase.PollerConfig{
		BaseDelay:    cfg.BaseDelay(),
		MaxDelay:     cfg.MaxDelay(),
		FetchTimeout: cfg.FetchTimeout(),
	}, nil, logger.Named("poller"))

	exporter := usecase.NewExporter(
		infrastructure.NewChromedpRasterizer(cfg.ChromePath),
		infrastructure.NewPDFComposer(),
		exports,
		usecase.ExporterConfig{WidthPx: 800, Scale: 2, ArtifactDir: cfg.ArtifactDir},
		nil,
		logger.Named("export"),
	)

	var voiceClient usecase.VoiceClient
	if cfg.Voice.Enabled() {
		voiceClient = voice.NewClient(cfg.Voice.APIURL, cfg.Voice.APIKey, cfg.Voice.AssistantID)
	}
	sessions := usecase.NewSessionController(voiceClient, logger.Named("voice"))

	app := fiber.New(fiber.Config{AppName: "linguacv", DisableStartupMessage: true})
	httpadapter.NewHandler(httpadapter.Options{
		Poller:   poller,
		Exporter: exporter,
		Backend:  backendClient,
		Sessions: sessions,
		History:  exports,
		Refresh:  cfg.BaseDelay(),
		Logger:   logger.Named("http"),
	}).Register(app)

	poller.Start()
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(":" + cfg.Port)
	}()
	log.Infow("Serving live preview",
		"addr", "http://localhost:"+cfg.Port,
		"backend", cfg.BackendURL,
		"voice", voiceClient != nil,
		"export_log", pool != nil,
	)

	select {
	case <-ctx.Done():
		log.Infow("Shutting down")
	case err := <-listenErr:
		poller.Stop()
		return err
	}

	poller.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sessions.Close(shutdownCtx)
	select {
	case <-poller.Done():
	case <-shutdownCtx.Done():
	}
	return app.ShutdownWithContext(shutdownCtx)
}
