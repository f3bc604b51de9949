package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vsplit/vsplit/internal/async"
	"github.com/vsplit/vsplit/internal/common"
	"github.com/vsplit/vsplit/internal/export"
	"github.com/vsplit/vsplit/internal/ocr"
	"github.com/vsplit/vsplit/internal/parser"
	"github.com/vsplit/vsplit/internal/pipeline"
	"github.com/vsplit/vsplit/internal/repository"
	"github.com/vsplit/vsplit/internal/server"
	session "github.com/vsplit/vsplit/internal/services/session"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.HealthCheck(ctx, 3*time.Second); err != nil {
		logger.Error("store health failed", "error", err)
		os.Exit(1)
	}
	logger.Info("store health OK")

	sessionsRepo, err := repository.NewSessionRepository(store, logger)
	if err != nil {
		logger.Error("session repository", "error", err)
		os.Exit(1)
	}
	historyRepo := repository.NewHistoryRepository(store, logger)
	svc := session.NewService(sessionsRepo, historyRepo, logger)

	recognizer := ocr.NewRecognizer(ocr.Config{
		Tesseract:           cfg.OCR.Tesseract,
		TesseractLang:       cfg.OCR.TesseractLang,
		TessdataDir:         cfg.OCR.TessdataDir,
		TempDir:             cfg.OCR.TempDir,
		Timeout:             cfg.OCR.Timeout,
		EnableTSVConfidence: cfg.OCR.TSVConfidence,
	}, logger)
	processor := pipeline.NewProcessor(logger, recognizer, parser.New(logger))
	queue := async.NewScanQueue(processor, svc, logger)

	srv := server.New(svc, processor, queue, export.NewService(logger), store, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
