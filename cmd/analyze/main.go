package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/producelens/internal/api/handler"
	"github.com/timmy/producelens/internal/bootstrap"
	"github.com/timmy/producelens/internal/config"
	"github.com/timmy/producelens/internal/logger"
	"github.com/timmy/producelens/internal/preprocess"
)

func main() {
	imagePath := flag.String("image", "", "Path to the image to analyze")
	configPath := flag.String("config", "", "Path to config file")
	pretty := flag.Bool("pretty", false, "Indent the JSON output")
	verbose := flag.Bool("v", false, "Log at info level")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "info"
	}
	// Logs go to stderr so stdout carries only the result
	appLogger := logger.New(&logger.Config{
		Level:       level,
		Format:      "json",
		Output:      os.Stderr,
		ServiceName: "producelens-analyze",
	})
	logger.SetDefaultLogger(appLogger)

	if *imagePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to read image")
	}
	if info, err := preprocess.Inspect(data); err == nil {
		appLogger.WithFields(logger.Fields{
			logger.FieldFormat: info.Format,
			logger.FieldWidth:  info.Width,
			logger.FieldHeight: info.Height,
		}).Info("Image loaded")
	}

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pipeline, err := bootstrap.NewPipeline(ctx, cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize analyzer")
	}
	defer pipeline.Close()

	result, err := pipeline.Analyzer.Analyze(ctx, data)
	if err != nil {
		appLogger.WithError(err).Error("Analysis failed")
		pipeline.Close()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(handler.NewPredictResponse(result)); err != nil {
		appLogger.WithError(err).Fatal("Failed to write result")
	}
}
