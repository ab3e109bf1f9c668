// Package app wires configuration into the intake components shared by the binaries.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/export"
	"github.com/joseph-ayodele/bol-intake/internal/extract"
	"github.com/joseph-ayodele/bol-intake/internal/mapping"
	"github.com/joseph-ayodele/bol-intake/internal/ocr"
	"github.com/joseph-ayodele/bol-intake/internal/pipeline"
	"github.com/joseph-ayodele/bol-intake/internal/recordstore"
	"github.com/joseph-ayodele/bol-intake/internal/repository"
	"github.com/joseph-ayodele/bol-intake/internal/server"
	"github.com/joseph-ayodele/bol-intake/internal/source"
)

// App holds the long-lived components built from one Config.
type App struct {
	Config *common.Config
	Logger *slog.Logger

	DB          *repository.DB // nil when history is disabled
	Runs        repository.ExtractRunRepository
	Submissions repository.SubmissionRepository

	Mapper    *mapping.Mapper
	Processor *pipeline.Processor
	Export    *export.Service
	Store     *recordstore.Client // nil when record-store settings are incomplete
}

type Options struct {
	// NoHistory skips opening the history store.
	NoHistory bool
	// HTTPClient overrides the record-store HTTP client.
	HTTPClient *http.Client
}

// Build validates cfg and constructs every component. Close releases what Build opened.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger}

	if !opts.NoHistory {
		db, err := server.ConnectDB(ctx, cfg.History.DSN, logger)
		if err != nil {
			return nil, err
		}
		a.DB = db
		a.Runs = repository.NewExtractRunRepository(db, logger)
		a.Submissions = repository.NewSubmissionRepository(db, logger)
	}

	var s3c source.ObjectGetter
	if client, err := source.NewS3Client(ctx, cfg.S3); err != nil {
		logger.Warn("s3 documents disabled", "error", err)
	} else {
		s3c = client
	}

	a.Mapper = mapping.NewMapper(mapping.DefaultsFromConfig(cfg.Defaults), logger)
	text := pipeline.NewTextStage(
		source.NewOpener(cfg.Defaults.MaxFileSizeMB, s3c, logger),
		ocr.NewExtractor(ocr.ConfigFrom(cfg.OCR, cfg.Defaults.EnableOCR), logger),
		logger,
	)
	fields := pipeline.NewFieldStage(extract.NewExtractor(extract.WithLogger(logger)), a.Mapper, logger)
	a.Processor = pipeline.NewProcessor(logger, text, fields, a.Runs)
	a.Export = export.NewService(a.Mapper, logger)

	if err := cfg.ValidateRecordStore(); err != nil {
		logger.Warn("record store disabled", "error", err)
	} else {
		a.Store = recordstore.NewClient(recordstore.ConfigFrom(cfg.RecordStore), opts.HTTPClient, logger)
	}
	return a, nil
}

// RecordStore returns the client or an error naming the missing settings.
func (a *App) RecordStore() (*recordstore.Client, error) {
	if a.Store == nil {
		return nil, a.Config.ValidateRecordStore()
	}
	return a.Store, nil
}

func (a *App) Close() {
	if a.DB == nil {
		return
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Warn("failed to close history store", "error", err)
	}
}
