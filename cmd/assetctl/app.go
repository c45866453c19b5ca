package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"assettrack/config"
	"assettrack/internal/domain/service"
	"assettrack/internal/infra/assetapi"
	"assettrack/internal/infra/auth"
	"assettrack/internal/infra/geocode"
	logs "assettrack/internal/infra/log"
	"assettrack/internal/infra/qrcode"
	"assettrack/internal/infra/report"
	"assettrack/internal/infra/storage"
	"assettrack/internal/usecase"
	"assettrack/internal/usecase/impl"
	"assettrack/internal/usecase/store"
)

// app is the object graph of one CLI invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer

	sessions usecase.SessionUsecase
	assets   usecase.AssetUsecase
	admin    usecase.AdminUsecase
	tags     usecase.TagUsecase
	reports  usecase.ReportUsecase

	closers []func() error
}

func newApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	logger, err := logs.NewWithWriter(cfg.Env.Log, os.Stderr)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenStore(cfg)
	inspector := auth.NewTokenInspector()
	api := assetapi.NewClient(assetapi.Params{
		Config:    cfg,
		Tokens:    tokens,
		Inspector: inspector,
		Logger:    logger,
	})
	geocoder, err := geocode.NewGeocoder(cfg, logger)
	if err != nil {
		return nil, err
	}
	codec := qrcode.NewTagCodecFromConfig(cfg)
	st := store.New(api, nil, logger)

	a := &app{cfg: cfg, logger: logger, out: out}
	a.sessions = impl.NewSessionService(tokens, inspector, logger)
	a.assets = impl.NewAssetServiceWith(st, api, codec, geocoder, cfg.Assets.RequireAssignment, logger)
	a.admin = impl.NewAdminService(api, logger)
	a.tags = impl.NewTagServiceWith(st, api, *cfg.TagGeneration, logger)
	a.closers = append(a.closers, func() error {
		a.tags.Shutdown()

		return nil
	})

	var sink service.ArtifactSink
	if cfg.Export.BucketURL != "" {
		if sink, err = storage.OpenBlobSink(ctx, cfg.Export.BucketURL); err != nil {
			return nil, err
		}
		if closer, ok := sink.(io.Closer); ok {
			a.closers = append(a.closers, closer.Close)
		}
	}

	a.reports = impl.NewReportService(impl.ReportServiceParams{
		Assets: a.assets,
		Admin:  a.admin,
		Store:  st,
		PDF:    report.NewPDFExporter(codec),
		Excel:  report.NewExcelExporter(geocoder, cfg.Export.GeocodeConcurrency, cfg.Export.AddressPlaceholder, logger),
		Sink:   sink,
		Logger: logger,
	})

	return a, nil
}

// Close releases what newApp opened, newest first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Failed to release resource", slog.Any("error", err))
		}
	}
}
