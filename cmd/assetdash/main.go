package main

import (
	"context"
	"log/slog"
	"os"

	"assettrack/config"
	"assettrack/internal/delivery"
	"assettrack/internal/delivery/http"
	"assettrack/internal/delivery/http/router/handler"
	"assettrack/internal/delivery/worker"
	workerhandler "assettrack/internal/delivery/worker/handler"
	"assettrack/internal/infra/assetapi"
	"assettrack/internal/infra/auth"
	"assettrack/internal/infra/geocode"
	logs "assettrack/internal/infra/log"
	"assettrack/internal/infra/pubsub"
	"assettrack/internal/infra/qrcode"
	"assettrack/internal/infra/report"
	"assettrack/internal/infra/storage"
	"assettrack/internal/usecase/impl"
	"assettrack/internal/usecase/store"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
		),
		pubsub.Module,
		report.Module,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewTokenStore,
			auth.NewTokenInspector,
			assetapi.NewClient,
			qrcode.NewTagCodecFromConfig,
			geocode.NewGeocoder,
			storage.NewArtifactSink,
			store.NewStore,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAssetService,
			impl.NewAdminService,
			impl.NewSessionService,
			impl.NewTagService,
			impl.NewReportService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewSessionHandler,
			handler.NewAssetHandler,
			handler.NewTagHandler,
			handler.NewAdminHandler,
			handler.NewReportHandler,
			workerhandler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
