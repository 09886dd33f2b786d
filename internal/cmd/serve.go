package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/logcove/internal/config"
	"github.com/3leaps/logcove/internal/logging"
	"github.com/3leaps/logcove/internal/metrics"
	"github.com/3leaps/logcove/internal/server"
	"github.com/3leaps/logcove/internal/server/handlers"
	"github.com/3leaps/logcove/pkg/catalog"
	"github.com/3leaps/logcove/pkg/counts"
	"github.com/3leaps/logcove/pkg/eventprocessor"
	"github.com/3leaps/logcove/pkg/ingest"
	"github.com/3leaps/logcove/pkg/provider"
	"github.com/3leaps/logcove/pkg/provider/file"
	"github.com/3leaps/logcove/pkg/provider/s3"
	"github.com/3leaps/logcove/pkg/querycatalog"
	"github.com/3leaps/logcove/pkg/querysession"
	"github.com/3leaps/logcove/pkg/registry"
	"github.com/3leaps/logcove/pkg/telemetry"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the logcove HTTP service",
	RunE:  runServe,
}

// buildProvider constructs the object-store provider backing every other
// component, selected by cfg.Store.Provider (spec §6 object-store layout).
func buildProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	switch cfg.Store.Provider {
	case "s3":
		return s3.New(ctx, s3.Config{
			Bucket:         cfg.Store.Bucket,
			Region:         cfg.Store.Region,
			Endpoint:       cfg.Store.Endpoint,
			Profile:        cfg.Store.Profile,
			ForcePathStyle: cfg.Store.ForcePathStyle,
		})
	case "file", "":
		return file.New(file.Config{BaseDir: cfg.Store.LocalRoot})
	default:
		return nil, errors.New("serve: unknown store provider " + cfg.Store.Provider)
	}
}

// reseedRegistry rehydrates the in-memory registry for every stream the
// object store already knows about (spec §4.6), so a freshly started
// process can serve queries/deletes against streams it did not itself
// ingest into during this run.
func reseedRegistry(ctx context.Context, reg *registry.Registry, store *catalog.Store, p provider.Provider, logger *zap.Logger) {
	names, err := registry.ListStreamNames(ctx, p)
	if err != nil {
		logger.Warn("reseed registry: list streams", zap.Error(err))
		return
	}
	for _, name := range names {
		if err := registry.UpsertFromStorage(ctx, reg, store, p, name); err != nil {
			logger.Warn("reseed registry: hydrate stream", zap.String("stream", name), zap.Error(err))
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Profile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	objStore, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = objStore.Close() }()

	reg := registry.New()
	store := catalog.NewStore(objStore)
	mode := ingest.Mode(cfg.Ingest.Mode)

	reseedRegistry(ctx, reg, store, objStore, logger)

	controller := &ingest.Controller{
		Registry:  reg,
		Store:     store,
		Provider:  objStore,
		Processor: eventprocessor.NewFileProcessor(store, objStore),
		Mode:      mode,
		Separator: cfg.Ingest.Separator,
	}

	catalogProvider := querycatalog.NewProvider(reg, store, objStore, mode)
	countsEngine := &counts.Engine{Registry: reg, Store: store}

	session, err := querysession.New(ctx, querysession.Config{
		PruneEnabled:       true,
		PushdownEnabled:    true,
		RepartitionEnabled: true,
		BinaryAsString:     true,
		MemoryPoolBytes:    cfg.Query.MemoryPoolBytes,
	})
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	metricsRegistry := metrics.New(prometheus.DefaultRegisterer)

	handlers.InitHealthManager(versionInfo.Version)

	if cfg.Metrics.Enabled {
		sampler := telemetry.New(cfg.Store.LocalRoot, metricsRegistry, logger)
		go sampler.Run(ctx)
	}

	srv := server.New(cfg.Server.Host, cfg.Server.Port)
	server.SetVersion(versionInfo.Version)
	srv.Ingest = &handlers.IngestHandler{Controller: controller, Metrics: metricsRegistry}
	srv.Query = &handlers.QueryHandler{
		Registry: reg,
		Store:    store,
		Catalog:  catalogProvider,
		Counts:   countsEngine,
		Metrics:  metricsRegistry,
	}

	httpServer := &http.Server{
		Addr:         srv.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("logcove serve listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("logcove serve shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
