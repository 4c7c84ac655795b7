// Package main runs the metaprotocol watcher backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/analyzer"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/detect"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/esplora"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/metrics"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/monitor"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/scanner"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/synthetic"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/transport"
)

var config struct {
	Addr       string `long:"addr" env:"METAWATCH_ADDR" description:"http listen address" default:":8000"`
	EsploraURL string `long:"esplora-url" env:"METAWATCH_ESPLORA_URL" description:"esplora api base url"`
	EsploraRPS int    `long:"esplora-rps" env:"METAWATCH_ESPLORA_RPS" description:"esplora request rate limit" default:"4"`
	Network    string `long:"network" env:"METAWATCH_NETWORK" description:"bitcoin network" default:"mainnet"`
	Synthetic  bool   `long:"synthetic" env:"METAWATCH_SYNTHETIC" description:"generate synthetic activity instead of scanning"`
	Seed       uint64 `long:"seed" env:"METAWATCH_SEED" description:"synthetic generator seed" default:"1"`
	Backlog    int    `long:"backlog" env:"METAWATCH_BACKLOG" description:"live feed backlog capacity" default:"1000"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	if _, err := flags.ParseArgs(&config, os.Args); err != nil {
		logger.Fatal("Failed to parse arguments", zap.Error(err))
	}

	addresses, err := esplora.NewAddressDecoder(config.Network)
	if err != nil {
		logger.Fatal("Failed to initialize address decoder", zap.Error(err))
	}
	source := esplora.NewClient(config.EsploraURL, config.EsploraRPS, metrics.NewEsplora(), addresses)
	classifier := detect.NewClassifier(detect.DefaultDetectors()...)

	mon, feed := monitor.New(logger, config.Backlog, metrics.NewLiveFeed())
	go func() {
		for lt := range feed.C() {
			logger.Info("live activity",
				zap.String("txid", lt.TxID),
				zap.Strings("protocols", lt.Protocols),
				zap.Uint64("total_value", lt.TotalValue),
			)
		}
	}()

	if config.Synthetic {
		gen := synthetic.NewGenerator(config.Seed, mon, logger)
		go runLoop(ctx, logger, "synthetic generator", gen.Run)
	} else {
		scanMetrics := metrics.NewScanner()
		mempool := scanner.NewMempoolScanner(source, classifier, mon, scanMetrics, logger)
		blocks := scanner.NewBlockScanner(source, classifier, mon, scanMetrics, logger)
		go runLoop(ctx, logger, "mempool scanner", mempool.Run)
		go runLoop(ctx, logger, "block scanner", blocks.Run)
	}

	handler := transport.NewHandler(
		analyzer.New(source, classifier, logger),
		source,
		mon,
		logger,
	)
	mux := http.NewServeMux()
	handler.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	s := &http.Server{
		Addr:              config.Addr,
		Handler:           cors.Default().Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down the http server")
		if err := s.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server",
		zap.String("addr", config.Addr),
		zap.Bool("synthetic", config.Synthetic),
	)
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to listen and serve", zap.Error(err))
	}
}

func runLoop(ctx context.Context, logger *zap.Logger, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("loop terminated unexpectedly", zap.String("loop", name), zap.Error(err))
		return
	}
	logger.Info("loop stopped", zap.String("loop", name))
}
