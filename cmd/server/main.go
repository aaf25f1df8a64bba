package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/w920801-a11y/climate-try/config"
	"github.com/w920801-a11y/climate-try/internal/api/v1/handlers"
	"github.com/w920801-a11y/climate-try/internal/inmemorycache"
	"github.com/w920801-a11y/climate-try/internal/oracle"
	"github.com/w920801-a11y/climate-try/internal/orchestrator"
	"github.com/w920801-a11y/climate-try/internal/refresher"
	"github.com/w920801-a11y/climate-try/internal/service"
)

func main() {
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logLevel, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).
		Level(logLevel).
		With().
		Str("service_name", conf.ServiceName).
		Timestamp().
		Logger()
	log.Logger = logger

	ctx, mainCtxStop := context.WithCancel(context.Background())

	if conf.GeminiAPIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY is not set, weather requests will fail until it is configured")
	}

	oracleClient := oracle.NewGeminiClient(conf.OracleBaseURL, conf.GeminiModel, conf.GeminiAPIKey)
	orch := orchestrator.NewOrchestrator(oracleClient, conf.MaxRetries, conf.RetryBackoff)

	cacheProvider := inmemorycache.NewInMemoryCacheProvider(time.Duration(time.Second * 60))

	aggregator := service.NewWeatherRequestAggregator(
		orch,
		cacheProvider,
		conf.MaxQueueSize,
		conf.MaxWaitTime,
		conf.CacheTTL,
		conf.FailedCacheTTL,
		conf.QuotaCooldown,
	)
	weatherService := service.NewWeatherService(aggregator, orch)

	warm := refresher.New(conf.WarmLocationList(), conf.WarmInterval, weatherService)
	if err := warm.Start(); err != nil {
		logger.Error().Err(err).Msg("failed to start cache refresher")
	}

	handler := handlers.NewWeatherHandler(weatherService, conf.HTTPTimeoutDuration())

	httpServer := &http.Server{
		Addr:              conf.ServerAddress,
		Handler:           handler,
		ReadHeaderTimeout: conf.HTTPTimeoutDuration(),
	}

	handleSignals(ctx, mainCtxStop, func() {
		warm.Stop()
		aggregator.Shutdown()

		shutdownErr := httpServer.Shutdown(ctx)
		if shutdownErr != nil {
			log.Fatal().Err(shutdownErr).Msg("server shutdown failed")
		}
	})

	log.Info().Msgf("started server on %s", conf.ServerAddress)

	serverErr := httpServer.ListenAndServe()
	if serverErr != nil {
		log.Err(serverErr).Msg("server stopped")
	}
	<-ctx.Done()
}

func handleSignals(ctx context.Context, cancelCtx context.CancelFunc, callback func()) {
	sig := make(chan os.Signal, 1)

	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	const shutdownDuration = 30 * time.Second

	go func() {
		<-sig

		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownDuration)

		go func() {
			<-shutdownCtx.Done()

			if shutdownCtx.Err() == context.DeadlineExceeded {
				panic("graceful shutdown timed out.. forcing exit.")
			}
		}()

		callback()

		cancel()
		cancelCtx()
	}()
}
