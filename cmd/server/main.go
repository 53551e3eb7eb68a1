package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"candlekit/internal/alert"
	"candlekit/internal/bot"
	"candlekit/internal/cache"
	"candlekit/internal/config"
	"candlekit/internal/handler"
	"candlekit/internal/job"
	"candlekit/internal/market"
	"candlekit/internal/provider"
	"candlekit/internal/service"
	"candlekit/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initTracerFunc         = tracing.InitTracer
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	startTelegramBotFunc   = bot.StartTelegramBot
	startAlertPollerFunc   = func(p *job.AlertPoller, ctx context.Context) { go p.Start(ctx) }
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Cache backend: Redis when configured, in-process otherwise.
	var store cache.Store
	if cfg.RedisURL != "" {
		store = cache.NewRedisStore(cache.NewRedisClient(cfg.RedisURL))
	} else {
		store = cache.NewMemoryStore(cfg.CacheMaxEntries, time.Now)
	}
	marketCache := cache.New(store)

	gate := provider.NewGateProvider(tracer, provider.Config{BaseURL: cfg.GateBaseURL})
	fetcher := market.NewFetcher(tracer, gate, marketCache, market.Config{
		MarketTTL:    time.Duration(cfg.MarketTTLSecs) * time.Second,
		OHLCVTTL:     time.Duration(cfg.OHLCVTTLSecs) * time.Second,
		MaxAttempts:  cfg.FetchAttempts,
		InitialDelay: time.Duration(cfg.FetchDelayMS) * time.Millisecond,
	})

	var registryOpts []alert.Option
	if cfg.AlertRearm {
		registryOpts = append(registryOpts, alert.WithRearm())
	}
	registry := alert.NewRegistry(time.Now, registryOpts...)

	analysisService := service.NewAnalysisService(tracer, fetcher)
	alertService := service.NewAlertService(tracer, registry, fetcher)

	// Telegram bot and alert poller
	dispatcher := startTelegramBotFunc(cfg.TelegramBotToken, fetcher, analysisService, alertService)

	poller := job.NewAlertPoller(tracer, alertService,
		time.Duration(cfg.AlertPollSecs)*time.Second,
		func(ctx context.Context, report *alert.CheckReport) {
			if dispatcher == nil {
				return
			}
			if err := dispatcher.NotifyFired(ctx, report.Fired); err != nil {
				log.Printf("alert notification error: %v", err)
			}
		})
	startAlertPollerFunc(poller, ctx)

	h := newHandlerFunc(fetcher, analysisService, alertService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("candlekit"))
	r.Use(cors.Default())

	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
