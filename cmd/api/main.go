package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/hospital-receptionist/internal/api/router"
	"github.com/wolfman30/hospital-receptionist/internal/app/bootstrap"
	"github.com/wolfman30/hospital-receptionist/internal/calllog"
	"github.com/wolfman30/hospital-receptionist/internal/composer"
	appconfig "github.com/wolfman30/hospital-receptionist/internal/config"
	"github.com/wolfman30/hospital-receptionist/internal/fallback"
	httpmiddleware "github.com/wolfman30/hospital-receptionist/internal/http/middleware"
	"github.com/wolfman30/hospital-receptionist/internal/live"
	"github.com/wolfman30/hospital-receptionist/internal/observability/metrics"
	"github.com/wolfman30/hospital-receptionist/internal/receptionist"
	"github.com/wolfman30/hospital-receptionist/internal/telephony"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hospital receptionist API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"hospital", cfg.HospitalName,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.close()

	go a.sweeper.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Generation may take up to LLM_TIMEOUT before the fallback answers.
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server stopped")
}

type app struct {
	handler http.Handler
	service *receptionist.Service
	sweeper *fallback.Sweeper
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp wires every component from config. Backends that are not
// configured fall back to in-memory implementations.
func newApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	a := &app{}

	metricsHandler, m := setupMetrics()

	rdb := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if rdb != nil {
		a.closers = append(a.closers, func() { _ = rdb.Close() })
	}
	kb, err := bootstrap.BuildKnowledgeBase(ctx, cfg, rdb, logger)
	if err != nil {
		return nil, err
	}

	pool, err := bootstrap.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		a.closers = append(a.closers, pool.Close)
	}
	store := bootstrap.BuildPatientStore(pool, logger)
	calls := bootstrap.BuildCallLog(cfg, rdb)

	client, closeClient, err := bootstrap.BuildGenerationClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeClient)

	model := cfg.GeminiModel
	if cfg.LLMProvider == "bedrock" {
		model = cfg.BedrockModelID
	}
	hub := live.NewHub(logger)
	a.service = receptionist.New(kb,
		receptionist.WithClient(client),
		receptionist.WithComposer(composer.New(cfg.HospitalName, cfg.AssistantName, composer.WithModel(model))),
		receptionist.WithTimeout(cfg.LLMTimeout),
		receptionist.WithPublisher(hub),
		receptionist.WithCallLog(calls),
		receptionist.WithPatients(store),
		receptionist.WithBookingRecorder(store),
		receptionist.WithMetrics(m),
		receptionist.WithLogger(logger),
	)

	a.sweeper = fallback.NewSweeper(a.service.Conversations(), logger).
		WithInterval(cfg.StateSweepInterval).
		WithIdleTimeout(cfg.StateIdleTimeout).
		OnRemoved(func(keys []string) {
			m.ObserveExpired(len(keys))
			m.SetActiveConversations(a.service.Conversations().Len())
		})

	twilioSecret := cfg.TwilioWebhookSecret
	if cfg.TwilioSkipSignature {
		logger.Warn("twilio signature validation disabled")
		twilioSecret = ""
	}
	voice := telephony.NewHandler(a.service, telephony.Config{
		AuthToken:      twilioSecret,
		PublicBaseURL:  cfg.PublicBaseURL,
		Voice:          cfg.TwilioTTSVoice,
		Language:       cfg.TwilioTTSLanguage,
		SpeechLanguage: cfg.TwilioSpeechLang,
	}, telephony.WithTranscripts(calls), telephony.WithMetrics(m), telephony.WithLogger(logger))

	limiterCtx, cancelLimiter := context.WithCancel(ctx)
	a.closers = append(a.closers, cancelLimiter)

	a.handler = router.New(&router.Config{
		Logger:             logger,
		Receptionist:       receptionist.NewHandler(a.service, logger),
		Telephony:          voice,
		CallLog:            calllog.NewHandler(calls, logger),
		Live:               live.NewHandler(hub, cfg.CORSAllowedOrigins),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		StaffAuthSecret:    cfg.AdminJWTSecret,
		RateLimiter:        httpmiddleware.NewRateLimiter(limiterCtx, cfg.APIRateLimit, cfg.APIRateBurst),
	})
	return a, nil
}

func setupMetrics() (http.Handler, *metrics.ReceptionistMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewReceptionistMetrics(reg)
}
