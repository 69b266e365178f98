package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/hospital-receptionist/internal/calllog"
	httpmiddleware "github.com/wolfman30/hospital-receptionist/internal/http/middleware"
	"github.com/wolfman30/hospital-receptionist/internal/receptionist"
	"github.com/wolfman30/hospital-receptionist/internal/telephony"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes unmounted.
type Config struct {
	Logger       *logging.Logger
	Receptionist *receptionist.Handler
	Telephony    *telephony.Handler
	CallLog      *calllog.Handler
	// Live serves the dashboard websocket.
	Live           http.Handler
	MetricsHandler http.Handler

	CORSAllowedOrigins []string
	// StaffAuthSecret protects stats, transcripts and the live feed when set.
	StaffAuthSecret string
	// RateLimiter throttles the public JSON API.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates the chi router with every route configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Telephony != nil {
		r.Route("/api/twilio", func(tw chi.Router) {
			tw.Post("/voice", cfg.Telephony.Voice)
			tw.Post("/transcribe", cfg.Telephony.Transcribe)
			tw.Post("/status", cfg.Telephony.Status)
		})
	}

	staff := func(h http.Handler) http.Handler { return h }
	if cfg.StaffAuthSecret != "" {
		staff = httpmiddleware.StaffJWT(cfg.StaffAuthSecret)
	}

	if cfg.Receptionist != nil {
		r.Route("/api/receptionist", func(api chi.Router) {
			api.Group(func(conv chi.Router) {
				conv.Use(middleware.Compress(5))
				if cfg.RateLimiter != nil {
					conv.Use(cfg.RateLimiter.Middleware)
				}
				conv.Post("/conversation", cfg.Receptionist.Conversation)
			})
			api.With(staff).Get("/stats", cfg.Receptionist.Stats)
		})
	}
	if cfg.CallLog != nil {
		r.With(staff).Get("/api/calls/{callID}/transcript", cfg.CallLog.GetTranscript)
	}
	if cfg.Live != nil {
		r.With(staff).Handle("/ws", cfg.Live)
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
