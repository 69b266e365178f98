// Package telephony answers Twilio voice webhooks with TwiML.
package telephony

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/hospital-receptionist/internal/calllog"
	"github.com/wolfman30/hospital-receptionist/internal/generation"
	"github.com/wolfman30/hospital-receptionist/internal/observability/metrics"
	"github.com/wolfman30/hospital-receptionist/internal/receptionist"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

var tracer = otel.Tracer("receptionist.internal.telephony")

const (
	TranscribePath = "/api/twilio/transcribe"

	RepromptText       = "I didn't catch that clearly. Could you please repeat?"
	TechnicalIssueText = "Sorry, there was a technical issue. Please try again in a moment."

	// historyTurns bounds how much of the stored transcript is replayed.
	historyTurns = 10
)

// terminalStatuses end the conversation; anything else is only mirrored.
var terminalStatuses = map[string]bool{
	"completed": true, "failed": true, "busy": true, "no-answer": true, "canceled": true,
}

// Receptionist is the conversational core the webhooks drive.
type Receptionist interface {
	HandleCall(ctx context.Context, req receptionist.TurnRequest) (receptionist.TurnResult, error)
	StartCall(ctx context.Context, callID, from, to string)
	UpdateCallStatus(ctx context.Context, callID, status string)
	EndCall(ctx context.Context, callID, callerPhone, status string) bool
	Greeting() string
	Goodbye() string
}

type transcripts interface {
	Transcript(ctx context.Context, callID string) ([]calllog.Entry, error)
}

type Config struct {
	// AuthToken verifies X-Twilio-Signature. Empty disables verification.
	AuthToken string
	// PublicBaseURL is the externally reachable origin, e.g. https://rx.example.com.
	// When empty the URL is rebuilt from the request and proxy headers.
	PublicBaseURL  string
	Voice          string
	Language       string
	SpeechLanguage string
}

type Handler struct {
	svc     Receptionist
	cfg     Config
	history transcripts
	metrics *metrics.ReceptionistMetrics
	logger  *logging.Logger
}

type Option func(*Handler)

// WithTranscripts replays the stored call transcript as model context.
func WithTranscripts(t transcripts) Option {
	return func(h *Handler) { h.history = t }
}

func WithMetrics(m *metrics.ReceptionistMetrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func WithLogger(l *logging.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHandler(svc Receptionist, cfg Config, opts ...Option) *Handler {
	if svc == nil {
		panic("telephony: receptionist cannot be nil")
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	if cfg.Voice == "" {
		cfg.Voice = "Polly.Amy"
	}
	if cfg.Language == "" {
		cfg.Language = "en-GB"
	}
	if cfg.SpeechLanguage == "" {
		cfg.SpeechLanguage = "en-IN"
	}
	h := &Handler{svc: svc, cfg: cfg, logger: logging.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) voice() Voice {
	return Voice{
		Name:           h.cfg.Voice,
		Language:       h.cfg.Language,
		SpeechLanguage: h.cfg.SpeechLanguage,
		ActionURL:      h.cfg.PublicBaseURL + TranscribePath,
	}
}

// Voice answers an inbound call with the greeting and opens a speech gather.
func (h *Handler) Voice(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "telephony.twilio.voice")
	defer span.End()

	if !h.verify(r) {
		h.metrics.ObserveWebhook("voice", "unauthorized")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		span.RecordError(errors.New("invalid twilio voice signature"))
		return
	}
	callSid := r.PostFormValue("CallSid")
	from := r.PostFormValue("From")
	to := r.PostFormValue("To")
	span.SetAttributes(
		attribute.String("receptionist.twilio.call_sid", callSid),
		attribute.String("receptionist.twilio.from", from),
	)

	h.svc.StartCall(ctx, callSid, from, to)
	h.logger.Info("inbound call", "call_sid", callSid, "from", from, "to", to)
	h.metrics.ObserveWebhook("voice", "ok")
	h.writeTwiML(w, h.voice().Prompt(h.svc.Greeting()))
}

// Transcribe handles one recognized utterance and speaks the reply. It always
// answers with TwiML so the call never drops on an internal failure.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "telephony.twilio.transcribe")
	defer span.End()

	if !h.verify(r) {
		h.metrics.ObserveWebhook("transcribe", "unauthorized")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		span.RecordError(errors.New("invalid twilio transcribe signature"))
		return
	}
	callSid := r.PostFormValue("CallSid")
	from := r.PostFormValue("From")
	speech := strings.TrimSpace(r.PostFormValue("SpeechResult"))
	span.SetAttributes(
		attribute.String("receptionist.twilio.call_sid", callSid),
		attribute.Int("receptionist.twilio.speech_len", len(speech)),
	)
	logger := h.logger.WithCall(callSid)
	v := h.voice()

	if speech == "" {
		h.metrics.ObserveWebhook("transcribe", "empty")
		h.writeTwiML(w, v.Prompt(RepromptText))
		return
	}

	history := append(h.priorTurns(ctx, logger, callSid), generation.Message{Role: generation.RoleUser, Content: speech})
	res, err := h.svc.HandleCall(ctx, receptionist.TurnRequest{History: history, CallerPhone: from, CallID: callSid})
	if err != nil {
		logger.Error("turn failed", "error", err)
		span.RecordError(err)
		h.metrics.ObserveWebhook("transcribe", "error")
		h.writeTwiML(w, v.Farewell(TechnicalIssueText))
		return
	}

	span.SetAttributes(
		attribute.String("receptionist.step", string(res.State.Step)),
		attribute.String("receptionist.source", string(res.Source)),
	)
	h.metrics.ObserveWebhook("transcribe", "ok")
	if res.ShouldEndCall {
		logger.Info("ending call", "step", res.State.Step)
		h.writeTwiML(w, v.Farewell(res.Utterance, h.svc.Goodbye()))
		return
	}
	h.writeTwiML(w, v.Prompt(res.Utterance))
}

// Status mirrors call status callbacks and tears down finished calls.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "telephony.twilio.status")
	defer span.End()

	if !h.verify(r) {
		h.metrics.ObserveWebhook("status", "unauthorized")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		span.RecordError(errors.New("invalid twilio status signature"))
		return
	}
	callSid := r.PostFormValue("CallSid")
	status := strings.ToLower(strings.TrimSpace(r.PostFormValue("CallStatus")))
	span.SetAttributes(
		attribute.String("receptionist.twilio.call_sid", callSid),
		attribute.String("receptionist.twilio.call_status", status),
	)

	if terminalStatuses[status] {
		h.svc.EndCall(ctx, callSid, r.PostFormValue("From"), status)
	} else if status != "" {
		h.svc.UpdateCallStatus(ctx, callSid, status)
	}
	h.metrics.ObserveWebhook("status", "ok")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) verify(r *http.Request) bool {
	if h.cfg.AuthToken == "" {
		return r.ParseForm() == nil
	}
	webhookURL := absoluteURL(r)
	if h.cfg.PublicBaseURL != "" {
		webhookURL = h.cfg.PublicBaseURL + r.URL.RequestURI()
	}
	return ValidateSignature(r, h.cfg.AuthToken, webhookURL)
}

// priorTurns loads the call's recent transcript as conversation history.
func (h *Handler) priorTurns(ctx context.Context, logger *logging.Logger, callSid string) []generation.Message {
	if h.history == nil || callSid == "" {
		return nil
	}
	entries, err := h.history.Transcript(ctx, callSid)
	if err != nil {
		logger.Warn("transcript unavailable", "error", err)
		return nil
	}
	if len(entries) > historyTurns {
		entries = entries[len(entries)-historyTurns:]
	}
	msgs := make([]generation.Message, 0, len(entries)+1)
	for _, e := range entries {
		msgs = append(msgs, generation.Message{Role: e.Role, Content: e.Text})
	}
	return msgs
}

func (h *Handler) writeTwiML(w http.ResponseWriter, doc Response) {
	body, err := doc.Marshal()
	if err != nil {
		h.logger.Error("twiml marshal failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
