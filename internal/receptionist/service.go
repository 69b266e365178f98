// Package receptionist runs one caller turn end to end: pre-pass, dialogue
// transition, generation with fallback, and the out-of-band mirrors.
package receptionist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/hospital-receptionist/internal/calllog"
	"github.com/wolfman30/hospital-receptionist/internal/composer"
	"github.com/wolfman30/hospital-receptionist/internal/dialogue"
	"github.com/wolfman30/hospital-receptionist/internal/extraction"
	"github.com/wolfman30/hospital-receptionist/internal/fallback"
	"github.com/wolfman30/hospital-receptionist/internal/generation"
	"github.com/wolfman30/hospital-receptionist/internal/knowledge"
	"github.com/wolfman30/hospital-receptionist/internal/live"
	"github.com/wolfman30/hospital-receptionist/internal/observability/metrics"
	"github.com/wolfman30/hospital-receptionist/internal/patients"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("receptionist/core")

const defaultTimeout = 10 * time.Second

// closingPhrases in a reply end the call even before the flow completes.
var closingPhrases = []string{"goodbye", "thank you for calling", "appointment confirmed"}

// Publisher receives live dashboard events.
type Publisher interface {
	Publish(evt live.Event)
}

type Service struct {
	kb        knowledge.Base
	store     *dialogue.Store
	machine   *dialogue.Machine
	composer  *composer.Composer
	client    generation.Client
	responder *fallback.Responder
	timeout   time.Duration
	slots     dialogue.SlotSource

	hub      Publisher
	calls    calllog.Store
	bookings patients.BookingRecorder
	patients patients.Repository
	metrics  *metrics.ReceptionistMetrics
	logger   *logging.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithClient sets the generation client. A nil client means every turn is
// answered by the fallback responder.
func WithClient(c generation.Client) Option {
	return func(s *Service) { s.client = c }
}

func WithComposer(c *composer.Composer) Option {
	return func(s *Service) {
		if c != nil {
			s.composer = c
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithSlots(src dialogue.SlotSource) Option {
	return func(s *Service) { s.slots = src }
}

func WithResponder(r *fallback.Responder) Option {
	return func(s *Service) {
		if r != nil {
			s.responder = r
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.hub = p }
}

func WithCallLog(c calllog.Store) Option {
	return func(s *Service) { s.calls = c }
}

func WithBookingRecorder(b patients.BookingRecorder) Option {
	return func(s *Service) { s.bookings = b }
}

func WithPatients(r patients.Repository) Option {
	return func(s *Service) { s.patients = r }
}

func WithMetrics(m *metrics.ReceptionistMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(kb knowledge.Base, opts ...Option) *Service {
	if kb == nil {
		panic("receptionist: knowledge base cannot be nil")
	}
	s := &Service{
		kb:       kb,
		store:    dialogue.NewStore(),
		composer: composer.New("", ""),
		timeout:  defaultTimeout,
		logger:   logging.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.responder == nil {
		s.responder = fallback.NewResponder(uint64(s.now().UnixNano()), s.logger)
	}
	if s.slots == nil {
		s.slots = dialogue.RandomSlots(uint64(s.now().UnixNano()))
	}
	extractorOpts := []extraction.Option{extraction.WithLogger(s.logger)}
	if s.metrics != nil {
		extractorOpts = append(extractorOpts, extraction.WithLearnObserver(s.metrics))
	}
	s.machine = dialogue.NewMachine(extraction.New(kb, extractorOpts...), s.slots, s.logger)
	return s
}

// Conversations exposes the state store, e.g. for the idle sweeper.
func (s *Service) Conversations() *dialogue.Store {
	return s.store
}

func (s *Service) Greeting() string { return s.composer.Greeting() }

func (s *Service) Goodbye() string { return s.composer.Goodbye() }

// HandleCall resolves the caller's patient record when none was supplied and
// then handles the turn. Lookup failures other than not-found are returned.
func (s *Service) HandleCall(ctx context.Context, req TurnRequest) (TurnResult, error) {
	if req.Patient == nil && s.patients != nil && strings.TrimSpace(req.CallerPhone) != "" {
		p, err := s.patients.GetByPhone(ctx, req.CallerPhone)
		switch {
		case err == nil:
			req.Patient = p
		case errors.Is(err, patients.ErrPatientNotFound):
		default:
			return TurnResult{}, fmt.Errorf("receptionist: patient lookup: %w", err)
		}
	}
	return s.HandleUtterance(ctx, req)
}

// HandleUtterance never fails: generation problems are answered by the
// fallback responder. The error return is reserved for callers that wrap it.
func (s *Service) HandleUtterance(ctx context.Context, req TurnRequest) (TurnResult, error) {
	ctx, span := tracer.Start(ctx, "receptionist.turn")
	defer span.End()

	key := dialogue.Key(req.CallID, req.CallerPhone)
	utterance := lastUserUtterance(req.History)
	st := s.store.Begin(key)
	logger := s.logger.WithCall(key)
	span.SetAttributes(attribute.String("call.key", key), attribute.String("dialogue.step_in", string(st.Step)))

	if sc := extraction.Prepass(utterance); sc.Fired() {
		result := TurnResult{
			Utterance: sc.Utterance,
			State:     st,
			Source:    shortcutSource(sc.Kind),
			Timestamp: s.now().UTC(),
		}
		logger.Info("turn short-circuited", "kind", sc.Kind, "match", sc.Match, "step", st.Step)
		s.metrics.ObserveShortcut(string(sc.Kind))
		s.finishTurn(ctx, req, utterance, result)
		span.SetAttributes(attribute.String("turn.source", string(result.Source)))
		return result, nil
	}

	next, tr := s.machine.Advance(ctx, st, utterance)
	s.store.Save(key, next)
	if tr.Changed() {
		logger.Info("dialogue transition", "from", tr.From, "to", tr.To, "reason", tr.Reason)
	}
	if tr.Completed {
		s.metrics.ObserveBooking(next.Department)
		s.recordBooking(ctx, logger, req, next)
	}

	text, source, reason := s.reply(ctx, logger, next, req)
	result := TurnResult{
		Utterance:      text,
		ShouldEndCall:  next.Step == dialogue.StepComplete || containsClosing(text),
		State:          next,
		Source:         source,
		FallbackReason: reason,
		Timestamp:      s.now().UTC(),
	}
	span.SetAttributes(
		attribute.String("dialogue.step", string(next.Step)),
		attribute.String("turn.source", string(source)),
		attribute.Bool("turn.end_call", result.ShouldEndCall),
	)
	s.finishTurn(ctx, req, utterance, result)
	return result, nil
}

// reply generates the assistant utterance, falling back without retry.
func (s *Service) reply(ctx context.Context, logger *logging.Logger, st dialogue.State, req TurnRequest) (string, Source, fallback.Reason) {
	if s.client == nil {
		return s.fallback(req.History, fallback.ReasonNoAPIKey)
	}
	genReq := s.composer.Compose(st, req.History, req.Patient)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	started := s.now()
	resp, err := s.client.Complete(genCtx, genReq)
	elapsed := s.now().Sub(started).Seconds()

	switch {
	case err == nil && strings.TrimSpace(resp.Text) != "":
		s.metrics.ObserveGenerationLatency("ok", elapsed)
		return composer.Clean(resp.Text), SourceGeneration, ""
	case err == nil, errors.Is(err, generation.ErrEmptyResponse):
		s.metrics.ObserveGenerationLatency("invalid", elapsed)
		logger.Warn("generation returned no usable text", "error", err)
		return s.fallback(req.History, fallback.ReasonInvalidResponse)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded):
		s.metrics.ObserveGenerationLatency("timeout", elapsed)
		logger.Warn("generation timed out", "timeout", s.timeout.String())
		return s.fallback(req.History, fallback.ReasonTimeout)
	default:
		s.metrics.ObserveGenerationLatency("error", elapsed)
		logger.Warn("generation failed", "error", err)
		return s.fallback(req.History, fallback.ReasonAPIError)
	}
}

func (s *Service) fallback(history []generation.Message, reason fallback.Reason) (string, Source, fallback.Reason) {
	s.metrics.ObserveFallback(string(reason))
	resp := s.responder.Respond(history, reason)
	return resp.Text, SourceFallback, reason
}

func (s *Service) recordBooking(ctx context.Context, logger *logging.Logger, req TurnRequest, st dialogue.State) {
	if s.bookings == nil {
		return
	}
	appt, err := s.bookings.RecordBooking(ctx, patients.Booking{
		CallID:     req.CallID,
		Phone:      req.CallerPhone,
		Name:       st.Name,
		Age:        st.Age,
		Symptom:    st.Symptom,
		Department: st.Department,
		Doctor:     st.Doctor,
		Slot:       st.ConfirmedSlot,
	})
	if err != nil {
		logger.Warn("failed to record booking", "error", err)
		return
	}
	logger.Info("booking recorded", "appointment_id", appt.ID.String(), "department", appt.Department, "slot", appt.Slot)
}

// finishTurn mirrors the exchange to the live hub and call log. Both are
// best-effort.
func (s *Service) finishTurn(ctx context.Context, req TurnRequest, utterance string, result TurnResult) {
	s.metrics.ObserveTurn(string(result.Source), string(result.State.Step))
	s.metrics.SetActiveConversations(s.store.Len())

	callID := req.CallID
	if s.hub != nil {
		if utterance != "" {
			s.hub.Publish(live.Event{Type: live.EventConversationMessage, CallID: callID, Timestamp: result.Timestamp,
				Data: map[string]any{"role": generation.RoleUser, "text": utterance}})
		}
		s.hub.Publish(live.Event{Type: live.EventConversationMessage, CallID: callID, Timestamp: result.Timestamp,
			Data: map[string]any{
				"role":          generation.RoleAssistant,
				"text":          result.Utterance,
				"step":          string(result.State.Step),
				"source":        string(result.Source),
				"shouldEndCall": result.ShouldEndCall,
			}})
	}
	if s.calls == nil || callID == "" {
		return
	}
	if utterance != "" {
		if err := s.calls.AppendTurn(ctx, callID, calllog.Entry{Role: generation.RoleUser, Text: utterance, Step: string(result.State.Step), Timestamp: result.Timestamp}); err != nil {
			s.logger.Warn("call log append failed", "error", err, "call_id", callID)
		}
	}
	if err := s.calls.AppendTurn(ctx, callID, calllog.Entry{Role: generation.RoleAssistant, Text: result.Utterance, Step: string(result.State.Step), Source: string(result.Source), Timestamp: result.Timestamp}); err != nil {
		s.logger.Warn("call log append failed", "error", err, "call_id", callID)
	}
}

// StartCall logs a new inbound call and announces it to dashboards.
func (s *Service) StartCall(ctx context.Context, callID, from, to string) {
	if s.calls != nil && callID != "" {
		if err := s.calls.StartCall(ctx, calllog.Call{CallID: callID, From: from, To: to}); err != nil {
			s.logger.Warn("call log start failed", "error", err, "call_id", callID)
		}
	}
	if s.hub != nil {
		s.hub.Publish(live.Event{Type: live.EventCallIncoming, CallID: callID, Timestamp: s.now().UTC(),
			Data: map[string]any{"from": from, "to": to}})
	}
}

// UpdateCallStatus mirrors a non-terminal provider status.
func (s *Service) UpdateCallStatus(ctx context.Context, callID, status string) {
	if s.calls != nil && callID != "" {
		if err := s.calls.UpdateStatus(ctx, callID, status); err != nil {
			s.logger.Warn("call log status failed", "error", err, "call_id", callID)
		}
	}
	if s.hub != nil {
		s.hub.Publish(live.Event{Type: live.EventCallStatus, CallID: callID, Timestamp: s.now().UTC(),
			Data: map[string]any{"status": status}})
	}
}

// EndCall drops the conversation state for the call and closes its log.
// The outcome is "booked" when the conversation had reached completion.
func (s *Service) EndCall(ctx context.Context, callID, callerPhone, status string) bool {
	key := dialogue.Key(callID, callerPhone)
	outcome := status
	if st, ok := s.store.Get(key); ok && st.Step == dialogue.StepComplete {
		outcome = "booked"
	}
	existed := s.store.Delete(key)
	s.metrics.SetActiveConversations(s.store.Len())
	if s.calls != nil && callID != "" {
		if err := s.calls.EndCall(ctx, callID, outcome); err != nil {
			s.logger.Warn("call log end failed", "error", err, "call_id", callID)
		}
	}
	if s.hub != nil {
		s.hub.Publish(live.Event{Type: live.EventCallEnded, CallID: callID, Timestamp: s.now().UTC(),
			Data: map[string]any{"status": status, "outcome": outcome}})
	}
	s.logger.Info("call ended", "call_key", key, "status", status, "outcome", outcome, "had_state", existed)
	return existed
}

func (s *Service) Stats(ctx context.Context) Stats {
	kb := s.kb.Stats(ctx)
	return Stats{
		TotalSymptoms:       kb.TotalSymptoms,
		TotalIntents:        kb.TotalIntents,
		SuccessfulMappings:  kb.SuccessfulMappings,
		ActiveConversations: s.store.Len(),
		LastLearned:         kb.LastLearned,
	}
}

func lastUserUtterance(history []generation.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == generation.RoleUser {
			return strings.TrimSpace(history[i].Content)
		}
	}
	return ""
}

func containsClosing(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range closingPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func shortcutSource(kind extraction.ShortcutKind) Source {
	switch kind {
	case extraction.ShortcutEmergency:
		return SourceEmergency
	case extraction.ShortcutLanguage:
		return SourceLanguage
	default:
		return SourceOffTopic
	}
}
