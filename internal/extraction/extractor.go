package extraction

import (
	"context"
	"strings"

	"github.com/wolfman30/hospital-receptionist/internal/knowledge"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var extractionTracer = otel.Tracer("receptionist/extraction")

// LearnObserver is notified whenever the knowledge base gains an entry.
type LearnObserver interface {
	ObserveLearned(kind string)
}

// Extractor runs the knowledge-backed extractors (symptoms and intents).
// The remaining extractors are package-level pure functions.
type Extractor struct {
	kb         knowledge.Base
	strategies []SymptomStrategy
	observer   LearnObserver
	logger     *logging.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStrategies replaces the default symptom cascade.
func WithStrategies(strategies []SymptomStrategy) Option {
	return func(e *Extractor) {
		if len(strategies) > 0 {
			e.strategies = strategies
		}
	}
}

// WithLearnObserver reports learning events, typically to metrics.
func WithLearnObserver(o LearnObserver) Option {
	return func(e *Extractor) { e.observer = o }
}

// WithLogger sets the logger used for learning events.
func WithLogger(l *logging.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(kb knowledge.Base, opts ...Option) *Extractor {
	if kb == nil {
		panic("extraction: knowledge base cannot be nil")
	}
	e := &Extractor{
		kb:         kb,
		strategies: DefaultSymptomStrategies(),
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Knowledge exposes the backing knowledge base.
func (e *Extractor) Knowledge() knowledge.Base {
	return e.kb
}

// Symptoms returns de-duplicated findings ordered by position in msg.
// The first strategy that yields anything wins. Unknown phrases are
// learned with their guessed department.
func (e *Extractor) Symptoms(ctx context.Context, msg string) []Finding {
	ctx, span := extractionTracer.Start(ctx, "extraction.symptoms")
	defer span.End()

	findings, strategy := e.run(ctx, msg)
	span.SetAttributes(
		attribute.Int("symptom.count", len(findings)),
		attribute.String("symptom.strategy", strategy),
	)
	for i, f := range findings {
		if f.Known {
			continue
		}
		if e.kb.LearnIfAbsent(ctx, f.Symptom, f.Department) {
			e.logger.Info("learned new symptom", "symptom", f.Symptom, "department", f.Department, "strategy", strategy)
			if e.observer != nil {
				e.observer.ObserveLearned("symptom")
			}
		} else {
			findings[i].Department = e.kb.LookupDepartment(ctx, f.Symptom)
		}
		findings[i].Known = true
	}
	return findings
}

// PrimarySymptom returns the first symptom found in msg.
func (e *Extractor) PrimarySymptom(ctx context.Context, msg string) (Finding, bool) {
	findings := e.Symptoms(ctx, msg)
	if len(findings) == 0 {
		return Finding{}, false
	}
	return findings[0], true
}

// HasSymptom reports whether msg contains a symptom without learning it.
func (e *Extractor) HasSymptom(ctx context.Context, msg string) bool {
	findings, _ := e.run(ctx, msg)
	return len(findings) > 0
}

func (e *Extractor) run(ctx context.Context, msg string) ([]Finding, string) {
	raw := strings.ToLower(strings.TrimSpace(msg))
	if raw == "" {
		return nil, ""
	}
	in := Input{Raw: raw, Text: padded(raw), Known: e.kb.Symptoms(ctx)}
	for _, s := range e.strategies {
		found := s.Find(ctx, in, e.kb)
		if len(found) == 0 {
			continue
		}
		sortFindings(found)
		return dedupe(found), s.Name
	}
	return nil, ""
}

func dedupe(fs []Finding) []Finding {
	seen := make(map[string]struct{}, len(fs))
	out := fs[:0]
	for _, f := range fs {
		if _, ok := seen[f.Symptom]; ok {
			continue
		}
		seen[f.Symptom] = struct{}{}
		out = append(out, f)
	}
	return out
}

// bookingCues mark a message as booking-adjacent for intent learning.
var bookingCues = []string{"book", "appointment", "schedule", "see doctor", "see a doctor", "meet doctor", "want to see"}

// DetectIntent matches msg against the intent dictionary. Unmatched
// booking-adjacent messages are learned as booking requests, but only when
// they carry no symptom, so complaints are never filed as admin requests.
func (e *Extractor) DetectIntent(ctx context.Context, msg string) (knowledge.Intent, bool) {
	ctx, span := extractionTracer.Start(ctx, "extraction.intent")
	defer span.End()

	if intent, ok := e.kb.LookupIntent(ctx, msg); ok {
		span.SetAttributes(attribute.String("intent", string(intent)))
		return intent, true
	}
	lower := knowledge.Normalize(msg)
	cue := false
	for _, c := range bookingCues {
		if strings.Contains(lower, c) {
			cue = true
			break
		}
	}
	if !cue || e.HasSymptom(ctx, msg) {
		return "", false
	}
	if e.kb.LearnIntentIfAbsent(ctx, lower, knowledge.IntentBooking) {
		e.logger.Info("learned new intent", "phrase", lower, "intent", knowledge.IntentBooking)
		if e.observer != nil {
			e.observer.ObserveLearned("intent")
		}
	}
	span.SetAttributes(attribute.String("intent", string(knowledge.IntentBooking)), attribute.Bool("intent.learned", true))
	return knowledge.IntentBooking, true
}
