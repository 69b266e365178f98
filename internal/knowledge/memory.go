package knowledge

import (
	"context"
	"sync"
	"time"
)

// MemoryBase is a process-local Base guarded by a RWMutex.
type MemoryBase struct {
	mu          sync.RWMutex
	symptoms    map[string]string
	intents     map[string]Intent
	successes   map[string]int64
	lastLearned time.Time
	now         func() time.Time
}

// NewMemoryBase returns a Base pre-loaded with the curated taxonomy.
func NewMemoryBase() *MemoryBase {
	return &MemoryBase{
		symptoms:  SeedSymptoms(),
		intents:   SeedIntents(),
		successes: make(map[string]int64),
		now:       time.Now,
	}
}

func (m *MemoryBase) LookupDepartment(_ context.Context, symptom string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if dept, ok := m.symptoms[Normalize(symptom)]; ok {
		return dept
	}
	return DefaultDepartment
}

func (m *MemoryBase) LookupDoctor(department string) string {
	return DoctorFor(department)
}

func (m *MemoryBase) Has(_ context.Context, symptom string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.symptoms[Normalize(symptom)]
	return ok
}

func (m *MemoryBase) Symptoms(_ context.Context) []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.symptoms))
	for k := range m.symptoms {
		out = append(out, k)
	}
	m.mu.RUnlock()
	sortPhrases(out)
	return out
}

func (m *MemoryBase) LearnIfAbsent(_ context.Context, symptom, department string) bool {
	key := Normalize(symptom)
	if key == "" || department == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.symptoms[key]; ok {
		return false
	}
	m.symptoms[key] = department
	m.lastLearned = m.now().UTC()
	return true
}

func (m *MemoryBase) LookupIntent(_ context.Context, message string) (Intent, bool) {
	m.mu.RLock()
	phrases := make([]string, 0, len(m.intents))
	snapshot := make(map[string]Intent, len(m.intents))
	for k, v := range m.intents {
		phrases = append(phrases, k)
		snapshot[k] = v
	}
	m.mu.RUnlock()
	sortPhrases(phrases)
	return matchIntent(message, phrases, func(p string) Intent { return snapshot[p] })
}

func (m *MemoryBase) LearnIntentIfAbsent(_ context.Context, phrase string, intent Intent) bool {
	key := Normalize(phrase)
	if key == "" || intent == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.intents[key]; ok {
		return false
	}
	m.intents[key] = intent
	m.lastLearned = m.now().UTC()
	return true
}

func (m *MemoryBase) RecordSuccess(_ context.Context, symptom, department string) int64 {
	if symptom == "" || department == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := successKey(Normalize(symptom), department)
	m.successes[key]++
	return m.successes[key]
}

func (m *MemoryBase) Stats(_ context.Context) Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mappings := make([]Mapping, 0, len(m.successes))
	for key, count := range m.successes {
		symptom, dept := splitSuccessKey(key)
		mappings = append(mappings, Mapping{Symptom: symptom, Department: dept, Count: count})
	}
	sortMappings(mappings)
	return Stats{
		TotalSymptoms:      len(m.symptoms),
		TotalIntents:       len(m.intents),
		SuccessfulMappings: mappings,
		LastLearned:        m.lastLearned,
	}
}
