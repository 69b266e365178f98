package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

const (
	redisSymptomsKey    = "receptionist:kb:symptoms"
	redisIntentsKey     = "receptionist:kb:intents"
	redisSuccessKey     = "receptionist:kb:success"
	redisLastLearnedKey = "receptionist:kb:last_learned"
)

// RedisBase stores the knowledge base in Redis hashes so learned entries
// survive restarts. HSETNX provides insert-if-absent across writers.
type RedisBase struct {
	client *redis.Client
	logger *logging.Logger
	now    func() time.Time
}

// NewRedisBase seeds the curated taxonomy without overwriting learned entries.
func NewRedisBase(ctx context.Context, client *redis.Client, logger *logging.Logger) (*RedisBase, error) {
	if client == nil {
		return nil, fmt.Errorf("knowledge: redis client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	b := &RedisBase{client: client, logger: logger, now: time.Now}
	if err := b.seed(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *RedisBase) seed(ctx context.Context) error {
	pipe := b.client.Pipeline()
	for symptom, dept := range seedSymptoms {
		pipe.HSetNX(ctx, redisSymptomsKey, symptom, dept)
	}
	for phrase, intent := range seedIntents {
		pipe.HSetNX(ctx, redisIntentsKey, phrase, string(intent))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("knowledge: seed redis: %w", err)
	}
	return nil
}

func (b *RedisBase) LookupDepartment(ctx context.Context, symptom string) string {
	dept, err := b.client.HGet(ctx, redisSymptomsKey, Normalize(symptom)).Result()
	if err != nil {
		if err != redis.Nil {
			b.logger.Warn("knowledge lookup failed", "error", err, "symptom", symptom)
		}
		return DefaultDepartment
	}
	return dept
}

func (b *RedisBase) LookupDoctor(department string) string {
	return DoctorFor(department)
}

func (b *RedisBase) Has(ctx context.Context, symptom string) bool {
	ok, err := b.client.HExists(ctx, redisSymptomsKey, Normalize(symptom)).Result()
	if err != nil {
		b.logger.Warn("knowledge exists check failed", "error", err, "symptom", symptom)
		return false
	}
	return ok
}

func (b *RedisBase) Symptoms(ctx context.Context) []string {
	keys, err := b.client.HKeys(ctx, redisSymptomsKey).Result()
	if err != nil {
		b.logger.Warn("knowledge symptom listing failed", "error", err)
		return nil
	}
	sortPhrases(keys)
	return keys
}

func (b *RedisBase) LearnIfAbsent(ctx context.Context, symptom, department string) bool {
	key := Normalize(symptom)
	if key == "" || department == "" {
		return false
	}
	set, err := b.client.HSetNX(ctx, redisSymptomsKey, key, department).Result()
	if err != nil {
		b.logger.Warn("knowledge learn failed", "error", err, "symptom", key)
		return false
	}
	if set {
		b.touch(ctx)
	}
	return set
}

func (b *RedisBase) LookupIntent(ctx context.Context, message string) (Intent, bool) {
	all, err := b.client.HGetAll(ctx, redisIntentsKey).Result()
	if err != nil {
		b.logger.Warn("intent lookup failed", "error", err)
		return "", false
	}
	phrases := make([]string, 0, len(all))
	for k := range all {
		phrases = append(phrases, k)
	}
	sortPhrases(phrases)
	return matchIntent(message, phrases, func(p string) Intent { return Intent(all[p]) })
}

func (b *RedisBase) LearnIntentIfAbsent(ctx context.Context, phrase string, intent Intent) bool {
	key := Normalize(phrase)
	if key == "" || intent == "" {
		return false
	}
	set, err := b.client.HSetNX(ctx, redisIntentsKey, key, string(intent)).Result()
	if err != nil {
		b.logger.Warn("intent learn failed", "error", err, "phrase", key)
		return false
	}
	if set {
		b.touch(ctx)
	}
	return set
}

func (b *RedisBase) RecordSuccess(ctx context.Context, symptom, department string) int64 {
	if symptom == "" || department == "" {
		return 0
	}
	count, err := b.client.HIncrBy(ctx, redisSuccessKey, successKey(Normalize(symptom), department), 1).Result()
	if err != nil {
		b.logger.Warn("success counter increment failed", "error", err, "symptom", symptom, "department", department)
		return 0
	}
	return count
}

func (b *RedisBase) Stats(ctx context.Context) Stats {
	var stats Stats
	pipe := b.client.Pipeline()
	symptoms := pipe.HLen(ctx, redisSymptomsKey)
	intents := pipe.HLen(ctx, redisIntentsKey)
	successes := pipe.HGetAll(ctx, redisSuccessKey)
	last := pipe.Get(ctx, redisLastLearnedKey)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		b.logger.Warn("knowledge stats failed", "error", err)
	}
	stats.TotalSymptoms = int(symptoms.Val())
	stats.TotalIntents = int(intents.Val())
	for key, raw := range successes.Val() {
		var count int64
		if _, err := fmt.Sscan(raw, &count); err != nil {
			continue
		}
		symptom, dept := splitSuccessKey(key)
		stats.SuccessfulMappings = append(stats.SuccessfulMappings, Mapping{Symptom: symptom, Department: dept, Count: count})
	}
	sortMappings(stats.SuccessfulMappings)
	if ts, err := time.Parse(time.RFC3339Nano, last.Val()); err == nil {
		stats.LastLearned = ts
	}
	return stats
}

func (b *RedisBase) touch(ctx context.Context) {
	if err := b.client.Set(ctx, redisLastLearnedKey, b.now().UTC().Format(time.RFC3339Nano), 0).Err(); err != nil {
		b.logger.Warn("knowledge last-learned update failed", "error", err)
	}
}
