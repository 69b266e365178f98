package knowledge

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

func newTestRedisBase(t *testing.T) (*RedisBase, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	kb, err := NewRedisBase(context.Background(), client, logging.Discard())
	require.NoError(t, err)
	return kb, mr, client
}

func TestRedisBaseSeedsAndLooksUp(t *testing.T) {
	ctx := context.Background()
	kb, _, _ := newTestRedisBase(t)

	assert.Equal(t, "Cardiology", kb.LookupDepartment(ctx, "Chest Pain"))
	assert.Equal(t, DefaultDepartment, kb.LookupDepartment(ctx, "unknown thing"))
	assert.True(t, kb.Has(ctx, "migraine"))
	assert.Equal(t, len(seedSymptoms), kb.Stats(ctx).TotalSymptoms)
	assert.Equal(t, len(seedIntents), kb.Stats(ctx).TotalIntents)
}

func TestRedisBaseReseedKeepsLearnedEntries(t *testing.T) {
	ctx := context.Background()
	kb, _, client := newTestRedisBase(t)

	require.True(t, kb.LearnIfAbsent(ctx, "knee clicking", "Orthopedics"))
	require.NoError(t, client.HSet(ctx, redisSymptomsKey, "fever", "Pediatrics").Err())

	again, err := NewRedisBase(ctx, client, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, "Orthopedics", again.LookupDepartment(ctx, "knee clicking"))
	assert.Equal(t, "Pediatrics", again.LookupDepartment(ctx, "fever"))
}

func TestRedisBaseLearnIdempotent(t *testing.T) {
	ctx := context.Background()
	kb, _, client := newTestRedisBase(t)

	assert.True(t, kb.LearnIfAbsent(ctx, "elbow click", "Orthopedics"))
	assert.False(t, kb.LearnIfAbsent(ctx, "elbow click", "Dermatology"))

	val, err := client.HGet(ctx, redisSymptomsKey, "elbow click").Result()
	require.NoError(t, err)
	assert.Equal(t, "Orthopedics", val)
	assert.False(t, kb.Stats(ctx).LastLearned.IsZero())
}

func TestRedisBaseIntentsAndSuccesses(t *testing.T) {
	ctx := context.Background()
	kb, _, _ := newTestRedisBase(t)

	intent, ok := kb.LookupIntent(ctx, "I'd like to book something")
	require.True(t, ok)
	assert.Equal(t, IntentBooking, intent)

	assert.True(t, kb.LearnIntentIfAbsent(ctx, "meet doctor tomorrow", IntentBooking))
	assert.False(t, kb.LearnIntentIfAbsent(ctx, "meet doctor tomorrow", IntentReschedule))

	assert.Equal(t, int64(1), kb.RecordSuccess(ctx, "chest pain", "Cardiology"))
	assert.Equal(t, int64(2), kb.RecordSuccess(ctx, "chest pain", "Cardiology"))

	stats := kb.Stats(ctx)
	require.Len(t, stats.SuccessfulMappings, 1)
	assert.Equal(t, Mapping{Symptom: "chest pain", Department: "Cardiology", Count: 2}, stats.SuccessfulMappings[0])
}

func TestRedisBaseDegradesWhenUnavailable(t *testing.T) {
	ctx := context.Background()
	kb, mr, _ := newTestRedisBase(t)
	mr.Close()

	assert.Equal(t, DefaultDepartment, kb.LookupDepartment(ctx, "chest pain"))
	assert.False(t, kb.LearnIfAbsent(ctx, "new thing", "ENT"))
	assert.Empty(t, kb.Symptoms(ctx))
	_, ok := kb.LookupIntent(ctx, "book appointment")
	assert.False(t, ok)
}

func TestNewRedisBaseRequiresClient(t *testing.T) {
	_, err := NewRedisBase(context.Background(), nil, nil)
	assert.Error(t, err)
}
