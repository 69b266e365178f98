package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/hospital-receptionist/internal/calllog"
	appconfig "github.com/wolfman30/hospital-receptionist/internal/config"
	"github.com/wolfman30/hospital-receptionist/internal/knowledge"
	"github.com/wolfman30/hospital-receptionist/internal/patients"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

func TestBuildRedisClientDisabledWithoutAddr(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, logging.Discard(), true))
	assert.Nil(t, BuildRedisClient(context.Background(), nil, logging.Discard(), true))
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.Discard(), true)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), cfg, logging.Discard(), true))
}

func TestBuildKnowledgeBase(t *testing.T) {
	ctx := context.Background()

	kb, err := BuildKnowledgeBase(ctx, &appconfig.Config{KnowledgeBackend: "memory"}, nil, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &knowledge.MemoryBase{}, kb)

	kb, err = BuildKnowledgeBase(ctx, &appconfig.Config{KnowledgeBackend: "redis"}, nil, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &knowledge.MemoryBase{}, kb, "falls back without a client")

	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{KnowledgeBackend: "redis", RedisAddr: mr.Addr()}
	rdb := BuildRedisClient(ctx, cfg, logging.Discard(), true)
	require.NotNil(t, rdb)
	kb, err = BuildKnowledgeBase(ctx, cfg, rdb, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &knowledge.RedisBase{}, kb)

	_, err = BuildKnowledgeBase(ctx, nil, nil, nil)
	assert.Error(t, err)
}

func TestBuildStoresWithoutBackends(t *testing.T) {
	assert.IsType(t, &patients.MemoryStore{}, BuildPatientStore(nil, logging.Discard()))
	assert.IsType(t, &calllog.MemoryStore{}, BuildCallLog(&appconfig.Config{}, nil))
}

func TestConnectPostgresEmptyURL(t *testing.T) {
	pool, err := ConnectPostgres(context.Background(), " ")
	assert.NoError(t, err)
	assert.Nil(t, pool)
}

func TestBuildGenerationClient(t *testing.T) {
	ctx := context.Background()

	client, closeFn, err := BuildGenerationClient(ctx, &appconfig.Config{LLMProvider: "gemini"}, logging.Discard())
	require.NoError(t, err)
	assert.Nil(t, client)
	require.NotNil(t, closeFn)
	closeFn()

	_, _, err = BuildGenerationClient(ctx, &appconfig.Config{LLMProvider: "carrier-pigeon"}, logging.Discard())
	assert.Error(t, err)

	_, _, err = BuildGenerationClient(ctx, nil, logging.Discard())
	assert.Error(t, err)
}
