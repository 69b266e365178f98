package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/hospital-receptionist/internal/calllog"
	appconfig "github.com/wolfman30/hospital-receptionist/internal/config"
	"github.com/wolfman30/hospital-receptionist/internal/generation"
	"github.com/wolfman30/hospital-receptionist/internal/knowledge"
	"github.com/wolfman30/hospital-receptionist/internal/patients"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

// PatientStore reads caller history and records bookings.
type PatientStore interface {
	patients.Repository
	patients.BookingRecorder
}

// BuildKnowledgeBase picks the Redis-backed base when configured and
// reachable, otherwise the in-memory one.
func BuildKnowledgeBase(ctx context.Context, cfg *appconfig.Config, rdb *redis.Client, logger *logging.Logger) (knowledge.Base, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.KnowledgeBackend != "redis" {
		logger.Info("using in-memory knowledge base")
		return knowledge.NewMemoryBase(), nil
	}
	if rdb == nil {
		logger.Warn("KNOWLEDGE_BACKEND=redis but redis is unavailable; using in-memory knowledge base")
		return knowledge.NewMemoryBase(), nil
	}
	kb, err := knowledge.NewRedisBase(ctx, rdb, logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: redis knowledge base: %w", err)
	}
	logger.Info("using redis knowledge base", "addr", cfg.RedisAddr)
	return kb, nil
}

// BuildPatientStore returns the Postgres store when a pool is available.
func BuildPatientStore(pool *pgxpool.Pool, logger *logging.Logger) PatientStore {
	if logger == nil {
		logger = logging.Default()
	}
	if pool == nil {
		logger.Info("DATABASE_URL not set; patient records are kept in memory")
		return patients.NewMemoryStore()
	}
	return patients.NewPostgresStore(pool)
}

// BuildCallLog keeps call records in Redis when available.
func BuildCallLog(cfg *appconfig.Config, rdb *redis.Client) calllog.Store {
	if rdb == nil {
		return calllog.NewMemoryStore()
	}
	return calllog.NewRedisStore(rdb, cfg.CallLogTTL)
}

// BuildGenerationClient returns the configured provider. Missing credentials
// yield a nil client so every turn is answered by the fallback responder.
// The returned close func is never nil.
func BuildGenerationClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (generation.Client, func(), error) {
	noop := func() {}
	if cfg == nil {
		return nil, noop, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.LLMProvider {
	case "bedrock":
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		client, err := generation.NewBedrockClientFromConfig(awsCfg, cfg.BedrockModelID)
		if err != nil {
			logger.Warn("bedrock generation disabled; using fallback responses", "error", err)
			return nil, noop, nil
		}
		logger.Info("using bedrock generation", "model", cfg.BedrockModelID, "region", cfg.AWSRegion)
		return client, noop, nil

	case "gemini", "":
		client, err := generation.NewGeminiClient(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
		if errors.Is(err, generation.ErrMissingCredentials) {
			logger.Warn("GOOGLE_API_KEY not set; using fallback responses")
			return nil, noop, nil
		}
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		logger.Info("using gemini generation", "model", cfg.GeminiModel)
		return client, func() { _ = client.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}
