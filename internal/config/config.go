package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// Persona
	HospitalName  string
	AssistantName string

	// Generation
	LLMProvider    string
	GoogleAPIKey   string
	GeminiModel    string
	BedrockModelID string
	LLMTimeout     time.Duration

	// Conversation lifecycle
	StateIdleTimeout   time.Duration
	StateSweepInterval time.Duration

	// Knowledge base
	KnowledgeBackend string

	// Twilio voice
	TwilioWebhookSecret string
	TwilioTTSVoice      string
	TwilioTTSLanguage   string
	TwilioSpeechLang    string
	TwilioSkipSignature bool

	AdminJWTSecret     string
	CORSAllowedOrigins []string
	APIRateLimit       float64
	APIRateBurst       int

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	CallLogTTL    time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		HospitalName:  getEnv("HOSPITAL_NAME", "Aditya Hospital"),
		AssistantName: getEnv("ASSISTANT_NAME", "Clara"),

		LLMProvider:    strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "gemini"))),
		GoogleAPIKey:   firstNonEmpty(getEnv("GOOGLE_API_KEY", ""), getEnv("GEMINI_API_KEY", "")),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 10*time.Second),

		StateIdleTimeout:   getEnvAsDuration("STATE_IDLE_TIMEOUT", 30*time.Minute),
		StateSweepInterval: getEnvAsDuration("STATE_SWEEP_INTERVAL", 10*time.Minute),

		KnowledgeBackend: strings.ToLower(strings.TrimSpace(getEnv("KNOWLEDGE_BACKEND", "memory"))),

		TwilioWebhookSecret: getEnv("TWILIO_WEBHOOK_SECRET", getEnv("TWILIO_AUTH_TOKEN", "")),
		TwilioTTSVoice:      getEnv("TWILIO_TTS_VOICE", "Polly.Amy"),
		TwilioTTSLanguage:   getEnv("TWILIO_TTS_LANG", "en-GB"),
		TwilioSpeechLang:    getEnv("TWILIO_SPEECH_LANG", "en-IN"),
		TwilioSkipSignature: getEnvAsBool("TWILIO_SKIP_SIGNATURE", false),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		APIRateLimit:       getEnvAsFloat("API_RATE_LIMIT", 10),
		APIRateBurst:       getEnvAsInt("API_RATE_BURST", 20),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		CallLogTTL:    getEnvAsDuration("CALL_LOG_TTL", 24*time.Hour),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
