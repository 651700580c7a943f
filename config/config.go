package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ReplayStoreMemory   = "memory"
	ReplayStoreRedis    = "redis"
	ReplayStorePostgres = "postgres"
	ReplayStoreDynamoDB = "dynamodb"
)

// Config holds all configuration for the service.
type Config struct {
	Port string
	Env  string

	// Stripe credentials, resolved lazily.
	StripeMode          *Credential
	StripeTestSecretKey *Credential
	StripeLiveSecretKey *Credential
	StripeWebhookSecret *Credential

	WebhookPath      string
	WebhookTolerance time.Duration
	MaxBodyBytes     int64
	ReplayTTL        time.Duration
	ReplayStore      string

	RedisURL string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	DynamoDBReplayTable string

	SNSEventsTopicARN        string
	KafkaBrokers             []string
	KafkaEventsTopic         string
	EventDestinationQueueURL string

	JWTSecret          string
	RateLimitPerMinute int
	RequestTimeout     time.Duration
	ImageURLExpiry     time.Duration

	AWSUseSecrets     bool
	StripeSecretsName string
}

// LoadConfig reads configuration from the environment, after loading a .env
// file when one is present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8088"),
		Env:                 getEnv("APP_ENV", "development"),
		StripeMode:          Lazy(func() string { return getEnv("STRIPE_MODE", "test") }),
		StripeTestSecretKey: FromEnv("STRIPE_TEST_SECRET_KEY"),
		StripeLiveSecretKey: FromEnv("STRIPE_LIVE_SECRET_KEY"),
		StripeWebhookSecret: FromEnv("STRIPE_WEBHOOK_SECRET"),

		WebhookPath:  getEnv("WEBHOOK_PATH", "/stripe/webhook"),
		ReplayStore:  strings.ToLower(getEnv("REPLAY_STORE", ReplayStoreMemory)),
		RedisURL:     os.Getenv("REDIS_URL"),
		MaxBodyBytes: 1 << 20,

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),

		DynamoDBReplayTable: os.Getenv("DYNAMODB_REPLAY_TABLE"),

		SNSEventsTopicARN:        os.Getenv("SNS_EVENTS_TOPIC_ARN"),
		KafkaBrokers:             splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaEventsTopic:         os.Getenv("KAFKA_EVENTS_TOPIC"),
		EventDestinationQueueURL: os.Getenv("EVENT_DESTINATION_QUEUE_URL"),

		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		AWSUseSecrets:     os.Getenv("AWS_USE_SECRETS") == "true",
		StripeSecretsName: getEnv("STRIPE_SECRETS_NAME", "stripe-bridge/STRIPE_KEYS"),
	}

	var err error
	if cfg.WebhookTolerance, err = getDuration("WEBHOOK_TOLERANCE", 300*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReplayTTL, err = getDuration("REPLAY_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ImageURLExpiry, err = getDuration("IMAGE_URL_EXPIRY", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 600); err != nil {
		return nil, err
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_BODY_BYTES %q", v)
		}
		cfg.MaxBodyBytes = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	if c.WebhookTolerance <= 0 {
		return fmt.Errorf("WEBHOOK_TOLERANCE must be positive")
	}
	if c.ReplayTTL <= 0 {
		return fmt.Errorf("REPLAY_TTL must be positive")
	}
	if !strings.HasPrefix(c.WebhookPath, "/") {
		return fmt.Errorf("WEBHOOK_PATH must start with /")
	}

	switch c.ReplayStore {
	case ReplayStoreMemory:
	case ReplayStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis replay store")
		}
	case ReplayStorePostgres:
		if c.PostgresUser == "" || c.PostgresPassword == "" || c.PostgresDB == "" || c.PostgresHost == "" {
			return fmt.Errorf("database config incomplete for the postgres replay store")
		}
	case ReplayStoreDynamoDB:
		if c.DynamoDBReplayTable == "" {
			return fmt.Errorf("DYNAMODB_REPLAY_TABLE is required for the dynamodb replay store")
		}
	default:
		return fmt.Errorf("unknown REPLAY_STORE %q", c.ReplayStore)
	}

	if c.KafkaEventsTopic != "" && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_EVENTS_TOPIC is set")
	}
	return nil
}

// UseSecretsManager makes the Stripe credentials resolve from a JSON secret
// instead of the environment. The secret holds the same keys as the env vars.
func (c *Config) UseSecretsManager(reader SecretReader) {
	c.StripeTestSecretKey = FromSecret(reader, c.StripeSecretsName, "STRIPE_TEST_SECRET_KEY")
	c.StripeLiveSecretKey = FromSecret(reader, c.StripeSecretsName, "STRIPE_LIVE_SECRET_KEY")
	c.StripeWebhookSecret = FromSecret(reader, c.StripeSecretsName, "STRIPE_WEBHOOK_SECRET")
}

// PostgresDSN builds the gorm/pgx connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone,
	)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d, nil
	}
	// bare integers are seconds
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, val)
	}
	return time.Duration(secs) * time.Second, nil
}

func getInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, val)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
