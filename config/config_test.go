package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/stripe-bridge/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("REPLAY_STORE", "")
	t.Setenv("WEBHOOK_TOLERANCE", "")
	t.Setenv("REPLAY_TTL", "")
	t.Setenv("STRIPE_MODE", "")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8088", cfg.Port)
	assert.Equal(t, "/stripe/webhook", cfg.WebhookPath)
	assert.Equal(t, 300*time.Second, cfg.WebhookTolerance)
	assert.Equal(t, 24*time.Hour, cfg.ReplayTTL)
	assert.Equal(t, config.ReplayStoreMemory, cfg.ReplayStore)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)

	mode, err := cfg.StripeMode.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", mode)
}

func TestLoadConfig_BareSecondsTolerance(t *testing.T) {
	t.Setenv("WEBHOOK_TOLERANCE", "120")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, cfg.WebhookTolerance)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("REPLAY_TTL", "soon")
	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_RedisStoreNeedsURL(t *testing.T) {
	t.Setenv("REPLAY_STORE", "redis")
	t.Setenv("REDIS_URL", "")
	_, err := config.LoadConfig()
	assert.ErrorContains(t, err, "REDIS_URL")

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.ReplayStoreRedis, cfg.ReplayStore)
}

func TestLoadConfig_UnknownStore(t *testing.T) {
	t.Setenv("REPLAY_STORE", "memcached")
	_, err := config.LoadConfig()
	assert.ErrorContains(t, err, "unknown REPLAY_STORE")
}

func TestLoadConfig_KafkaTopicNeedsBrokers(t *testing.T) {
	t.Setenv("KAFKA_EVENTS_TOPIC", "stripe.events")
	t.Setenv("KAFKA_BROKERS", " , ")
	_, err := config.LoadConfig()
	assert.ErrorContains(t, err, "KAFKA_BROKERS")

	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{
		PostgresHost: "db", PostgresUser: "u", PostgresPassword: "p", PostgresDB: "d",
		PostgresPort: "5432", PostgresSSLMode: "disable", PostgresTimeZone: "UTC",
	}
	assert.Equal(t, "host=db user=u password=p dbname=d port=5432 sslmode=disable TimeZone=UTC", cfg.PostgresDSN())
}

type fakeSecretReader struct {
	calls  int
	fields map[string]string
	err    error
}

func (f *fakeSecretReader) GetSecretField(_ context.Context, _, field string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.fields[field], nil
}

func TestUseSecretsManager(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	reader := &fakeSecretReader{fields: map[string]string{
		"STRIPE_TEST_SECRET_KEY": "sk_test_from_secret",
		"STRIPE_WEBHOOK_SECRET":  "whsec_from_secret",
	}}
	cfg.UseSecretsManager(reader)

	key, err := cfg.StripeTestSecretKey.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk_test_from_secret", key)

	secret, err := cfg.StripeWebhookSecret.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "whsec_from_secret", secret)
}

func TestCredential_ResolvesOnceUntilReset(t *testing.T) {
	calls := 0
	cred := config.Lazy(func() string {
		calls++
		return "  sk_test_abc  "
	})

	for i := 0; i < 3; i++ {
		v, err := cred.Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "sk_test_abc", v)
	}
	assert.Equal(t, 1, calls)

	cred.Reset()
	_, _ = cred.Resolve(context.Background())
	assert.Equal(t, 2, calls)
}

func TestCredential_ErrorsAreNotCached(t *testing.T) {
	reader := &fakeSecretReader{err: errors.New("throttled")}
	cred := config.FromSecret(reader, "stripe", "STRIPE_TEST_SECRET_KEY")

	_, err := cred.Resolve(context.Background())
	assert.Error(t, err)

	reader.err = nil
	reader.fields = map[string]string{"STRIPE_TEST_SECRET_KEY": "sk_test_ok"}
	v, err := cred.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk_test_ok", v)
	assert.Equal(t, 2, reader.calls)
}

func TestCredential_NilAndStatic(t *testing.T) {
	var cred *config.Credential
	v, err := cred.Resolve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, v)

	v, err = config.Static("whsec_x").Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "whsec_x", v)
}
