package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"go.uber.org/zap"

	apperrors "github.com/yashrajoria/stripe-bridge/common/errors"
	"github.com/yashrajoria/stripe-bridge/common/logger"
	"github.com/yashrajoria/stripe-bridge/config"
)

const (
	ModeTest = "test"
	ModeLive = "live"
)

// ClientConfig holds the credentials the client resolves on first use.
type ClientConfig struct {
	Mode    *config.Credential
	TestKey *config.Credential
	LiveKey *config.Credential

	// Backends overrides the stripe-go transport, e.g. for tests.
	Backends *stripe.Backends
	Logger   *zap.Logger
}

// StripeClient builds a stripe-go API client lazily from the configured mode
// and keys. The built client is reused until Reset.
type StripeClient struct {
	cfg    ClientConfig
	logger *zap.Logger

	mu   sync.Mutex
	api  *client.API
	mode string
}

func NewStripeClient(cfg ClientConfig) *StripeClient {
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &StripeClient{cfg: cfg, logger: l}
}

// API returns the initialised client, building it on first call.
func (s *StripeClient) API(ctx context.Context) (*client.API, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.api != nil {
		return s.api, nil
	}

	mode, err := s.resolveMode(ctx)
	if err != nil {
		return nil, err
	}
	key, err := s.resolveKey(ctx, mode)
	if err != nil {
		return nil, err
	}

	backends := s.cfg.Backends
	if backends == nil {
		backends = s.defaultBackends()
	}

	sc := &client.API{}
	sc.Init(key, backends)
	s.api = sc
	s.mode = mode

	s.logger.Info("Stripe client initialized", zap.String("mode", mode), zap.String("key_prefix", safePrefix(key)))
	return sc, nil
}

// Mode reports "test" or "live".
func (s *StripeClient) Mode(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.api != nil {
		m := s.mode
		s.mu.Unlock()
		return m, nil
	}
	s.mu.Unlock()
	return s.resolveMode(ctx)
}

// IsLive reports whether the client runs against live data. Errors count as
// test mode.
func (s *StripeClient) IsLive(ctx context.Context) bool {
	m, err := s.Mode(ctx)
	return err == nil && m == ModeLive
}

// Reset drops the built client and every memoised credential so the next
// call re-resolves them.
func (s *StripeClient) Reset() {
	s.mu.Lock()
	s.api = nil
	s.mode = ""
	s.mu.Unlock()

	s.cfg.Mode.Reset()
	s.cfg.TestKey.Reset()
	s.cfg.LiveKey.Reset()
}

func (s *StripeClient) resolveMode(ctx context.Context) (string, error) {
	mode, err := s.cfg.Mode.Resolve(ctx)
	if err != nil {
		return "", apperrors.NewConfigurationError("Unable to resolve Stripe mode", err)
	}
	mode = strings.ToLower(mode)
	if mode == "" {
		mode = ModeTest
	}
	if mode != ModeTest && mode != ModeLive {
		return "", apperrors.NewConfigurationError(fmt.Sprintf("Unknown Stripe mode %q", mode), nil)
	}
	return mode, nil
}

func (s *StripeClient) resolveKey(ctx context.Context, mode string) (string, error) {
	cred := s.cfg.TestKey
	if mode == ModeLive {
		cred = s.cfg.LiveKey
	}

	key, err := cred.Resolve(ctx)
	if err != nil {
		return "", apperrors.NewConfigurationError("Unable to resolve Stripe secret key", err)
	}
	if key == "" {
		return "", apperrors.NewConfigurationError(fmt.Sprintf("Stripe %s secret key is not configured", mode), nil)
	}
	if !keyMatchesMode(key, mode) {
		return "", apperrors.NewConfigurationError(fmt.Sprintf("Stripe secret key is not a %s key", mode), nil)
	}
	return key, nil
}

func (s *StripeClient) defaultBackends() *stripe.Backends {
	leveled := logger.StripeLogger(s.logger)
	return &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{LeveledLogger: leveled}),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, &stripe.BackendConfig{LeveledLogger: leveled}),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, &stripe.BackendConfig{LeveledLogger: leveled}),
	}
}

func keyMatchesMode(key, mode string) bool {
	for _, kind := range []string{"sk_", "rk_"} {
		if strings.HasPrefix(key, kind+mode+"_") {
			return true
		}
	}
	return false
}

// safePrefix returns the first 12 chars of the key for logging.
func safePrefix(key string) string {
	if len(key) < 12 {
		return "***"
	}
	return key[:12]
}

// wrapError turns a stripe-go failure into an upstream error, keeping the
// Stripe message, code and HTTP status.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		return apperrors.NewUpstreamError(se.HTTPStatusCode, string(se.Code), fmt.Sprintf("%s: %s", op, se.Msg), err)
	}
	return apperrors.NewUpstreamError(0, "", op+" failed", err)
}
