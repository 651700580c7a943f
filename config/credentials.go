package config

import (
	"context"
	"os"
	"strings"
	"sync"
)

// Resolver produces a credential value on demand.
type Resolver func(ctx context.Context) (string, error)

// SecretReader reads one field of a JSON secret. Satisfied by
// aws.SecretsClient.
type SecretReader interface {
	GetSecretField(ctx context.Context, name, field string) (string, error)
}

// Credential is either a fixed value or a resolver that is invoked lazily on
// first use. A successfully resolved value is memoised until Reset; failed
// resolutions are not cached.
type Credential struct {
	resolver Resolver

	mu       sync.Mutex
	resolved bool
	value    string
}

// Static wraps a fixed value.
func Static(value string) *Credential {
	return &Credential{
		resolver: func(context.Context) (string, error) { return value, nil },
	}
}

// Lazy wraps a zero-argument callback, so a host application can source the
// value from its own settings storage.
func Lazy(fn func() string) *Credential {
	return &Credential{
		resolver: func(context.Context) (string, error) { return fn(), nil },
	}
}

// FromResolver wraps a context-aware resolver.
func FromResolver(fn Resolver) *Credential {
	return &Credential{resolver: fn}
}

// FromEnv reads an environment variable at first use.
func FromEnv(key string) *Credential {
	return Lazy(func() string { return os.Getenv(key) })
}

// FromSecret reads a field of a JSON secret at first use.
func FromSecret(reader SecretReader, name, field string) *Credential {
	return FromResolver(func(ctx context.Context) (string, error) {
		return reader.GetSecretField(ctx, name, field)
	})
}

// Resolve returns the credential value, invoking the resolver on first use.
// Surrounding whitespace is trimmed. A nil Credential resolves to "".
func (c *Credential) Resolve(ctx context.Context) (string, error) {
	if c == nil || c.resolver == nil {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolved {
		return c.value, nil
	}

	v, err := c.resolver(ctx)
	if err != nil {
		return "", err
	}
	c.value = strings.TrimSpace(v)
	c.resolved = true
	return c.value, nil
}

// Reset forgets the memoised value so the next Resolve calls the resolver
// again, e.g. after credential rotation.
func (c *Credential) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.resolved = false
	c.value = ""
	c.mu.Unlock()
}
