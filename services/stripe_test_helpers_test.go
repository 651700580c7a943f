package services_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stripe/stripe-go/v80"

	"github.com/yashrajoria/stripe-bridge/config"
	"github.com/yashrajoria/stripe-bridge/services"
)

type recordedRequest struct {
	Method string
	Path   string
	Form   map[string][]string
	Query  map[string][]string
}

// fakeStripe answers stripe-go requests from a route table keyed by
// "METHOD /path".
type fakeStripe struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recordedRequest
}

func newFakeStripe() *fakeStripe {
	return &fakeStripe{routes: map[string]http.HandlerFunc{}}
}

func (f *fakeStripe) handle(route string, status int, body interface{}) {
	f.routes[route] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Form:   r.PostForm,
		Query:  r.URL.Query(),
	})
	h, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(stripeError("resource_missing", "No such route: "+r.URL.Path))
		return
	}
	h(w, r)
}

func (f *fakeStripe) calls() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeStripe) last() recordedRequest {
	c := f.calls()
	if len(c) == 0 {
		return recordedRequest{}
	}
	return c[len(c)-1]
}

func stripeError(code, msg string) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "invalid_request_error",
			"code":    code,
			"message": msg,
		},
	}
}

func list(url string, hasMore bool, data ...map[string]interface{}) map[string]interface{} {
	if data == nil {
		data = []map[string]interface{}{}
	}
	return map[string]interface{}{
		"object":   "list",
		"url":      url,
		"has_more": hasMore,
		"data":     data,
	}
}

func backends(url string) *stripe.Backends {
	b := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(url),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return &stripe.Backends{API: b, Connect: b, Uploads: b}
}

// newClient starts a fake Stripe API and returns a test-mode client bound
// to it.
func newClient(t *testing.T) (*services.StripeClient, *fakeStripe) {
	t.Helper()
	fake := newFakeStripe()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c := services.NewStripeClient(services.ClientConfig{
		Mode:     config.Static("test"),
		TestKey:  config.Static("sk_test_123456789012"),
		Backends: backends(srv.URL),
	})
	return c, fake
}
