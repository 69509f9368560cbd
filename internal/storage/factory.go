package storage

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"shareapi/internal/config"
)

// Option customizes backend construction.
type Option func(*options)

type options struct {
	log     zerolog.Logger
	client  *http.Client
	metrics *Metrics
	now     func() time.Time
}

func buildOptions(opts []Option) options {
	o := options{
		log: zerolog.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return o
}

// WithLogger sets the logger backends and the retry helper write to.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithHTTPClient replaces the HTTP client used by the remote backend.
// The client must be safe for concurrent use.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithMetrics enables operation counters.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides the time source used for signing.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds the backend selected by cfg.Backend.
func New(cfg config.StorageConfig, opts ...Option) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", config.StorageBackendLocal:
		s, err := NewLocalStorage(cfg.Local, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageBackendRemote, config.StorageBackendOSS:
		s, err := NewRemoteStorage(cfg.Remote, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, newError(KindConfig, "new", "", fmt.Errorf("unknown backend %q", cfg.Backend))
	}
}
