package collector

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"ReturnRanker/internal/logging"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

type options struct {
	baseURL   string
	proxyURL  string
	timeout   time.Duration
	rateLimit int
	logger    *logging.Logger
}

// Option configures an HTTP fetcher
type Option func(*options)

// WithBaseURL overrides the provider endpoint
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithProxy routes requests through an HTTP proxy
func WithProxy(proxyURL string) Option {
	return func(o *options) {
		o.proxyURL = proxyURL
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithRateLimit caps outgoing requests per second
func WithRateLimit(requestsPerSecond int) Option {
	return func(o *options) {
		if requestsPerSecond > 0 {
			o.rateLimit = requestsPerSecond
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(defaultBaseURL string, opts []Option) options {
	o := options{
		baseURL:   defaultBaseURL,
		timeout:   DefaultTimeout,
		rateLimit: DefaultRateLimit,
		logger:    logging.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) httpClient() *http.Client {
	transport := &http.Transport{}
	if o.proxyURL != "" {
		if u, err := url.Parse(o.proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   o.timeout,
		Transport: transport,
	}
}

func (o options) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(o.rateLimit), o.rateLimit)
}
