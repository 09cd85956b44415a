package github

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	mcpclient "github.com/Sathishruw/mcp-filesystem-client"
)

// Options configures a GitHub client. Use the With* functions rather than
// constructing this directly.
type Options struct {
	// Logger receives structured logs. Defaults to a no-op logger.
	Logger *slog.Logger

	// Image is the container image to run. Defaults to DefaultImage.
	Image string

	// Toolsets selects which GitHub tool groups the server enables.
	// Defaults to DefaultToolsets.
	Toolsets []string

	// CallTimeout overrides the per-call timeout of the underlying client.
	CallTimeout time.Duration

	// RateLimit caps outgoing calls per second. Zero means unlimited.
	RateLimit rate.Limit

	// RateBurst is the burst size used with RateLimit. Defaults to 1.
	RateBurst int

	// CacheTTL enables caching of read-only call results for the given
	// duration. Zero disables the cache.
	CacheTTL time.Duration

	// SkipDockerCheck bypasses the Docker preflight. Meant for tests that
	// inject a transport.
	SkipDockerCheck bool

	// ClientOptions are appended to the options passed to the underlying
	// mcpclient at Start.
	ClientOptions []mcpclient.Option
}

// Option mutates Options.
type Option func(*Options)

func applyOptions(opts []Option) *Options {
	options := &Options{
		Image:    DefaultImage,
		Toolsets: DefaultToolsets,
	}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithImage overrides the server container image.
func WithImage(image string) Option {
	return func(o *Options) {
		o.Image = image
	}
}

// WithToolsets selects the GitHub tool groups to enable.
func WithToolsets(toolsets ...string) Option {
	return func(o *Options) {
		o.Toolsets = toolsets
	}
}

// WithCallTimeout sets the per-call timeout.
func WithCallTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.CallTimeout = timeout
	}
}

// WithRateLimit caps outgoing calls. Calls beyond the limit wait their turn
// instead of failing.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *Options) {
		o.RateLimit = limit
		o.RateBurst = burst
	}
}

// WithCache caches successful read-only call results for ttl.
func WithCache(ttl time.Duration) Option {
	return func(o *Options) {
		o.CacheTTL = ttl
	}
}

// WithoutDockerCheck disables the Docker preflight.
func WithoutDockerCheck() Option {
	return func(o *Options) {
		o.SkipDockerCheck = true
	}
}

// WithClientOptions forwards extra options to the underlying mcpclient,
// for example a custom transport in tests.
func WithClientOptions(opts ...mcpclient.Option) Option {
	return func(o *Options) {
		o.ClientOptions = append(o.ClientOptions, opts...)
	}
}
