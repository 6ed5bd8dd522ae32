// Package http builds the pooled HTTP clients used for calls to upstream
// services such as the model sidecar.
package http

import (
	"net/http"
	"time"
)

const (
	DefaultTimeout             = 5 * time.Second
	DefaultMaxIdleConnsPerHost = 16
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultTLSHandshakeTimeout = 5 * time.Second
)

// ClientConfig configures an upstream client. Zero fields take defaults.
type ClientConfig struct {
	// Timeout bounds the whole request including reading the body.
	Timeout time.Duration

	// MaxIdleConnsPerHost sizes the keep-alive pool.
	MaxIdleConnsPerHost int

	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
}

// NewClient returns an http.Client with its own transport.
func NewClient(cfg ClientConfig) *http.Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = DefaultIdleConnTimeout
	}
	if cfg.TLSHandshakeTimeout <= 0 {
		cfg.TLSHandshakeTimeout = DefaultTLSHandshakeTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	transport.IdleConnTimeout = cfg.IdleConnTimeout
	transport.TLSHandshakeTimeout = cfg.TLSHandshakeTimeout
	transport.ResponseHeaderTimeout = cfg.Timeout

	return &http.Client{Timeout: cfg.Timeout, Transport: transport}
}
