// Package websocket is the streaming client of the trading API: market data
// subscriptions, order updates and order placement over a single connection.
package websocket

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultConnectionTimeout bounds the wait for the server's connected status.
	DefaultConnectionTimeout = 10 * time.Second

	defaultHandshakeTimeout = 15 * time.Second
	defaultWriteTimeout     = 10 * time.Second
	defaultBufferSize       = 4096
	defaultUserAgent        = "bullet-go-sdk"
)

// Stream keys are case sensitive ("e" vs "E", "b" vs "B").
var wsJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

// Config controls how a connection is dialed and driven.
type Config struct {
	// ConnectionTimeout is how long Dial waits for {"e":"status","status":"connected"}.
	ConnectionTimeout time.Duration
	// HandshakeTimeout bounds the HTTP upgrade.
	HandshakeTimeout time.Duration
	// ProxyURL overrides HTTP_PROXY/HTTPS_PROXY when set.
	ProxyURL        string
	ReadBufferSize  int
	WriteBufferSize int
	// WriteTimeout bounds each frame write; zero disables the deadline.
	WriteTimeout time.Duration
	UserAgent    string
	Logger       *logrus.Entry
}

// DefaultConfig returns the default connection settings.
func DefaultConfig() *Config {
	return &Config{
		ConnectionTimeout: DefaultConnectionTimeout,
		HandshakeTimeout:  defaultHandshakeTimeout,
		ReadBufferSize:    defaultBufferSize,
		WriteBufferSize:   defaultBufferSize,
		WriteTimeout:      defaultWriteTimeout,
		UserAgent:         defaultUserAgent,
	}
}

func (c *Config) withDefaults() Config {
	out := *DefaultConfig()
	if c == nil {
		return out
	}
	merged := *c
	if merged.ConnectionTimeout <= 0 {
		merged.ConnectionTimeout = out.ConnectionTimeout
	}
	if merged.HandshakeTimeout <= 0 {
		merged.HandshakeTimeout = out.HandshakeTimeout
	}
	if merged.ReadBufferSize <= 0 {
		merged.ReadBufferSize = out.ReadBufferSize
	}
	if merged.WriteBufferSize <= 0 {
		merged.WriteBufferSize = out.WriteBufferSize
	}
	if merged.UserAgent == "" {
		merged.UserAgent = out.UserAgent
	}
	return merged
}
