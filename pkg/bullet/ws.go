package bullet

import (
	"context"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/sdk/websocket"
)

// ConnectWS dials the network's WebSocket endpoint with default settings
// plus the client's proxy and user agent.
func (t *TradingAPI) ConnectWS(ctx context.Context) (*websocket.Handle, error) {
	return t.ConnectWSWithConfig(ctx, websocket.DefaultConfig())
}

// ConnectWSWithConfig dials with cfg. Empty proxy, user agent and logger
// fields are filled from the client's options.
func (t *TradingAPI) ConnectWSWithConfig(ctx context.Context, cfg *websocket.Config) (*websocket.Handle, error) {
	c := websocket.Config{}
	if cfg != nil {
		c = *cfg
	}
	if c.ProxyURL == "" {
		c.ProxyURL = t.opts.proxyURL
	}
	if c.UserAgent == "" {
		c.UserAgent = t.opts.userAgent
	}
	if c.Logger == nil {
		c.Logger = t.log.WithField("transport", "ws")
	}
	return websocket.Dial(ctx, t.wsURL, &c)
}
