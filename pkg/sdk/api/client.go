// Package api is the REST client generated from the trading API's OpenAPI
// document. Only client.go, spec.go and generate.go are maintained by hand.
package api

import (
	"context"
	"fmt"
	"net/url"

	sdkhttp "github.com/bullet-xyz/bullet-go-sdk/pkg/sdk/http"
)

// Operation describes one generated method.
type Operation struct {
	ID     string
	Method string
	Path   string
	GoName string
}

// Client exposes one method per API operation.
type Client struct {
	http *sdkhttp.Client
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...sdkhttp.Option) *Client {
	return &Client{http: sdkhttp.NewClient(baseURL, opts...)}
}

// NewClientWithTransport wraps an existing transport.
func NewClientWithTransport(t *sdkhttp.Client) *Client {
	return &Client{http: t}
}

// BaseURL returns the REST base URL.
func (c *Client) BaseURL() string {
	return c.http.BaseURL()
}

// Transport exposes the underlying REST transport for calls outside the
// generated surface.
func (c *Client) Transport() *sdkhttp.Client {
	return c.http
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.http.Do(ctx, sdkhttp.Request{Method: method, Path: path, Query: query, Body: body}, out)
}

func formatParam(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
