package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/logger"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/ratelimit"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "bullet-go-sdk"

	// RequestIDHeader carries a per-request uuid for correlating client and server logs.
	RequestIDHeader = "X-Request-Id"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is a thin JSON-over-HTTP transport. It performs exactly one attempt per
// call and never retries.
type Client struct {
	client    *resty.Client
	baseURL   string
	userAgent string
	logger    *logrus.Entry
	limiter   ratelimit.RateLimiter
}

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	proxyURL   string
	userAgent  string
	logger     *logrus.Entry
	limiter    ratelimit.RateLimiter
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient uses c as the underlying transport.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithProxy routes requests through proxyURL. Without it the
// HTTP_PROXY/HTTPS_PROXY environment variables apply.
func WithProxy(proxyURL string) Option {
	return func(o *options) { o.proxyURL = proxyURL }
}

func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

func WithLogger(l *logrus.Entry) Option {
	return func(o *options) { o.logger = l }
}

// WithRateLimit makes every call wait on l before it is sent.
func WithRateLimit(l ratelimit.RateLimiter) Option {
	return func(o *options) { o.limiter = l }
}

// NewClient creates a client rooted at host.
func NewClient(host string, opts ...Option) *Client {
	o := options{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Component("http")
	}

	host = strings.TrimSuffix(host, "/")

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(host).
		SetTimeout(o.timeout).
		SetRetryCount(0).
		SetLogger(o.logger)
	if o.proxyURL != "" {
		rc.SetProxy(o.proxyURL)
	}

	return &Client{
		client:    rc,
		baseURL:   host,
		userAgent: o.userAgent,
		logger:    o.logger,
		limiter:   o.limiter,
	}
}

// BaseURL returns the host requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is sent as JSON when non-nil.
	Body any
}

// only per-request headers; the resty client is shared
func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", c.userAgent)
	r.SetHeader(RequestIDHeader, uuid.NewString())
	return r
}

// Raw performs the request and returns the body of a 2xx response.
func (c *Client) Raw(ctx context.Context, req Request) ([]byte, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	if c.limiter != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Method: method, URL: c.baseURL + req.Path, Err: err}
		}
	}

	r := c.newRequest(ctx)
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &EncodeError{Method: method, Path: req.Path, Err: err}
		}
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(payload)
	}

	start := time.Now()
	resp, err := r.Execute(method, req.Path)
	fields := logrus.Fields{
		"method":     method,
		"path":       req.Path,
		"request_id": r.Header.Get(RequestIDHeader),
		"elapsed":    time.Since(start),
	}
	if err != nil {
		c.logger.WithFields(fields).WithError(err).Debug("request failed")
		return nil, &TransportError{Method: method, URL: c.baseURL + req.Path, Err: err}
	}
	fields["status"] = resp.StatusCode()
	c.logger.WithFields(fields).Debug("request done")

	if !resp.IsSuccess() {
		return nil, newStatusError(method, c.baseURL+req.Path, resp.StatusCode(), resp.Status(), resp.Body())
	}
	return resp.Body(), nil
}

// Do performs the request and decodes a 2xx JSON body into out (which may be nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	body, err := c.Raw(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Method: strings.ToUpper(req.Method), Path: req.Path, Body: body, Err: err}
	}
	return nil
}
