package bullet

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/ratelimit"
	sdkhttp "github.com/bullet-xyz/bullet-go-sdk/pkg/sdk/http"
)

type options struct {
	http      []sdkhttp.Option
	proxyURL  string
	userAgent string
	logger    *logrus.Entry
}

// Option configures a TradingAPI.
type Option func(*options)

// WithHTTPClient sends REST calls through c.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.http = append(o.http, sdkhttp.WithHTTPClient(c)) }
}

// WithTimeout bounds each REST call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.http = append(o.http, sdkhttp.WithTimeout(d)) }
}

// WithProxy routes REST and WebSocket traffic through proxyURL.
func WithProxy(proxyURL string) Option {
	return func(o *options) {
		o.proxyURL = proxyURL
		o.http = append(o.http, sdkhttp.WithProxy(proxyURL))
	}
}

func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
		o.http = append(o.http, sdkhttp.WithUserAgent(ua))
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(o *options) { o.logger = l }
}

// WithRateLimit caps REST calls at perSecond with bursts of up to burst calls.
// Calls over the limit wait, honouring their context. A perSecond of zero or
// less disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		if perSecond <= 0 {
			return
		}
		o.http = append(o.http, sdkhttp.WithRateLimit(ratelimit.NewTokenBucket(burst, perSecond)))
	}
}
