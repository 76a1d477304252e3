// Package bullet is the entry point of the SDK. A TradingAPI bundles the
// generated REST client with the network's WebSocket address, its chain
// identity and transaction signing.
//
//	client, err := bullet.Mainnet()
//	if err != nil {
//		return err
//	}
//	info, err := client.ExchangeInfo(ctx)
package bullet

import (
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/logger"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/sdk/api"
	sdkhttp "github.com/bullet-xyz/bullet-go-sdk/pkg/sdk/http"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/specfetch"
)

const (
	MainnetURL = "https://tradingapi.bullet.xyz"
	StagingURL = "https://tradingapi.staging.bullet.xyz"
	TestnetURL = "https://tradingapi.testnet.bullet.xyz"
)

// Network names a hosted deployment.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkStaging Network = "staging"
	NetworkTestnet Network = "testnet"
)

// URL returns the REST base URL of a hosted network.
func (n Network) URL() (string, error) {
	switch n {
	case NetworkMainnet, "":
		return MainnetURL, nil
	case NetworkStaging:
		return StagingURL, nil
	case NetworkTestnet:
		return TestnetURL, nil
	}
	return "", errors.Wrapf(ErrUnknownNetwork, "%q", string(n))
}

// TradingAPI is a client for one deployment. Every generated REST method is
// available directly on it. It is safe for concurrent use.
type TradingAPI struct {
	*api.Client

	restURL string
	wsURL   string
	opts    options
	log     *logrus.Entry

	mu         sync.Mutex
	chain      *ChainInfo
	chainFetch singleflight.Group
}

// New creates a client for the API at rawURL. Only http and https URLs are
// accepted; the WebSocket address is derived from the URL's authority. No
// network I/O happens until a method is called.
func New(rawURL string, opts ...Option) (*TradingAPI, error) {
	wsURL, err := wsURLFor(rawURL)
	if err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = logger.Component("bullet")
	}
	o.http = append(o.http, sdkhttp.WithLogger(log))

	return &TradingAPI{
		Client:  api.NewClient(rawURL, o.http...),
		restURL: rawURL,
		wsURL:   wsURL,
		opts:    o,
		log:     log,
	}, nil
}

func wsURLFor(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(ErrInvalidNetworkURL, err.Error())
	}
	if u.Host == "" {
		return "", errors.Wrapf(ErrInvalidNetworkURL, "%q has no host", rawURL)
	}
	switch u.Scheme {
	case "https":
		return "wss://" + u.Host + "/ws", nil
	case "http":
		return "ws://" + u.Host + "/ws", nil
	}
	return "", errors.Wrapf(ErrInvalidNetworkURL, "unsupported scheme %q", u.Scheme)
}

func Mainnet(opts ...Option) (*TradingAPI, error) { return New(MainnetURL, opts...) }

func Staging(opts ...Option) (*TradingAPI, error) { return New(StagingURL, opts...) }

func Testnet(opts ...Option) (*TradingAPI, error) { return New(TestnetURL, opts...) }

// ForNetwork creates a client for a hosted network by name.
func ForNetwork(n Network, opts ...Option) (*TradingAPI, error) {
	u, err := n.URL()
	if err != nil {
		return nil, err
	}
	return New(u, opts...)
}

// FromEnv uses BULLET_API_ENDPOINT, falling back to mainnet.
func FromEnv(opts ...Option) (*TradingAPI, error) {
	endpoint := strings.TrimSpace(os.Getenv(specfetch.EndpointEnv))
	if endpoint == "" {
		endpoint = MainnetURL
	}
	return New(endpoint, opts...)
}

// URL is the REST base URL as given to the constructor.
func (t *TradingAPI) URL() string { return t.restURL }

// WSURL is the derived WebSocket address.
func (t *TradingAPI) WSURL() string { return t.wsURL }
