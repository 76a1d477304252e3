// Package specfetch obtains the trading API's OpenAPI document for code
// generation: a live fetch wins, the cached copy is the fallback, and only the
// absence of both is fatal.
package specfetch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/logger"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/openapi"
	sdkhttp "github.com/bullet-xyz/bullet-go-sdk/pkg/sdk/http"
)

const (
	DefaultEndpoint = "https://tradingapi.bullet.xyz"
	DocPath         = "/docs/rest/openapi.json"
	DefaultTimeout  = 5 * time.Second

	EndpointEnv = "BULLET_API_ENDPOINT"
	OfflineEnv  = "BULLET_OFFLINE"
)

// Source says where the returned document came from.
type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
)

var (
	// ErrSpecUnavailable matches (via errors.Is) the error returned when neither
	// the live endpoint nor the cache produced a document.
	ErrSpecUnavailable = errors.New("openapi spec unavailable")
	// ErrOffline is the fetch cause recorded when offline mode skipped the network.
	ErrOffline = errors.New("offline mode, live fetch skipped")
)

// FetchError describes a failed live fetch. It is recoverable through the cache.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("spec fetch at %q failed with status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("spec fetch at %q failed: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UnavailableError is the fatal outcome: the fetch failed and the cache could
// not be used either.
type UnavailableError struct {
	URL       string
	CachePath string
	FetchErr  error
	CacheErr  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%v: live fetch from %s: %v; cache %s: %v",
		ErrSpecUnavailable, e.URL, e.FetchErr, e.CachePath, e.CacheErr)
}

func (e *UnavailableError) Is(target error) bool { return target == ErrSpecUnavailable }

func (e *UnavailableError) Unwrap() []error { return []error{e.FetchErr, e.CacheErr} }

// Options are the explicit inputs of one acquisition.
type Options struct {
	// Endpoint is the API base URL; DefaultEndpoint when empty.
	Endpoint string
	// CachePath is the cached document, refreshed on a successful fetch.
	CachePath string
	// Offline skips the network and reads the cache directly.
	Offline bool
	// Timeout bounds the live fetch; DefaultTimeout when zero.
	Timeout time.Duration
	// HTTPOptions are passed to the transport, mostly for tests.
	HTTPOptions []sdkhttp.Option
	Logger      *logrus.Entry
}

// Result is a usable document plus its provenance.
type Result struct {
	Document *openapi.Document
	Raw      []byte
	Source   Source
	URL      string
	// FetchErr is why the live fetch was not used when Source is SourceCache.
	FetchErr error
}

// SpecURL returns the document URL for an API endpoint.
func SpecURL(endpoint string) string {
	return strings.TrimSuffix(endpoint, "/") + DocPath
}

// EndpointFromEnv returns BULLET_API_ENDPOINT or the default endpoint.
func EndpointFromEnv() string {
	if v := strings.TrimSpace(os.Getenv(EndpointEnv)); v != "" {
		return v
	}
	return DefaultEndpoint
}

// OfflineFromEnv reports whether the environment asks for an offline build:
// BULLET_OFFLINE set to a true value, or GOPROXY=off.
func OfflineFromEnv() bool {
	if v, ok := os.LookupEnv(OfflineEnv); ok {
		if v == "" {
			return true
		}
		b, err := strconv.ParseBool(v)
		return err != nil || b
	}
	return os.Getenv("GOPROXY") == "off"
}

// Acquire runs a single live fetch attempt and falls back to the cache.
func Acquire(ctx context.Context, opts Options) (*Result, error) {
	if opts.CachePath == "" {
		return nil, errors.New("specfetch: cache path is required")
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logger.Component("specfetch")
	}
	specURL := SpecURL(opts.Endpoint)

	var fetchErr error
	if opts.Offline {
		fetchErr = ErrOffline
	} else {
		raw, doc, err := fetch(ctx, opts, specURL)
		if err == nil {
			if werr := writeCache(opts.CachePath, raw); werr != nil {
				log.WithError(werr).Warn("could not refresh cached spec")
			}
			log.WithFields(logrus.Fields{"url": specURL, "version": doc.Version()}).Info("using live spec")
			return &Result{Document: doc, Raw: raw, Source: SourceLive, URL: specURL}, nil
		}
		fetchErr = err
	}

	raw, err := os.ReadFile(opts.CachePath)
	if err != nil {
		return nil, &UnavailableError{URL: specURL, CachePath: opts.CachePath, FetchErr: fetchErr, CacheErr: err}
	}
	doc, err := openapi.Parse(raw)
	if err != nil {
		return nil, &UnavailableError{URL: specURL, CachePath: opts.CachePath, FetchErr: fetchErr, CacheErr: err}
	}

	log.WithFields(logrus.Fields{
		"cache":   opts.CachePath,
		"version": doc.Version(),
		"cause":   fetchErr,
	}).Warn("using cached spec")
	return &Result{Document: doc, Raw: raw, Source: SourceCache, URL: specURL, FetchErr: fetchErr}, nil
}

func fetch(ctx context.Context, opts Options, specURL string) ([]byte, *openapi.Document, error) {
	httpOpts := append([]sdkhttp.Option{sdkhttp.WithTimeout(opts.Timeout)}, opts.HTTPOptions...)
	client := sdkhttp.NewClient(opts.Endpoint, httpOpts...)

	raw, err := client.Raw(ctx, sdkhttp.Request{Path: DocPath})
	if err != nil {
		fe := &FetchError{URL: specURL, Err: err}
		var se *sdkhttp.StatusError
		if errors.As(err, &se) {
			fe.StatusCode = se.StatusCode
		}
		return nil, nil, fe
	}
	doc, err := openapi.Parse(raw)
	if err != nil {
		return nil, nil, &FetchError{URL: specURL, Err: err}
	}
	return raw, doc, nil
}

// writeCache replaces path atomically and leaves it untouched when unchanged.
func writeCache(path string, data []byte) error {
	if current, err := os.ReadFile(path); err == nil && bytes.Equal(current, data) {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create cache dir")
	}
	tmp, err := os.CreateTemp(dir, ".openapi-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp cache file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp cache file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp cache file")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrap(err, "chmod temp cache file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "replace cache file")
}
