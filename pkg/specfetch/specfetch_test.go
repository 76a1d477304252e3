package specfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liveDoc = `{"openapi":"3.1.0","info":{"title":"live","version":"2.0.0"},"paths":{"/health":{"get":{"operationId":"health","responses":{"200":{"description":"ok"}}}}}}`

const cachedDoc = `{"openapi":"3.1.0","info":{"title":"cached","version":"1.0.0"},"paths":{"/health":{"get":{"operationId":"health","responses":{"200":{"description":"ok"}}}}}}`

func specServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != DocPath {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestAcquireLive(t *testing.T) {
	srv, hits := specServer(t, http.StatusOK, liveDoc)
	cache := filepath.Join(t.TempDir(), "api", "openapi.json")

	res, err := Acquire(context.Background(), Options{Endpoint: srv.URL + "/", CachePath: cache})
	require.NoError(t, err)

	assert.Equal(t, SourceLive, res.Source)
	assert.Equal(t, srv.URL+DocPath, res.URL)
	assert.Equal(t, "2.0.0", res.Document.Version())
	assert.Nil(t, res.FetchErr)
	assert.Equal(t, int32(1), hits.Load())

	written, err := os.ReadFile(cache)
	require.NoError(t, err)
	assert.Equal(t, liveDoc, string(written), "cache holds the raw fetched document")
}

func TestAcquireLiveRefreshesCache(t *testing.T) {
	srv, _ := specServer(t, http.StatusOK, liveDoc)
	cache := filepath.Join(t.TempDir(), "openapi.json")
	writeFile(t, cache, cachedDoc)

	res, err := Acquire(context.Background(), Options{Endpoint: srv.URL, CachePath: cache})
	require.NoError(t, err)
	assert.Equal(t, SourceLive, res.Source)

	written, err := os.ReadFile(cache)
	require.NoError(t, err)
	assert.Equal(t, liveDoc, string(written))
}

func TestAcquireUnchangedCacheNotRewritten(t *testing.T) {
	srv, _ := specServer(t, http.StatusOK, liveDoc)
	cache := filepath.Join(t.TempDir(), "openapi.json")
	writeFile(t, cache, liveDoc)
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(cache, past, past))

	_, err := Acquire(context.Background(), Options{Endpoint: srv.URL, CachePath: cache})
	require.NoError(t, err)

	info, err := os.Stat(cache)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past))
}

func TestAcquireFallsBackToCache(t *testing.T) {
	unreachable := func(t *testing.T) string {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()
		return addr
	}

	cases := []struct {
		name       string
		endpoint   func(t *testing.T) string
		statusCode int
	}{
		{name: "unreachable endpoint", endpoint: unreachable},
		{name: "invalid url", endpoint: func(*testing.T) string { return "http://invalid.invalid:1" }},
		{
			name: "server error",
			endpoint: func(t *testing.T) string {
				srv, _ := specServer(t, http.StatusInternalServerError, "boom")
				return srv.URL
			},
			statusCode: http.StatusInternalServerError,
		},
		{
			name: "garbage body",
			endpoint: func(t *testing.T) string {
				srv, _ := specServer(t, http.StatusOK, "<html>maintenance</html>")
				return srv.URL
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cache := filepath.Join(t.TempDir(), "openapi.json")
			writeFile(t, cache, cachedDoc)

			res, err := Acquire(context.Background(), Options{
				Endpoint:  tc.endpoint(t),
				CachePath: cache,
				Timeout:   2 * time.Second,
			})
			require.NoError(t, err)

			assert.Equal(t, SourceCache, res.Source)
			assert.Equal(t, "1.0.0", res.Document.Version())

			var fe *FetchError
			require.ErrorAs(t, res.FetchErr, &fe)
			assert.Equal(t, tc.statusCode, fe.StatusCode)

			kept, err := os.ReadFile(cache)
			require.NoError(t, err)
			assert.Equal(t, cachedDoc, string(kept), "failed fetch must not touch the cache")
		})
	}
}

func TestAcquireOffline(t *testing.T) {
	srv, hits := specServer(t, http.StatusOK, liveDoc)
	cache := filepath.Join(t.TempDir(), "openapi.json")
	writeFile(t, cache, cachedDoc)

	res, err := Acquire(context.Background(), Options{Endpoint: srv.URL, CachePath: cache, Offline: true})
	require.NoError(t, err)

	assert.Equal(t, SourceCache, res.Source)
	assert.ErrorIs(t, res.FetchErr, ErrOffline)
	assert.Equal(t, int32(0), hits.Load())
}

func TestAcquireUnavailable(t *testing.T) {
	t.Run("no cache", func(t *testing.T) {
		cache := filepath.Join(t.TempDir(), "missing.json")
		_, err := Acquire(context.Background(), Options{Endpoint: "http://invalid.invalid:1", CachePath: cache, Timeout: time.Second})
		require.Error(t, err)

		assert.True(t, errors.Is(err, ErrSpecUnavailable))
		var ue *UnavailableError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, cache, ue.CachePath)
		assert.True(t, os.IsNotExist(ue.CacheErr))
		assert.Contains(t, err.Error(), "openapi spec unavailable")
	})

	t.Run("offline without cache", func(t *testing.T) {
		_, err := Acquire(context.Background(), Options{CachePath: filepath.Join(t.TempDir(), "x.json"), Offline: true})
		assert.ErrorIs(t, err, ErrSpecUnavailable)
		assert.ErrorIs(t, err, ErrOffline)
	})

	t.Run("corrupt cache", func(t *testing.T) {
		cache := filepath.Join(t.TempDir(), "openapi.json")
		writeFile(t, cache, "{")
		_, err := Acquire(context.Background(), Options{CachePath: cache, Offline: true})
		assert.ErrorIs(t, err, ErrSpecUnavailable)
	})

	t.Run("cache path required", func(t *testing.T) {
		_, err := Acquire(context.Background(), Options{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSpecUnavailable)
	})
}

func TestEnv(t *testing.T) {
	t.Run("endpoint default", func(t *testing.T) {
		t.Setenv(EndpointEnv, "")
		assert.Equal(t, DefaultEndpoint, EndpointFromEnv())
	})

	t.Run("endpoint override", func(t *testing.T) {
		t.Setenv(EndpointEnv, "http://localhost:9000")
		assert.Equal(t, "http://localhost:9000", EndpointFromEnv())
	})

	cases := []struct {
		offline string
		goproxy string
		want    bool
	}{
		{offline: "1", want: true},
		{offline: "true", want: true},
		{offline: "", want: true},
		{offline: "0", want: false},
		{offline: "false", goproxy: "off", want: false},
	}
	for _, tc := range cases {
		t.Run("offline="+tc.offline, func(t *testing.T) {
			t.Setenv(OfflineEnv, tc.offline)
			t.Setenv("GOPROXY", tc.goproxy)
			assert.Equal(t, tc.want, OfflineFromEnv())
		})
	}

	t.Run("goproxy off", func(t *testing.T) {
		t.Setenv(OfflineEnv, "")
		os.Unsetenv(OfflineEnv)
		t.Setenv("GOPROXY", "off")
		assert.True(t, OfflineFromEnv())
	})
}

func TestSpecURL(t *testing.T) {
	assert.Equal(t, "https://tradingapi.bullet.xyz/docs/rest/openapi.json", SpecURL(DefaultEndpoint))
	assert.Equal(t, "http://localhost:8080/docs/rest/openapi.json", SpecURL("http://localhost:8080/"))
}
