package config

import (
	"go/format"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/bullet"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvNetwork, EnvEndpoint, EnvHTTPTimeout, EnvWSConnectTimeout, EnvProxy, EnvUserAgent, EnvRateLimit, EnvLogLevel, EnvLogFile} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, bullet.NetworkMainnet, cfg.Network)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, 10*time.Second, cfg.WSConnectTimeout)

	endpoint, err := cfg.ResolvedEndpoint()
	require.NoError(t, err)
	assert.Equal(t, bullet.MainnetURL, endpoint)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "bullet.yaml", `
network: testnet
http:
  timeout: 5s
  user_agent: my-bot
websocket:
  connect_timeout: "3"
log:
  level: debug
  file: logs/bullet.log
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, bullet.NetworkTestnet, cfg.Network)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3*time.Second, cfg.WSConnectTimeout)
	assert.Equal(t, "my-bot", cfg.UserAgent)
	assert.Equal(t, "debug", cfg.LoggerConfig().Level)
	assert.Equal(t, "logs/bullet.log", cfg.LoggerConfig().OutputFile)

	c, err := cfg.NewClient()
	require.NoError(t, err)
	assert.Equal(t, bullet.TestnetURL, c.URL())
	assert.Equal(t, "my-bot", cfg.WSConfig().UserAgent)
	assert.Equal(t, 3*time.Second, cfg.WSConfig().ConnectionTimeout)
}

func TestLoadJSON(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "bullet.json", `{"endpoint":"http://localhost:8080","http":{"proxy":"http://proxy:3128"}}`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.Endpoint)
	assert.Equal(t, "http://proxy:3128", cfg.WSConfig().ProxyURL)
	assert.Len(t, cfg.ClientOptions(), 2)

	c, err := cfg.NewClient()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", c.WSURL())
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "bullet.yml", "network: staging\nhttp:\n  timeout: 5s\n")
	t.Setenv(EnvNetwork, "testnet")
	t.Setenv(EnvHTTPTimeout, "1m")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvRateLimit, "2.5")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, bullet.NetworkTestnet, cfg.Network)
	assert.Equal(t, time.Minute, cfg.HTTPTimeout)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Len(t, cfg.ClientOptions(), 2)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]struct {
		file string
		name string
		env  map[string]string
	}{
		"unsupported format": {file: "x = 1", name: "bullet.toml"},
		"bad yaml":           {file: "network: [", name: "bullet.yaml"},
		"bad duration":       {file: "http:\n  timeout: soon\n", name: "bullet.yaml"},
		"unknown network":    {env: map[string]string{EnvNetwork: "devnet"}},
		"bad endpoint":       {env: map[string]string{EnvEndpoint: "ftp://x"}},
		"bad log level":      {env: map[string]string{EnvLogLevel: "loud"}},
		"zero timeout":       {env: map[string]string{EnvHTTPTimeout: "0"}},
		"bad rate limit":     {env: map[string]string{EnvRateLimit: "fast"}},
		"negative rate":      {env: map[string]string{EnvRateLimit: "-1"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := ""
			if tc.name != "" {
				path = writeFile(t, tc.name, tc.file)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSourceIsFormatted(t *testing.T) {
	for _, name := range []string{"config.go", "config_test.go"} {
		src, err := os.ReadFile(name)
		require.NoError(t, err)
		formatted, err := format.Source(src)
		require.NoError(t, err)
		assert.Equal(t, string(formatted), string(src), "%s is not gofmt-clean", name)
	}
}
