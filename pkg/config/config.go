// Package config loads client settings from a YAML or JSON file, the
// environment and an optional .env file.
//
// Precedence: environment > config file > defaults.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/bullet"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/logger"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/sdk/websocket"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/specfetch"
)

// Environment variables read by Load.
const (
	EnvNetwork          = "BULLET_NETWORK"
	EnvEndpoint         = specfetch.EndpointEnv
	EnvHTTPTimeout      = "BULLET_HTTP_TIMEOUT"
	EnvWSConnectTimeout = "BULLET_WS_CONNECT_TIMEOUT"
	EnvProxy            = "BULLET_PROXY"
	EnvUserAgent        = "BULLET_USER_AGENT"
	EnvRateLimit        = "BULLET_RATE_LIMIT"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFile          = "LOG_FILE"
)

const (
	DefaultHTTPTimeout = 30 * time.Second
	DefaultLogLevel    = "warn"
)

// Config is the resolved client configuration.
type Config struct {
	Network          bullet.Network
	Endpoint         string // overrides Network when set
	HTTPTimeout      time.Duration
	WSConnectTimeout time.Duration
	ProxyURL         string
	UserAgent        string
	RateLimit        float64 // REST calls per second, 0 disables
	LogLevel         string
	LogFile          string
}

// ConfigFile is the on-disk layout. Durations are Go duration strings ("15s").
type ConfigFile struct {
	Network  string `yaml:"network" json:"network"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	HTTP     struct {
		Timeout   string  `yaml:"timeout" json:"timeout"`
		Proxy     string  `yaml:"proxy" json:"proxy"`
		UserAgent string  `yaml:"user_agent" json:"user_agent"`
		RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	} `yaml:"http" json:"http"`
	WebSocket struct {
		ConnectTimeout string `yaml:"connect_timeout" json:"connect_timeout"`
	} `yaml:"websocket" json:"websocket"`
	Log struct {
		Level string `yaml:"level" json:"level"`
		File  string `yaml:"file" json:"file"`
	} `yaml:"log" json:"log"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Network:          bullet.NetworkMainnet,
		HTTPTimeout:      DefaultHTTPTimeout,
		WSConnectTimeout: websocket.DefaultConnectionTimeout,
		LogLevel:         DefaultLogLevel,
	}
}

// Load reads .env (if present), then filePath (optional), then the
// environment, and validates the result.
func Load(filePath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if filePath != "" {
		cf, err := loadConfigFile(filePath)
		if err != nil {
			return nil, errors.Wrapf(err, "load config file %s", filePath)
		}
		if err := cfg.applyFile(cf); err != nil {
			return nil, errors.Wrapf(err, "config file %s", filePath)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(filePath string) (*ConfigFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cf ConfigFile
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return nil, errors.Wrap(err, "parse yaml")
		}
	case ".json":
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &cf); err != nil {
			return nil, errors.Wrap(err, "parse json")
		}
	default:
		return nil, errors.Errorf("unsupported config format %q (use .yaml, .yml or .json)", ext)
	}
	return &cf, nil
}

func (c *Config) applyFile(cf *ConfigFile) error {
	setString(&c.Endpoint, cf.Endpoint)
	setString(&c.ProxyURL, cf.HTTP.Proxy)
	setString(&c.UserAgent, cf.HTTP.UserAgent)
	setString(&c.LogLevel, cf.Log.Level)
	setString(&c.LogFile, cf.Log.File)
	if cf.Network != "" {
		c.Network = bullet.Network(cf.Network)
	}
	if cf.HTTP.RateLimit != 0 {
		c.RateLimit = cf.HTTP.RateLimit
	}
	if err := setDuration(&c.HTTPTimeout, "http.timeout", cf.HTTP.Timeout); err != nil {
		return err
	}
	return setDuration(&c.WSConnectTimeout, "websocket.connect_timeout", cf.WebSocket.ConnectTimeout)
}

func (c *Config) applyEnv() error {
	if v := getEnv(EnvNetwork, ""); v != "" {
		c.Network = bullet.Network(v)
	}
	setString(&c.Endpoint, getEnv(EnvEndpoint, ""))
	setString(&c.ProxyURL, getEnv(EnvProxy, ""))
	setString(&c.UserAgent, getEnv(EnvUserAgent, ""))
	setString(&c.LogLevel, getEnv(EnvLogLevel, ""))
	setString(&c.LogFile, getEnv(EnvLogFile, ""))
	if v := getEnv(EnvRateLimit, ""); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Errorf("invalid %s: %q", EnvRateLimit, v)
		}
		c.RateLimit = rate
	}
	if err := setDuration(&c.HTTPTimeout, EnvHTTPTimeout, getEnv(EnvHTTPTimeout, "")); err != nil {
		return err
	}
	return setDuration(&c.WSConnectTimeout, EnvWSConnectTimeout, getEnv(EnvWSConnectTimeout, ""))
}

// Validate checks the configuration for values no client could use.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		if _, err := c.Network.URL(); err != nil {
			return err
		}
	} else if !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return errors.Wrapf(bullet.ErrInvalidNetworkURL, "endpoint %q", c.Endpoint)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("http timeout must be positive")
	}
	if c.WSConnectTimeout <= 0 {
		return errors.New("websocket connect timeout must be positive")
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		return errors.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// ResolvedEndpoint is Endpoint, or the URL of Network.
func (c *Config) ResolvedEndpoint() (string, error) {
	if c.Endpoint != "" {
		return c.Endpoint, nil
	}
	return c.Network.URL()
}

// ClientOptions converts the HTTP settings into client options.
func (c *Config) ClientOptions() []bullet.Option {
	opts := []bullet.Option{bullet.WithTimeout(c.HTTPTimeout)}
	if c.ProxyURL != "" {
		opts = append(opts, bullet.WithProxy(c.ProxyURL))
	}
	if c.UserAgent != "" {
		opts = append(opts, bullet.WithUserAgent(c.UserAgent))
	}
	if c.RateLimit > 0 {
		opts = append(opts, bullet.WithRateLimit(c.RateLimit, max(1, int(c.RateLimit))))
	}
	return opts
}

// NewClient builds a TradingAPI for the configured endpoint.
func (c *Config) NewClient(extra ...bullet.Option) (*bullet.TradingAPI, error) {
	endpoint, err := c.ResolvedEndpoint()
	if err != nil {
		return nil, err
	}
	return bullet.New(endpoint, append(c.ClientOptions(), extra...)...)
}

// WSConfig returns dial settings for ConnectWSWithConfig.
func (c *Config) WSConfig() *websocket.Config {
	wc := websocket.DefaultConfig()
	wc.ConnectionTimeout = c.WSConnectTimeout
	wc.ProxyURL = c.ProxyURL
	if c.UserAgent != "" {
		wc.UserAgent = c.UserAgent
	}
	return wc
}

// LoggerConfig returns settings for logger.Init.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.LogLevel,
		OutputFile: c.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// setDuration accepts Go durations ("1m30s") or whole seconds ("90").
func setDuration(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return errors.Errorf("invalid duration for %s: %q", name, v)
	}
	*dst = d
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
