package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jrsteele09/go-session-refresh/internal/utils"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file path when Load is given an empty path.
const ConfigPathEnvVar = "CONFIG_PATH"

type Config interface {
	EnvConfig
	CorsConfig
	SessionConfig
	SecurityConfig
	ClientConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetBaseURL() string
	GetEnv() string
	GetLogLevel() string
	GetLogFormat() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	k *koanf.Koanf
}

var _ Config = mainConfig{}

// New returns the configuration built from defaults and environment variables.
func New() Config {
	c, err := Load("")
	if err != nil {
		// Defaults and env vars alone cannot fail to parse
		panic(fmt.Sprintf("config.New: %v", err))
	}
	return c
}

// Load layers defaults, an optional YAML file and environment variables, in that order.
// An empty path falls back to CONFIG_PATH; a missing file is not an error in that case.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return mainConfig{k: k}, nil
}

// settings mirrors the koanf key layout and carries the defaults.
type settings struct {
	Server   serverSettings   `koanf:"server"`
	Session  sessionSettings  `koanf:"session"`
	Security securitySettings `koanf:"security"`
	Client   clientSettings   `koanf:"client"`
	Cors     corsSettings     `koanf:"cors"`
}

type serverSettings struct {
	Port       string `koanf:"port"`
	AppName    string `koanf:"app_name"`
	DataFolder string `koanf:"data_folder"`
	BaseURL    string `koanf:"base_url"`
	Env        string `koanf:"env"`
	LogLevel   string `koanf:"log_level"`
	LogFormat  string `koanf:"log_format"`
}

type sessionSettings struct {
	JWTSecret          string        `koanf:"jwt_secret"`
	Issuer             string        `koanf:"issuer"`
	AccessTokenExpiry  time.Duration `koanf:"access_token_expiry"`
	RefreshTokenExpiry time.Duration `koanf:"refresh_token_expiry"`
	RefreshTokenLength int           `koanf:"refresh_token_length"`
	RefreshStore       string        `koanf:"refresh_store"`
}

type securitySettings struct {
	CSRFCookieName     string  `koanf:"csrf_cookie"`
	CSRFHeaderName     string  `koanf:"csrf_header"`
	CSRFTokenLength    int     `koanf:"csrf_token_length"`
	EnableRateLimiting bool    `koanf:"rate_limiting"`
	LoginRatePerSecond float64 `koanf:"login_rate"`
	LoginBurst         int     `koanf:"login_burst"`
	SecureCookies      bool    `koanf:"secure_cookies"`
}

type clientSettings struct {
	BaseURL                string        `koanf:"base_url"`
	RefreshPath            string        `koanf:"refresh_path"`
	CSRFCookieName         string        `koanf:"csrf_cookie"`
	CSRFHeaderName         string        `koanf:"csrf_header"`
	CSRFEndpoint           string        `koanf:"csrf_endpoint"`
	SessionExpiredMessages []string      `koanf:"session_expired_messages"`
	ExcludedPaths          []string      `koanf:"excluded_paths"`
	RefreshTimeout         time.Duration `koanf:"refresh_timeout"`
	RequestTimeout         time.Duration `koanf:"request_timeout"`
}

type corsSettings struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
	AllowedMethods string   `koanf:"allowed_methods"`
	AllowedHeaders string   `koanf:"allowed_headers"`
}

func defaultSettings() settings {
	return settings{
		Server: serverSettings{
			Port:       "8080",
			AppName:    "Session Server",
			DataFolder: "./data",
			BaseURL:    "http://localhost:8080",
			Env:        "DEV",
			LogLevel:   "info",
			LogFormat:  "console",
		},
		Session: sessionSettings{
			JWTSecret:          "change-me",
			Issuer:             "go-session-refresh",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
			RefreshTokenLength: 32, // 32 bytes = 256 bits
			RefreshStore:       "memory",
		},
		Security: securitySettings{
			CSRFCookieName:     "XSRF-TOKEN",
			CSRFHeaderName:     "X-XSRF-TOKEN",
			CSRFTokenLength:    32,
			EnableRateLimiting: true,
			LoginRatePerSecond: 1,
			LoginBurst:         5,
		},
		Client: clientSettings{
			BaseURL:                "http://localhost:8080",
			RefreshPath:            "/auth/refresh",
			CSRFCookieName:         "XSRF-TOKEN",
			CSRFHeaderName:         "X-XSRF-TOKEN",
			SessionExpiredMessages: []string{"Token expired", "Not authenticated"},
			ExcludedPaths:          []string{"/auth/refresh", "/auth/login", "/auth/register", "/auth/logout"},
			RefreshTimeout:         30 * time.Second,
			RequestTimeout:         30 * time.Second,
		},
		Cors: corsSettings{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: "GET, POST, PUT, PATCH, DELETE",
			AllowedHeaders: "Content-Type, Authorization",
		},
	}
}

// envMappings maps environment variables to koanf paths. Unmapped variables are ignored.
var envMappings = map[string]string{
	"port":                     "server.port",
	"app_name":                 "server.app_name",
	"folder":                   "server.data_folder",
	"data_folder":              "server.data_folder",
	"base_url":                 "server.base_url",
	"env":                      "server.env",
	"log_level":                "server.log_level",
	"log_format":               "server.log_format",
	"jwt_secret":               "session.jwt_secret",
	"jwt_issuer":               "session.issuer",
	"access_token_expiry":      "session.access_token_expiry",
	"refresh_token_expiry":     "session.refresh_token_expiry",
	"refresh_store":            "session.refresh_store",
	"csrf_cookie":              "security.csrf_cookie",
	"csrf_header":              "security.csrf_header",
	"rate_limiting":            "security.rate_limiting",
	"secure_cookies":           "security.secure_cookies",
	"api_base_url":             "client.base_url",
	"client_csrf_cookie":       "client.csrf_cookie",
	"client_csrf_header":       "client.csrf_header",
	"client_csrf_endpoint":     "client.csrf_endpoint",
	"session_expired_messages": "client.session_expired_messages",
	"refresh_timeout":          "client.refresh_timeout",
	"request_timeout":          "client.request_timeout",
	"allowed_origins":          "cors.allowed_origins",
	"allowed_headers":          "cors.allowed_headers",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// stringsValue reads a list that may come from YAML (a sequence) or from an env var
// (a comma separated string).
func (c mainConfig) stringsValue(path string) []string {
	return utils.ToStringSlice(c.k.Get(path))
}
