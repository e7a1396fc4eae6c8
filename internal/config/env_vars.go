package config

import (
	"fmt"
	"os"
	"strings"
)

func (c mainConfig) GetPort() string {
	port := c.k.String("server.port")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (c mainConfig) GetAppName() string {
	return c.k.String("server.app_name")
}

func (c mainConfig) GetDataFolder() string {
	return c.k.String("server.data_folder")
}

// GetBaseURL returns the public base URL of the session server (e.g., "https://api.example.com")
func (c mainConfig) GetBaseURL() string {
	return strings.TrimSuffix(c.k.String("server.base_url"), "/")
}

func (c mainConfig) GetEnv() string {
	env := c.k.String("server.env")
	if env == "" {
		return "DEV"
	}
	return strings.ToUpper(env)
}

func (c mainConfig) GetLogLevel() string {
	return c.k.String("server.log_level")
}

func (c mainConfig) GetLogFormat() string {
	return c.k.String("server.log_format")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
