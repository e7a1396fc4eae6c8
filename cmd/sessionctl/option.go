package main

import (
	"github.com/jrsteele09/go-session-refresh/apiclient"
	"github.com/jrsteele09/go-session-refresh/internal/config"
	"github.com/jrsteele09/go-session-refresh/internal/logging"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Options is the root command. The struct tags are interpreted by github.com/jessevdk/go-flags.
type Options struct {
	Config   string `short:"f" long:"config" description:"config YAML path"`
	BaseURL  string `short:"u" long:"url" description:"API base URL, overrides the config"`
	LogLevel string `long:"log-level" default:"warn" description:"debug, info, warn or error"`

	Register RegisterCmd `command:"register" description:"Create an account"`
	Get      GetCmd      `command:"get" description:"Log in and GET a path"`
	Put      PutCmd      `command:"put" description:"Log in and PUT a JSON body"`
	Stress   StressCmd   `command:"stress" description:"Log in, wait, then fire concurrent requests"`
}

var opts Options

type Credentials struct {
	Email    string `short:"e" long:"email" required:"true" description:"account email"`
	Password string `short:"p" long:"password" env:"SESSIONCTL_PASSWORD" required:"true" description:"account password"`
}

type pathArg struct {
	Path string `positional-arg-name:"path" required:"yes"`
}

// newClient builds a client from the config file and flags. The registry carries the
// client's refresh metrics for the summary printed by stress.
func newClient() (*apiclient.Client, *prometheus.Registry, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, nil, err
	}
	logging.Init(opts.LogLevel, logging.FormatConsole)

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = cfg.GetAPIBaseURL()
	}
	reg := prometheus.NewRegistry()
	c, err := apiclient.New(baseURL,
		apiclient.WithConfig(cfg),
		apiclient.WithMetrics(apiclient.NewMetrics(reg)),
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create client")
	}
	return c, reg, nil
}
