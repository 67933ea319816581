// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

// Package httpclient wraps resty with the defaults the panel's own CLI
// commands use to talk to a running panel instance.
package httpclient

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MarekChromy/Sambacontrolcenter/internal/constants"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultRetryCount      = 3
	defaultRetryWaitTime   = 2 * time.Second
	defaultRetryMaxWait    = 10 * time.Second
	defaultMaxIdleConns    = 100
	defaultIdleConnTimeout = 90 * time.Second
	defaultUserAgent       = "SambaCC"
)

// Client wraps resty.Client with panel defaults applied.
type Client struct {
	*resty.Client
	config ClientConfig
}

// ClientConfig holds configuration values for the HTTP client.
type ClientConfig struct {
	BaseURL          string
	Timeout          time.Duration
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	UserAgent        string

	Headers       map[string]string
	AllowInsecure bool

	BasicAuth struct {
		Username string
		Password string
	}

	MaxIdleConns    int
	IdleConnTimeout time.Duration

	Debug bool
}

// NewClientConfig returns a ClientConfig with sensible defaults.
func NewClientConfig() ClientConfig {
	return ClientConfig{
		Headers:          make(map[string]string),
		Timeout:          defaultTimeout,
		RetryCount:       defaultRetryCount,
		RetryWaitTime:    defaultRetryWaitTime,
		RetryMaxWaitTime: defaultRetryMaxWait,
		MaxIdleConns:     defaultMaxIdleConns,
		IdleConnTimeout:  defaultIdleConnTimeout,
		UserAgent:        defaultUserAgent + "/" + constants.SambaCCVersion,
	}
}

// NewClient creates a new resty client with the provided configuration.
func NewClient(config ClientConfig) *Client {
	client := &Client{
		Client: resty.New(),
		config: config,
	}
	client.applyConfig()
	return client
}

func (c *Client) applyConfig() {
	if c.config.Timeout > 0 {
		c.Client.SetTimeout(c.config.Timeout)
	}
	if c.config.RetryCount > 0 {
		c.Client.SetRetryCount(c.config.RetryCount)
	}
	if c.config.RetryWaitTime > 0 {
		c.Client.SetRetryWaitTime(c.config.RetryWaitTime)
	}
	if c.config.RetryMaxWaitTime > 0 {
		c.Client.SetRetryMaxWaitTime(c.config.RetryMaxWaitTime)
	}
	if c.config.UserAgent != "" {
		c.Client.SetHeader("User-Agent", c.config.UserAgent)
	}
	if c.config.BaseURL != "" {
		c.Client.SetBaseURL(c.config.BaseURL)
	}
	if c.config.Headers != nil {
		c.Client.SetHeaders(c.config.Headers)
	}
	if c.config.BasicAuth.Username != "" && c.config.BasicAuth.Password != "" {
		c.Client.SetBasicAuth(c.config.BasicAuth.Username, c.config.BasicAuth.Password)
	}
	if c.config.Debug {
		c.Client.SetDebug(true)
	} else {
		c.Client.SetDebug(false)
		// Suppress resty's own chatter
		c.Client.SetLogger(NoOpLogger{})
	}

	transport := &http.Transport{
		MaxIdleConns:    c.config.MaxIdleConns,
		IdleConnTimeout: c.config.IdleConnTimeout,
	}
	if c.config.AllowInsecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	c.Client.SetTransport(transport)
}

// NoOpLogger suppresses all resty logs.
type NoOpLogger struct{}

func (l NoOpLogger) Printf(format string, v ...interface{}) {}
func (l NoOpLogger) Debugf(format string, v ...interface{}) {}
func (l NoOpLogger) Warnf(format string, v ...interface{})  {}
func (l NoOpLogger) Errorf(format string, v ...interface{}) {}
