// Package fetch retrieves result pages over HTTP with a bounded retry
// budget.
package fetch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/drawfeed/drawfeed/internal/draw"
	"github.com/drawfeed/drawfeed/internal/metrics"
)

// Config controls client behavior.
type Config struct {
	UserAgent   string
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
}

// Client fetches a single URL via Colly with exponential backoff. Attempt
// k (1-indexed) waits BackoffBase * 2^(k-1) before the next attempt; there
// is no wait before the first attempt and none after the last.
type Client struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
	sleep         func(ctx context.Context, d time.Duration) error
}

// New builds a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "drawfeed-bot/1.0 (+https://github.com/drawfeed/drawfeed)"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base := colly.NewCollector(colly.UserAgent(cfg.UserAgent))
	base.IgnoreRobotsTxt = true
	base.AllowURLRevisit = true
	base.SetRequestTimeout(cfg.Timeout)
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          8,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})

	return &Client{
		cfg:           cfg,
		baseCollector: base,
		logger:        logger,
		sleep:         sleepContext,
	}
}

// Fetch GETs the URL, retrying transport failures and non-2xx responses
// until the attempt budget runs out. Exhaustion yields a *draw.FetchError
// carrying the last underlying error.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		c.logger.Warn("fetch attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == c.cfg.MaxAttempts {
			break
		}
		wait := c.cfg.BackoffBase << (attempt - 1)
		if err := c.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	metrics.ObserveFetchFailure(url)
	return "", &draw.FetchError{URL: url, Attempts: c.cfg.MaxAttempts, Err: lastErr}
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	collector := c.baseCollector.Clone()

	var (
		body     string
		fetchErr error
		got      bool
	)
	collector.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
		got = true
	})
	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown transport error")
		}
		fetchErr = err
	})

	if err := collector.Visit(url); err != nil {
		return "", err
	}
	collector.Wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fetchErr != nil {
		return "", fetchErr
	}
	if !got {
		return "", errors.New("fetch produced no response")
	}
	return body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
