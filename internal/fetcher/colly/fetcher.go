// Package collyfetcher implements analyzer.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/page-analyzer/internal/analyzer"
)

const defaultTimeout = 15 * time.Second

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher implements analyzer.Fetcher using the Colly collector.
// Each Fetch issues exactly one GET; nothing is retried or cached.
type Fetcher struct {
	cfg       Config
	transport http.RoundTripper
	logger    *zap.Logger
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

var errNoResponse = errors.New("no response received")

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		cfg:       cfg,
		transport: newHTTPTransport(),
		logger:    logger,
	}
}

// Fetch executes a single HTTP GET using Colly.
func (f *Fetcher) Fetch(ctx context.Context, url string) (analyzer.Page, error) {
	var (
		result   analyzer.Page
		fetchErr error
	)
	start := time.Now()
	collector := f.buildCollector()
	f.configureCollectorHooks(collector, &result, &fetchErr)

	if err := f.runCollector(ctx, collector, url, &fetchErr); err != nil {
		f.logger.Warn("fetch failed", zap.String("url", url), zap.Error(err))
		return analyzer.Page{}, &analyzer.FetchError{URL: url, Err: err}
	}
	if result.StatusCode == 0 {
		return analyzer.Page{}, &analyzer.FetchError{URL: url, Err: errNoResponse}
	}
	if result.StatusCode >= http.StatusBadRequest {
		f.logger.Warn("fetch returned error status",
			zap.String("url", url),
			zap.Int("status", result.StatusCode),
		)
		return analyzer.Page{}, &analyzer.FetchError{
			URL:        url,
			StatusCode: result.StatusCode,
			Err:        errors.New(http.StatusText(result.StatusCode)),
		}
	}
	f.logger.Debug("fetch completed",
		zap.String("url", url),
		zap.Int("status", result.StatusCode),
		zap.Int("bytes", len(result.Body)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (f *Fetcher) buildCollector() *colly.Collector {
	collector := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
	)
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = true
	// Status classification happens in Fetch so 4xx/5xx bodies still reach OnResponse.
	collector.ParseHTTPErrorResponse = true
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.WithTransport(f.transport)
	return collector
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	result *analyzer.Page,
	fetchErr *error,
) {
	hooks.OnResponse(func(r *colly.Response) {
		*result = analyzer.Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
		}
	})

	hooks.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
