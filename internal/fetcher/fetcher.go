// Package fetcher downloads the raw photo feed and reports the outcome as a
// model.StatusCode.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"photo_feed/internal/model"
)

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CompleteFunc receives the outcome of a fetch. body is empty unless status
// is model.StatusOK.
type CompleteFunc func(body string, status model.StatusCode)

// Fetcher downloads feed documents.
type Fetcher struct {
	client      HTTPClient
	exec        Executor
	dispatch    Dispatcher
	log         *slog.Logger
	maxBodySize int64
	userAgent   string
}

// New creates a Fetcher that runs each download on its own goroutine and
// calls completions on that same goroutine.
func New(client HTTPClient, log *slog.Logger) *Fetcher {
	return &Fetcher{
		client:      client,
		exec:        Async{},
		dispatch:    Inline{},
		log:         log,
		maxBodySize: DefaultMaxBodySize,
		userAgent:   "PhotoFeed/1.0",
	}
}

// SetExecutor overrides how downloads are run.
func (f *Fetcher) SetExecutor(e Executor) {
	f.exec = e
}

// SetDispatcher overrides where completions are delivered.
func (f *Fetcher) SetDispatcher(d Dispatcher) {
	f.dispatch = d
}

// SetMaxBodySize overrides DefaultMaxBodySize.
func (f *Fetcher) SetMaxBodySize(n int64) {
	f.maxBodySize = n
}

// Fetch downloads rawURL and calls onComplete exactly once through the
// configured Dispatcher. Failures are logged and reported only as a status.
// Cancelling ctx does not abort a fetch that has started.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, onComplete CompleteFunc) {
	ctx = context.WithoutCancel(ctx)
	f.exec.Go(func() {
		body, status := f.download(ctx, rawURL)
		f.dispatch.Dispatch(func() {
			onComplete(body, status)
		})
	})
}

func (f *Fetcher) download(ctx context.Context, rawURL string) (string, model.StatusCode) {
	if rawURL == "" {
		f.log.WarnContext(ctx, "fetch without url", "status", model.StatusNotInitialized)
		return "", model.StatusNotInitialized
	}

	f.log.DebugContext(ctx, "fetch started", "url", rawURL, "status", model.StatusProcessing)

	body, err := f.get(ctx, rawURL)
	if err != nil {
		f.log.ErrorContext(ctx, "fetch feed", "url", rawURL, "error", err)
		return "", model.StatusFailedOrEmpty
	}

	f.log.DebugContext(ctx, "fetch finished", "url", rawURL, "bytes", len(body), "status", model.StatusOK)
	return body, model.StatusOK
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.log.WarnContext(ctx, "close response body", "url", rawURL, "error", err)
		}
	}()

	f.log.DebugContext(ctx, "response received", "http_status", resp.StatusCode)
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := readLines(resp.Body, f.maxBodySize)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

