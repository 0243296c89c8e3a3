// Package pipeline wires the request builder, fetcher and transformer into a
// single search operation for display layers.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"photo_feed/internal/fetcher"
	"photo_feed/internal/logger"
	"photo_feed/internal/model"
	"photo_feed/internal/transform"
)

var errAttemptFailed = errors.New("attempt failed")

// minBackoff replaces a non-positive retry base.
const minBackoff = 10 * time.Millisecond

// Recorder receives the outcome of every attempt.
type Recorder interface {
	RecordAttempt(status model.StatusCode, duration time.Duration, records int)
}

type noopRecorder struct{}

func (noopRecorder) RecordAttempt(model.StatusCode, time.Duration, int) {}

// Settings is the feed configuration shared by every search.
type Settings struct {
	BaseURL  string
	Lang     string
	MatchAll bool
}

// Pipeline runs feed searches.
type Pipeline struct {
	fetcher     *fetcher.Fetcher
	transformer *transform.Transformer
	settings    Settings
	metrics     Recorder
	log         *slog.Logger
}

// New creates a Pipeline.
func New(f *fetcher.Fetcher, t *transform.Transformer, settings Settings, log *slog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:     f,
		transformer: t,
		settings:    settings,
		metrics:     noopRecorder{},
		log:         log,
	}
}

// SetMetrics sets the Recorder notified after each attempt.
func (p *Pipeline) SetMetrics(r Recorder) {
	p.metrics = r
}

// Request returns the request for tags using the configured feed settings.
func (p *Pipeline) Request(tags string) model.FetchRequest {
	return model.FetchRequest{
		BaseURL:  p.settings.BaseURL,
		Tags:     tags,
		Lang:     p.settings.Lang,
		MatchAll: p.settings.MatchAll,
	}
}

// Search starts one attempt for req. onResult is called exactly once, on the
// fetcher's completion context. Callers must treat records as absent unless
// status is model.StatusOK.
func (p *Pipeline) Search(ctx context.Context, req model.FetchRequest, onResult transform.ResultFunc) {
	ctx = logger.Ctx(ctx,
		slog.String("attempt_id", uuid.NewString()),
		slog.String("tags", req.Tags),
	)
	start := time.Now()

	rawURL := fetcher.BuildURL(req)
	p.log.DebugContext(ctx, "search started", "url", rawURL, "match_all", req.MatchAll)

	p.fetcher.Fetch(ctx, rawURL, func(body string, status model.StatusCode) {
		p.transformer.Transform(ctx, body, status, func(records []model.PhotoRecord, status model.StatusCode) {
			p.metrics.RecordAttempt(status, time.Since(start), len(records))
			p.log.InfoContext(ctx, "search finished",
				"status", status,
				"records", len(records),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			onResult(records, status)
		})
	})
}

// SearchWait runs Search and blocks until its result is delivered. The
// fetcher's dispatcher must not depend on the calling goroutine.
func (p *Pipeline) SearchWait(ctx context.Context, req model.FetchRequest) model.FetchResult {
	done := make(chan model.FetchResult, 1)
	p.Search(ctx, req, func(records []model.PhotoRecord, status model.StatusCode) {
		done <- model.FetchResult{Records: records, Status: status}
	})
	return <-done
}

// SearchRetry runs SearchWait, repeating it with exponential backoff while the
// attempt ends in model.StatusFailedOrEmpty, up to retries extra attempts.
// Cancelling ctx stops further attempts. A non-positive base is raised to
// minBackoff.
func (p *Pipeline) SearchRetry(ctx context.Context, req model.FetchRequest, retries uint64, base time.Duration) model.FetchResult {
	res := model.FetchResult{Status: model.StatusFailedOrEmpty}
	if base <= 0 {
		base = minBackoff
	}

	attempt := 0
	b := retry.WithMaxRetries(retries, retry.NewExponential(base))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		res = p.SearchWait(ctx, req)
		if res.Status == model.StatusFailedOrEmpty {
			return retry.RetryableError(errAttemptFailed)
		}
		return nil
	})
	if err != nil {
		p.log.WarnContext(ctx, "search gave up", "tags", req.Tags, "attempts", attempt, "error", err)
	}
	return res
}
