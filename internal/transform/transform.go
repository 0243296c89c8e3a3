// Package transform turns a raw feed document into photo records.
package transform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"photo_feed/internal/model"
)

// Parse errors.
var (
	ErrMalformed    = errors.New("malformed feed document")
	ErrMissingField = errors.New("missing field")
)

// Size markers in feed image URLs.
const (
	smallSuffix = "_m."
	largeSuffix = "_b."
)

// ResultFunc receives the records of an attempt and its final status.
// records is nil unless status is model.StatusOK.
type ResultFunc func(records []model.PhotoRecord, status model.StatusCode)

// Transformer parses fetched feed documents.
type Transformer struct {
	log *slog.Logger
}

// New creates a Transformer.
func New(log *slog.Logger) *Transformer {
	return &Transformer{log: log}
}

// Transform parses raw when status is model.StatusOK and passes the outcome
// to onResult before returning. Any parse error fails the whole document with
// model.StatusFailedOrEmpty. Other statuses are passed through unparsed.
// ctx only carries log attributes.
func (t *Transformer) Transform(ctx context.Context, raw string, status model.StatusCode, onResult ResultFunc) {
	if status != model.StatusOK {
		onResult(nil, status)
		return
	}

	records, err := Parse(raw)
	if err != nil {
		t.log.ErrorContext(ctx, "parse feed", "error", err)
		onResult(nil, model.StatusFailedOrEmpty)
		return
	}

	t.log.DebugContext(ctx, "feed parsed", "records", len(records))
	onResult(records, model.StatusOK)
}

type feedDoc struct {
	Items *[]feedItem `json:"items"`
}

type feedItem struct {
	Title    *string    `json:"title"`
	Author   *string    `json:"author"`
	AuthorID *string    `json:"author_id"`
	Tags     *string    `json:"tags"`
	Media    *feedMedia `json:"media"`
}

type feedMedia struct {
	M *string `json:"m"`
}

// Parse decodes a feed document. Every item must carry title, author,
// author_id, tags and media.m as strings; the records keep item order.
func Parse(raw string) ([]model.PhotoRecord, error) {
	var doc feedDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if doc.Items == nil {
		return nil, fmt.Errorf("%w: items", ErrMissingField)
	}

	records := make([]model.PhotoRecord, 0, len(*doc.Items))
	for i, item := range *doc.Items {
		rec, err := item.record()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (it feedItem) record() (model.PhotoRecord, error) {
	fields := []struct {
		name  string
		value *string
	}{
		{"title", it.Title},
		{"author", it.Author},
		{"author_id", it.AuthorID},
		{"tags", it.Tags},
	}
	for _, f := range fields {
		if f.value == nil {
			return model.PhotoRecord{}, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	if it.Media == nil {
		return model.PhotoRecord{}, fmt.Errorf("%w: media", ErrMissingField)
	}
	if it.Media.M == nil {
		return model.PhotoRecord{}, fmt.Errorf("%w: media.m", ErrMissingField)
	}

	return model.PhotoRecord{
		Title:    *it.Title,
		Author:   *it.Author,
		AuthorID: *it.AuthorID,
		Tags:     *it.Tags,
		MediaURL: *it.Media.M,
		LargeURL: LargeURL(*it.Media.M),
	}, nil
}

// LargeURL swaps the last small-size marker in mediaURL for the large one.
// URLs without the marker are returned unchanged.
func LargeURL(mediaURL string) string {
	i := strings.LastIndex(mediaURL, smallSuffix)
	if i < 0 {
		return mediaURL
	}
	return mediaURL[:i] + largeSuffix + mediaURL[i+len(smallSuffix):]
}
