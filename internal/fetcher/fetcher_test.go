package fetcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"photo_feed/internal/model"
)

type mockTransport struct {
	body       string
	statusCode int
	err        error
	closeErr   error
	release    chan struct{}
	calls      atomic.Int32
}

func (m *mockTransport) Do(_ *http.Request) (*http.Response, error) {
	m.calls.Add(1)
	if m.release != nil {
		<-m.release
	}
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       &closeErrBody{Reader: bytes.NewBufferString(m.body), err: m.closeErr},
	}, nil
}

type closeErrBody struct {
	io.Reader
	err error
}

func (b *closeErrBody) Close() error { return b.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type outcome struct {
	Body   string
	Status model.StatusCode
}

func fetchSync(t *testing.T, f *Fetcher, rawURL string) outcome {
	t.Helper()
	f.SetExecutor(Sync{})
	var got []outcome
	f.Fetch(context.Background(), rawURL, func(body string, status model.StatusCode) {
		got = append(got, outcome{Body: body, Status: status})
	})
	if len(got) != 1 {
		t.Fatalf("onComplete called %d times, want 1", len(got))
	}
	return got[0]
}

func TestFetch(t *testing.T) {
	tests := []struct {
		name      string
		transport *mockTransport
		url       string
		want      outcome
		wantCalls int32
	}{
		{
			name:      "successful fetch",
			transport: &mockTransport{body: `{"items":[]}`, statusCode: 200},
			url:       "https://example.com/feed",
			want:      outcome{Body: "{\"items\":[]}\n", Status: model.StatusOK},
			wantCalls: 1,
		},
		{
			name:      "lines are rejoined with newline",
			transport: &mockTransport{body: "{\r\n\"items\":\r[]\n}", statusCode: 200},
			url:       "https://example.com/feed",
			want:      outcome{Body: "{\n\"items\":\n[]\n}\n", Status: model.StatusOK},
			wantCalls: 1,
		},
		{
			name:      "empty body is ok",
			transport: &mockTransport{body: "", statusCode: 200},
			url:       "https://example.com/feed",
			want:      outcome{Body: "", Status: model.StatusOK},
			wantCalls: 1,
		},
		{
			name:      "close error does not override status",
			transport: &mockTransport{body: "{}", statusCode: 200, closeErr: errors.New("close failed")},
			url:       "https://example.com/feed",
			want:      outcome{Body: "{}\n", Status: model.StatusOK},
			wantCalls: 1,
		},
		{
			name:      "http error status",
			transport: &mockTransport{body: "not found", statusCode: 404},
			url:       "https://example.com/feed",
			want:      outcome{Status: model.StatusFailedOrEmpty},
			wantCalls: 1,
		},
		{
			name:      "network error",
			transport: &mockTransport{err: io.ErrUnexpectedEOF},
			url:       "https://example.com/feed",
			want:      outcome{Status: model.StatusFailedOrEmpty},
			wantCalls: 1,
		},
		{
			name:      "malformed url",
			transport: &mockTransport{body: "{}", statusCode: 200},
			url:       "http://[::1",
			want:      outcome{Status: model.StatusFailedOrEmpty},
			wantCalls: 0,
		},
		{
			name:      "missing url",
			transport: &mockTransport{body: "{}", statusCode: 200},
			url:       "",
			want:      outcome{Status: model.StatusNotInitialized},
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.transport, discardLogger())
			got := fetchSync(t, f, tt.url)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("outcome mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCalls, tt.transport.calls.Load()); diff != "" {
				t.Errorf("network calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchBodyLimit(t *testing.T) {
	tests := []struct {
		name string
		body string
		want model.StatusCode
	}{
		{name: "at limit", body: strings.Repeat("a", 16), want: model.StatusOK},
		{name: "over limit", body: strings.Repeat("a", 17), want: model.StatusFailedOrEmpty},
		{name: "over limit across lines", body: strings.Repeat("a\n", 9), want: model.StatusFailedOrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(&mockTransport{body: tt.body, statusCode: 200}, discardLogger())
			f.SetMaxBodySize(16)
			got := fetchSync(t, f, "https://example.com/feed")
			if diff := cmp.Diff(tt.want, got.Status); diff != "" {
				t.Errorf("status mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchIsAsynchronous(t *testing.T) {
	transport := &mockTransport{body: "{}", statusCode: 200, release: make(chan struct{})}
	f := New(transport, discardLogger())

	done := make(chan outcome, 1)
	f.Fetch(context.Background(), "https://example.com/feed", func(body string, status model.StatusCode) {
		done <- outcome{Body: body, Status: status}
	})

	select {
	case <-done:
		t.Fatal("onComplete ran before the request was released")
	default:
	}

	close(transport.release)

	select {
	case got := <-done:
		if diff := cmp.Diff(outcome{Body: "{}\n", Status: model.StatusOK}, got); diff != "" {
			t.Errorf("outcome mismatch (-want +got):\n%s", diff)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for onComplete")
	}
}

func TestFetchIgnoresCancellation(t *testing.T) {
	transport := &mockTransport{body: "{}", statusCode: 200}
	f := New(transport, discardLogger())
	f.SetExecutor(Sync{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got model.StatusCode
	f.Fetch(ctx, "https://example.com/feed", func(_ string, status model.StatusCode) {
		got = status
	})
	if diff := cmp.Diff(model.StatusOK, got); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
}

func TestReadLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "single line without terminator", in: "abc", want: "abc\n"},
		{name: "single line with terminator", in: "abc\n", want: "abc\n"},
		{name: "crlf", in: "a\r\nb\r\n", want: "a\nb\n"},
		{name: "lone cr", in: "a\rb", want: "a\nb\n"},
		{name: "trailing cr", in: "a\r", want: "a\n"},
		{name: "blank lines kept", in: "a\n\nb", want: "a\n\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readLines(strings.NewReader(tt.in), 1024)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("readLines() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
