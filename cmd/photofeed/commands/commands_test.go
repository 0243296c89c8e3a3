package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"photo_feed/internal/model"
)

func feedServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	body, err := os.ReadFile("../../../testdata/feed.json")
	if err != nil {
		t.Fatalf("read sample feed: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	srv := feedServer(t, http.StatusOK)
	base := []string{"search", "--feed-url", srv.URL, "--unsafe-http"}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "text output",
			args: []string{"android"},
			want: "Pixel on the desk\tnobody@flickr.com (\"jdoe\")\thttps://farm5.staticflickr.com/4233/34812345671_5f1a2b3c4d_b.jpg\n" +
				"Nougat update screen\tnobody@flickr.com (\"asmith\")\thttps://farm5.staticflickr.com/4270/34865432109_9e8d7c6b5a_b.jpg\n" +
				"(untitled)\tnobody@flickr.com (\"mlee\")\thttps://farm5.staticflickr.com/4198/34123456789_0a1b2c3d4e_b.jpg\n",
		},
		{
			name: "limit",
			args: []string{"--limit", "1", "android"},
			want: "Pixel on the desk\tnobody@flickr.com (\"jdoe\")\thttps://farm5.staticflickr.com/4233/34812345671_5f1a2b3c4d_b.jpg\n",
		},
		{
			name: "include rule",
			args: []string{"--include", "tags:update", "android"},
			want: "Nougat update screen\tnobody@flickr.com (\"asmith\")\thttps://farm5.staticflickr.com/4270/34865432109_9e8d7c6b5a_b.jpg\n",
		},
		{
			name: "exclude regex rule",
			args: []string{"--any", "--exclude-re", "title:(?i)^(pixel|nougat)", "android", "nougat"},
			want: "(untitled)\tnobody@flickr.com (\"mlee\")\thttps://farm5.staticflickr.com/4198/34123456789_0a1b2c3d4e_b.jpg\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, append(base, tt.args...)...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearchCommandJSON(t *testing.T) {
	srv := feedServer(t, http.StatusOK)

	got, err := execute(t, "search", "--feed-url", srv.URL, "--unsafe-http", "--json", "android")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(got), "\n")
	if diff := cmp.Diff(3, len(lines)); diff != "" {
		t.Fatalf("line count mismatch (-want +got):\n%s", diff)
	}

	var rec model.PhotoRecord
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode first line: %v", err)
	}
	want := model.PhotoRecord{
		Title:    "Pixel on the desk",
		Author:   `nobody@flickr.com ("jdoe")`,
		AuthorID: "94811234@N04",
		Tags:     "android nougat pixel",
		MediaURL: "https://farm5.staticflickr.com/4233/34812345671_5f1a2b3c4d_m.jpg",
		LargeURL: "https://farm5.staticflickr.com/4233/34812345671_5f1a2b3c4d_b.jpg",
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchCommandErrors(t *testing.T) {
	failing := feedServer(t, http.StatusInternalServerError)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "failed fetch",
			args:    []string{"search", "--feed-url", failing.URL, "--unsafe-http", "--retries", "0", "cats"},
			wantErr: "failed_or_empty",
		},
		{
			name:    "bad rule",
			args:    []string{"search", "--feed-url", failing.URL, "--include-re", "title:[bad", "cats"},
			wantErr: "--include-re",
		},
		{
			name:    "private address refused",
			args:    []string{"search", "--feed-url", failing.URL, "cats"},
			wantErr: "failed_or_empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RETRIES", "0")
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestBotCommandRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	_, err := execute(t, "bot")
	if err == nil || !strings.Contains(err.Error(), "TELEGRAM_BOT_TOKEN") {
		t.Fatalf("expected token error, got %v", err)
	}
}

func TestWriteRecordsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRecords(&buf, nil, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff("", buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}
