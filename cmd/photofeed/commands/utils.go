package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"photo_feed/internal/config"
	"photo_feed/internal/fetcher"
	"photo_feed/internal/logger"
	"photo_feed/internal/pipeline"
	"photo_feed/internal/transform"
)

// loadConfig reads the environment and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	overrides := []struct {
		flag string
		dst  *string
	}{
		{"feed-url", &cfg.FeedURL},
		{"lang", &cfg.FeedLang},
		{"log-level", &cfg.LogLevel},
		{"log-format", &cfg.LogFormat},
	}
	for _, o := range overrides {
		if flags.Changed(o.flag) {
			v, err := flags.GetString(o.flag)
			if err != nil {
				return nil, err
			}
			*o.dst = v
		}
	}
	if unsafe, _ := flags.GetBool("unsafe-http"); unsafe {
		cfg.SafeHTTP = false
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logger.New(w, cfg.LogLevel, cfg.LogFormat)
}

// newPipeline builds the search pipeline. Completions are delivered through
// dispatch.
func newPipeline(cfg *config.Config, dispatch fetcher.Dispatcher, log *slog.Logger) *pipeline.Pipeline {
	var client fetcher.HTTPClient
	if cfg.SafeHTTP {
		client = fetcher.NewSafeClient(cfg.FetchTimeout)
	} else {
		client = fetcher.NewClient(cfg.FetchTimeout)
	}

	f := fetcher.New(client, log)
	f.SetMaxBodySize(cfg.FetchMaxBody)
	f.SetDispatcher(dispatch)

	return pipeline.New(f, transform.New(log), pipeline.Settings{
		BaseURL:  cfg.FeedURL,
		Lang:     cfg.FeedLang,
		MatchAll: cfg.FeedMatchAll,
	}, log)
}
