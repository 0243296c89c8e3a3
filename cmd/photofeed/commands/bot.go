package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"photo_feed/internal/bot"
	"photo_feed/internal/fetcher"
	"photo_feed/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Long: `Runs the Telegram bot until interrupted. The bot token is read from
TELEGRAM_BOT_TOKEN. When METRICS_ADDR is set, Prometheus metrics are served
on /metrics at that address.`,
		Args: cobra.NoArgs,
		RunE: runBot,
	}
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}
	log := newLogger(cfg, cmd.ErrOrStderr())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	loop := fetcher.NewLoop()
	p := newPipeline(cfg, loop, log)
	p.SetMetrics(metrics.NewCollector(reg))

	b, err := bot.New(cfg.TelegramBotToken, p, loop, cfg, log)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metrics.Handler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		log.Info("starting bot")
		b.Run(ctx)
		log.Info("bot stopped")
		return nil
	})

	return g.Wait()
}
