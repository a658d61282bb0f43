package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seelevollerei/skland-signin/bot"
	"github.com/seelevollerei/skland-signin/internal/config"
	"github.com/seelevollerei/skland-signin/internal/metrics"
	"github.com/seelevollerei/skland-signin/scheduler"
	"github.com/seelevollerei/skland-signin/skland"
	"github.com/seelevollerei/skland-signin/store"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon: daily schedule plus metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon()
		},
	}
}

// logMessenger is the standalone fallback: outbound messages go to the log.
// A host integration replaces it with its real delivery channel.
type logMessenger struct {
	log zerolog.Logger
}

func (m logMessenger) Send(_ context.Context, destination, text string) error {
	m.log.Info().Str("destination", destination).Str("text", text).Msg("outbound message")
	return nil
}

func runDaemon() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)
	displayAppname("sklandbot")

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	client := skland.New(
		skland.WithMaxRetries(cfg.MaxRetries),
		skland.WithAttemptTimeout(cfg.AttemptTimeout),
		skland.WithConcurrency(cfg.Concurrency),
		skland.WithLogger(log.With().Str("component", "skland").Logger()),
		skland.WithRecorder(recorder),
	)
	defer client.Close()

	svc, err := bot.NewService(client, st, st, logMessenger{log: log},
		bot.WithLogger(log.With().Str("component", "bot").Logger()))
	if err != nil {
		return err
	}

	ctx := context.Background()
	if cfg.AutoSignEnabled {
		sched := scheduler.New(cfg.AutoSignHour, svc.AutoSignAll,
			scheduler.WithLogger(log.With().Str("component", "scheduler").Logger()))
		sched.Start(ctx)
		defer sched.Stop()
	} else {
		log.Info().Msg("auto sign disabled")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics endpoint listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics endpoint failed")
		}
	}()

	waitForStopSignal()
	log.Info().Msg("shutting down")
	return shutdown(server)
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
