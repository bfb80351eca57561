package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavecast/internal/app"
	"github.com/llehouerou/wavecast/internal/config"
	"github.com/llehouerou/wavecast/internal/errmsg"
	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/location"
	"github.com/llehouerou/wavecast/internal/logger"
	"github.com/llehouerou/wavecast/internal/metrics"
	"github.com/llehouerou/wavecast/internal/mpris"
	"github.com/llehouerou/wavecast/internal/playback"
	"github.com/llehouerou/wavecast/internal/player"
	"github.com/llehouerou/wavecast/internal/playlist"
	"github.com/llehouerou/wavecast/internal/server"
	"github.com/llehouerou/wavecast/internal/session"
	"github.com/llehouerou/wavecast/internal/state"
	"github.com/llehouerou/wavecast/internal/stderr"
)

const shutdownTimeout = 2 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}
}

// run starts the player. An optional argument is a feed address or shared
// link to open instead of restoring the last session.
func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, logFile, err := logger.Open(cfg.Log.File, cfg.LogLevel())
	if err != nil {
		return err
	}
	defer logFile.Close()

	st, err := state.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	registry := prometheus.NewRegistry()
	store := feed.NewStore(feed.StoreOptions{
		Fetcher: feed.NewHTTPFetcher(feed.FetcherOptions{
			UserAgent:            cfg.Feed.UserAgent,
			MaxBodySize:          cfg.Feed.MaxBodySize,
			AllowPrivateNetworks: cfg.Feed.AllowPrivateNetworks,
		}),
		Parser:   feed.NewParser(),
		Registry: st,
		Metrics:  metrics.NewCollector(registry),
		Logger:   log,
	})
	imp := cfg.GetImportConfig()
	importer := feed.NewImporter(store, imp.Rate, imp.Burst, log)

	// Capture before the audio backend initializes.
	var captured <-chan string
	if capture, err := stderr.Start(); err != nil {
		log.Warn().Err(err).Msg("stderr capture unavailable")
	} else {
		defer capture.Stop()
		captured = capture.Lines()
	}

	playbackCfg := cfg.GetPlaybackConfig()
	sink := player.New(audioClient(cfg), log)
	defer sink.Close()
	sink.SetAutoplay(playbackCfg.AutoplayEnabled())

	bridge := playback.NewBridge(sink, st, log)
	defer bridge.Close()
	events := bridge.Subscribe()

	order, err := playlist.ParseOrder(playbackCfg.Order)
	if err != nil {
		log.Warn().Err(err).Msg("using listed episode order")
	}

	ctl := session.New(session.Options{
		Store:    store,
		Importer: importer,
		Playback: bridge,
		Media:    mediaBridge(sink, playbackCfg.Threshold(), log),
		Locator:  location.NewPersistent(st),
		Base:     cfg.GetLocationBase(),
		Order:    order,
		Logger:   log,
	})
	defer ctl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.HasServer() {
		srv := server.New(ctl, registry, log)
		go func() {
			if err := srv.Start(cfg.Server.Listen); err != nil {
				log.Error().Err(err).Msg("control server stopped")
			}
		}()
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	go open(ctx, ctl, args, log)

	m := app.New(app.Options{
		Context: ctx,
		Session: ctl,
		Sink:    sink,
		Events:  events,
		Stderr:  captured,
		Logger:  log,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// open restores the saved session, or opens the address given on the
// command line.
func open(ctx context.Context, ctl *session.Controller, args []string, log zerolog.Logger) {
	if len(args) == 0 {
		ctl.Start(ctx)
		return
	}
	address := args[0]
	var err error
	if d, decodeErr := location.Decode(address); decodeErr == nil && d.Kind != location.KindEmpty {
		_, err = ctl.OpenLocation(ctx, address)
	} else {
		err = ctl.OpenFeed(ctx, address, "")
	}
	if err != nil {
		log.Warn().Err(err).Str("address", address).Msg("opening address")
	}
}

// mediaBridge connects the desktop media controls, or returns nil when the
// session bus is unavailable. Closing the bridge closes the adapter.
func mediaBridge(sink player.Interface, threshold time.Duration, log zerolog.Logger) *mpris.Bridge {
	adapter, err := mpris.New(sink)
	if err != nil {
		log.Warn().Err(err).Msg("media controls unavailable")
		return nil
	}
	return mpris.NewBridge(adapter, sink, threshold, log)
}

func audioClient(cfg *config.Config) *http.Client {
	if cfg.Feed.AllowPrivateNetworks {
		return &http.Client{}
	}
	return feed.NewSafeClient(0)
}
