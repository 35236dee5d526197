package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mirrorlab/rdmsim/backend/api"
	"github.com/mirrorlab/rdmsim/backend/middleware"
	"github.com/mirrorlab/rdmsim/internal/config"
	"github.com/mirrorlab/rdmsim/internal/core"
	"github.com/mirrorlab/rdmsim/internal/effector"
	"github.com/mirrorlab/rdmsim/internal/probes"
	"github.com/mirrorlab/rdmsim/internal/simulation"
	"github.com/mirrorlab/rdmsim/internal/topology"
	"github.com/mirrorlab/rdmsim/internal/web"
)

var buildVersion = ""
var buildTime = ""

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "", "Path to config file (default: search ./config.yaml, data/config.yaml, etc.)")
	strategyName := flag.String("strategy", "fully-connected", "Initial topology strategy (fully-connected, n-connected, balanced-tree, line, ring, star, snowflake)")
	headless := flag.Bool("headless", false, "Run the simulation to sim_time and exit, without starting the dashboard server")
	addr := flag.String("addr", ":8080", "Dashboard HTTP listen address (ignored when -headless)")
	tickInterval := flag.Duration("tick-interval", 200*time.Millisecond, "Wall-clock delay between ticks when serving a live dashboard")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init zap: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(logger, *configFile)
	if err != nil {
		logger.Error("configuration error", zap.Error(err))
		return 1
	}

	strategy, err := topology.New(*strategyName)
	if err != nil {
		logger.Error("invalid topology strategy", zap.Error(err))
		return 1
	}

	network := core.NewNetwork(cfg, strategy, logger)
	mirrorProbe := probes.NewMirrorProbe()
	linkProbe := probes.NewLinkProbe()
	network.RegisterProbe(mirrorProbe)
	network.RegisterProbe(linkProbe)

	sched := effector.NewScheduler(logger)
	network.Effector = sched

	if err := network.Bootstrap(0); err != nil {
		logger.Error("bootstrap failed", zap.Error(err))
		return 1
	}

	driver := simulation.NewDriver(network, logger)

	if *headless {
		reached, err := driver.Run(context.Background(), cfg.SimTime)
		if err != nil {
			logger.Error("simulation aborted", zap.Int64("tick", reached), zap.Error(err))
			return 1
		}
		logger.Info("simulation complete",
			zap.Int64("ticks", reached),
			zap.Int("live_mirrors", network.LiveMirrorCount()),
			zap.Int("active_links", network.ActiveLinkCount()),
		)
		return 0
	}

	hub, err := web.NewHub(500, logger)
	if err != nil {
		logger.Error("failed to construct dashboard hub", zap.Error(err))
		return 1
	}
	driver.OnTick = func(tick int64) {
		hub.Publish(web.Snapshot{
			Tick:   tick,
			Mirror: mirrorProbe.Report(tick).(probes.MirrorReport),
			Link:   linkProbe.Report(tick).(probes.LinkReport),
		})
	}

	apiLayer := api.New(network, sched, mirrorProbe, linkProbe)
	apiLayer.SetBuildInfo(buildVersion, buildTime)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", api.Health)
	mux.HandleFunc("/api/version", apiLayer.Version)
	publicLimiter := middleware.RateLimiter(120)
	mux.Handle("/api/status", publicLimiter(http.HandlerFunc(apiLayer.Status)))
	mux.Handle("/api/history", publicLimiter(http.HandlerFunc(apiLayer.History)))
	mux.Handle("/api/actions", publicLimiter(http.HandlerFunc(apiLayer.ScheduleAction)))
	mux.Handle("/api/predict", publicLimiter(http.HandlerFunc(apiLayer.Predict)))
	mux.Handle("/ws", hub.HandleWS())

	loggingMW := middleware.Logging(logger)
	srv := &http.Server{Addr: *addr, Handler: loggingMW(mux), ReadTimeout: 10 * time.Second, WriteTimeout: 15 * time.Second}

	logger.Info("rdmsim starting",
		zap.String("addr", *addr),
		zap.String("strategy", strategy.Kind().String()),
		zap.Int64("sim_time", cfg.SimTime),
	)

	ctx, cancelDriver := context.WithCancel(context.Background())
	go runPaced(ctx, driver, cfg.SimTime, *tickInterval, logger)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutdown signal received, shutting down...")
	cancelDriver()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if err := srv.Close(); err != nil {
			logger.Warn("server close error", zap.Error(err))
		}
	}
	logger.Info("server stopped cleanly")
	return 0
}

// runPaced advances driver one tick at a time at wall-clock interval,
// so a connected dashboard can watch the network evolve rather than
// receiving sim_time ticks worth of snapshots all at once.
func runPaced(ctx context.Context, driver *simulation.Driver, simTime int64, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick, err := driver.Step()
			if err != nil {
				logger.Error("simulation aborted", zap.Int64("tick", tick), zap.Error(err))
				return
			}
			if tick >= simTime {
				logger.Info("simulation reached sim_time; dashboard remains available for inspection", zap.Int64("ticks", tick))
				return
			}
		}
	}
}
