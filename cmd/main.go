package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/okian/guildscore/internal/adapters/http/api"
	"github.com/okian/guildscore/internal/adapters/http/swagger"
	"github.com/okian/guildscore/internal/adapters/repository"
	"github.com/okian/guildscore/internal/adapters/warcraftlogs"
	app "github.com/okian/guildscore/internal/app"
	"github.com/okian/guildscore/internal/config"
	"github.com/okian/guildscore/pkg/logger"
	"github.com/okian/guildscore/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	os.Exit(run())
}

func run() int {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 2
	}

	// Logs go to stderr so stdout carries the score tables.
	if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithJSON(cfg.LogFormat == "json")); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 2
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, log)

	if !cfg.Serve {
		if err := runOnce(ctx, svc, os.Stdout); err != nil {
			log.Error(ctx, "scoring failed", logger.Error(err))
			return 1
		}
		return 0
	}

	if err := serve(ctx, cfg, svc, log); err != nil {
		log.Error(ctx, "server failed", logger.Error(err))
		return 1
	}
	return 0
}

// newService wires the provider client, store and pipeline from cfg.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	client := warcraftlogs.New(cfg.ClientID, cfg.ClientSecret,
		warcraftlogs.WithAPIURL(cfg.APIURL),
		warcraftlogs.WithTokenURL(cfg.TokenURL),
		warcraftlogs.WithTimeout(cfg.RequestTimeout),
		warcraftlogs.WithRequestsPerSecond(cfg.RequestsPerSecond),
		warcraftlogs.WithMaxRetries(cfg.MaxRetries),
		warcraftlogs.WithLogger(log.Named("warcraftlogs")),
	)

	return app.New(client,
		app.WithLogger(log.Named("service")),
		app.WithGuild(cfg.GuildName, cfg.GuildServer, cfg.GuildRegion),
		app.WithReportLimit(cfg.ReportLimit),
		app.WithPercentileThreshold(cfg.PercentileThreshold),
		app.WithRefreshInterval(cfg.RefreshInterval),
		app.WithStore(repository.NewMemoryStore(repository.WithMaxLimit(cfg.MaxScoresLimit))),
	)
}

// scoreTables is the one-shot output: one name -> value table per metric.
type scoreTables struct {
	Meta       repository.Meta    `json:"meta"`
	Attendance map[string]float64 `json:"attendance"`
	Parse      map[string]float64 `json:"parse"`
	Ilvl       map[string]float64 `json:"ilvl"`
}

func newScoreTables(snap repository.Snapshot) scoreTables {
	out := scoreTables{
		Meta:       snap.Meta,
		Attendance: make(map[string]float64, len(snap.Scores)),
		Parse:      make(map[string]float64, len(snap.Scores)),
		Ilvl:       make(map[string]float64, len(snap.Scores)),
	}
	for name, s := range snap.Scores {
		out.Attendance[name] = s.Attendance
		out.Parse[name] = s.ParseScore
		out.Ilvl[name] = s.IlvlScore
	}
	return out
}

// runOnce computes the scoreboard a single time and writes it to w.
func runOnce(ctx context.Context, svc *app.Service, w io.Writer) error {
	snap, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newScoreTables(snap))
}

// serve refreshes on a schedule and exposes the scoreboard over HTTP until
// ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) error {
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, cfg.MaxScoresLimit).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

// startSystemMetricsUpdater periodically updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
