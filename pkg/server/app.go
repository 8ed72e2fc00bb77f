package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SmartRental/internal/usecase"
	xhttp "SmartRental/pkg/http"
	applogger "SmartRental/pkg/logger"
)

type sweeper struct {
	name string
	fn   func() int
}

// App encapsulates the application lifecycle: the initial snapshot load,
// reloads on SIGHUP and graceful shutdown on SIGINT/SIGTERM.
type App struct {
	l          *applogger.Logger
	httpServer *xhttp.Server
	holder     *usecase.SnapshotHolder
	loader     *usecase.SnapshotLoader
	svc        *usecase.FleetService
	sweepers   []sweeper
	interval   time.Duration
}

// New creates a new App instance with all dependencies.
func New(
	l *applogger.Logger,
	httpServer *xhttp.Server,
	holder *usecase.SnapshotHolder,
	loader *usecase.SnapshotLoader,
	svc *usecase.FleetService,
) *App {
	return &App{
		l:          l,
		httpServer: httpServer,
		holder:     holder,
		loader:     loader,
		svc:        svc,
		interval:   time.Minute,
	}
}

// AddSweeper registers a periodic eviction pass, e.g. for expired cache entries.
func (a *App) AddSweeper(name string, fn func() int) {
	a.sweepers = append(a.sweepers, sweeper{name: name, fn: fn})
}

func (a *App) SetMaintenanceInterval(d time.Duration) {
	if d > 0 {
		a.interval = d
	}
}

// Reload builds a fresh snapshot and swaps it in. In-flight requests finish
// on the snapshot they started with.
func (a *App) Reload(ctx context.Context) *usecase.Snapshot {
	snap := a.loader.Load(ctx)
	a.holder.Store(snap)
	return snap
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snap := a.Reload(ctx)
	for c, ok := range snap.Capabilities() {
		if !ok {
			a.l.Warn("capability unavailable", applogger.String("capability", string(c)))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	go a.maintain(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for sig := range sigCh {
		if sig != syscall.SIGHUP {
			a.l.Info("shutdown signal received", applogger.String("signal", sig.String()))
			break
		}
		snap := a.Reload(ctx)
		a.l.Info("snapshot reloaded", applogger.Int64("version", int64(snap.Version)))
	}

	cancel()
	return a.shutdown()
}

func (a *App) maintain(ctx context.Context) {
	if len(a.sweepers) == 0 {
		return
	}
	t := time.NewTicker(a.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			for _, s := range a.sweepers {
				if n := s.fn(); n > 0 {
					a.l.Debug("swept", applogger.String("component", s.name), applogger.Int("evicted", n))
				}
			}
		}
	}
}

// shutdown stops the HTTP server, then waits for in-flight alert deliveries.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	a.svc.Wait()
	a.l.Info("shutdown complete")
	return nil
}
