package app

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/soocke/screen-dup-go/config"
	"github.com/soocke/screen-dup-go/debug"
	"github.com/soocke/screen-dup-go/domain/capture"
	"github.com/soocke/screen-dup-go/images"
)

// App wires the capture session, the acquisition service and the snapshot
// writer together according to config. The service goroutine is the
// session's single calling thread; the app itself only reads published
// snapshots.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	session *capture.Session
	service capture.Service
	encoder images.Encoder
}

// Config supplies the service loop's capture sub-rectangle.
var _ capture.RegionProvider = (*config.Config)(nil)

// New opens the configured capture target and assembles the components.
// Side effects are limited to opening the capture handle.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	session, err := capture.NewSession(logger, cfg.Monitor)
	if err != nil {
		return nil, err
	}
	svc := capture.NewService(logger, session, time.Duration(cfg.AcquireTimeoutMS)*time.Millisecond)
	svc.SetRegionProvider(cfg.CaptureRegion)
	return &App{cfg: cfg, logger: logger, session: session, service: svc}, nil
}

// Run starts the acquisition service and writes snapshots on the configured
// interval until the process is interrupted.
func (a *App) Run() error {
	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return err
	}
	if a.cfg.Debug {
		debug.StartGoroutineLogger(2*time.Second, a.logger)
		debug.StartMemLogger(2*time.Second, a.logger)
	}

	a.service.Start()
	defer a.session.Close()
	defer a.service.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(a.cfg.SnapshotIntervalMS) * time.Millisecond)
	defer ticker.Stop()

	a.logger.Info("capture started",
		"monitor", monitorLabel(a.cfg.Monitor),
		"output", a.cfg.OutputDir,
		"format", a.cfg.ImageFormat,
	)
	for {
		select {
		case <-sig:
			a.logger.Info("shutting down")
			return nil
		case <-ticker.C:
			if err := a.snapshot(); err != nil {
				a.logger.Error("snapshot", "error", err)
			}
		}
	}
}

// snapshot writes the latest frame full-size plus a scaled preview. A nil
// frame simply means nothing has been captured yet.
func (a *App) snapshot() error {
	snap := a.service.LatestFrame()
	if snap.Frame == nil {
		return nil
	}
	name := fmt.Sprintf("capture-%06d.%s", snap.Sequence, a.cfg.ImageFormat)
	path := filepath.Join(a.cfg.OutputDir, name)
	if err := snap.Frame.SaveAsImage(a.encoder, path); err != nil {
		return err
	}
	preview := images.ScaleToFit(snap.Frame.ToImage(), a.cfg.PreviewMaxW, a.cfg.PreviewMaxH)
	previewPath := filepath.Join(a.cfg.OutputDir, fmt.Sprintf("preview-%06d.png", snap.Sequence))
	if err := images.WritePNG(previewPath, preview); err != nil {
		return err
	}

	stats := a.service.Stats()
	a.logger.Info("snapshot written",
		"path", path,
		"sequence", snap.Sequence,
		"acquired", stats.Acquired,
		"timeouts", stats.Timeouts,
		"avg_acquire", stats.AvgAcquire,
	)
	return nil
}

func monitorLabel(m *int) any {
	if m == nil {
		return "primary"
	}
	return *m
}
