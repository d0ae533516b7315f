package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"deviation-dashboard/src/chart"
	"deviation-dashboard/src/helpers"
	"deviation-dashboard/src/logger"
	"deviation-dashboard/src/models"
	"deviation-dashboard/src/service"
)

// -----------------------------------------------------------------------------
// Exporter writes standalone chart snapshots to disk, either on demand or on
// a cron schedule. Snapshots are plain HTML files that open without the
// dashboard running.
// -----------------------------------------------------------------------------

type Exporter struct {
	Config  *models.MConfig
	Service *service.DeviationService
	Logger  *logger.Logger

	scheduler *cron.Cron
}

// -----------------------------------------------------------------------------

func NewExporter(cfg *models.MConfig, svc *service.DeviationService, log *logger.Logger) *Exporter {
	return &Exporter{
		Config:  cfg,
		Service: svc,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Start registers the cron schedule and begins running exports. No-op when
// exports are disabled.
func (e *Exporter) Start() error {
	if !e.Config.Export.Enabled {
		return nil
	}

	e.scheduler = cron.New()
	_, err := e.scheduler.AddFunc(e.Config.Export.CronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := e.RunOnce(ctx); err != nil {
			e.Logger.Error("Scheduled export failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid export cron spec %q: %w", e.Config.Export.CronSpec, err)
	}

	e.scheduler.Start()
	e.Logger.Info("Export scheduler started (%s)", e.Config.Export.CronSpec)
	return nil
}

// -----------------------------------------------------------------------------

// Stop halts the schedule and waits for a running export to finish.
func (e *Exporter) Stop() {
	if e.scheduler == nil {
		return
	}
	<-e.scheduler.Stop().Done()
}

// -----------------------------------------------------------------------------

// RunOnce exports every configured symbol. One failing symbol does not stop
// the rest; the first error is reported after all symbols were attempted.
func (e *Exporter) RunOnce(ctx context.Context) error {
	symbols := e.Config.Export.Symbols
	if len(symbols) == 0 {
		symbols = []string{e.Config.Fetcher.DefaultSymbol}
	}

	if err := os.MkdirAll(e.Config.Export.OutputDir, 0o755); err != nil {
		return fmt.Errorf("cannot create export dir: %w", err)
	}

	var firstErr error
	for _, symbol := range symbols {
		sym := symbol
		err := helpers.RetryWithBackoff(e.Logger, "export "+sym, 3, 2*time.Second, func() error {
			return e.exportSymbol(ctx, sym)
		})
		if err != nil {
			e.countExport("error")
			e.Logger.Error("Export failed for %s: %v", symbol, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		e.countExport("ok")
	}
	return firstErr
}

// -----------------------------------------------------------------------------

func (e *Exporter) exportSymbol(ctx context.Context, symbol string) error {
	result, err := e.Service.GetDeviation(ctx, service.Request{Symbol: symbol})
	if err != nil {
		return err
	}

	spec := chart.BuildChartSpec(result.Series, result.Summary, result.HasSummary)

	name := fmt.Sprintf("%s_%s.html", result.Series.Symbol, time.Now().UTC().Format("2006-01-02"))
	path := filepath.Join(e.Config.Export.OutputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer f.Close()

	if err := chart.RenderHTML(f, result.Series.Symbol+" deviation", spec); err != nil {
		return err
	}

	e.Logger.Info("Exported %s snapshot to %s", result.Series.Symbol, path)
	return nil
}

// -----------------------------------------------------------------------------

func (e *Exporter) countExport(result string) {
	if e.Service.Metrics != nil {
		e.Service.Metrics.ExportsTotal.WithLabelValues(result).Inc()
	}
}
