package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker logs process health (CPU, RSS) and the live connection
// count on a fixed interval.
type TelemetryWorker struct {
	log       *slog.Logger
	interval  time.Duration
	liveConns func() int
}

func NewTelemetryWorker(log *slog.Logger, interval time.Duration, liveConns func() int) *TelemetryWorker {
	return &TelemetryWorker{log: log, interval: interval, liveConns: liveConns}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping telemetry worker")
			return nil
		case <-ticker.C:
			cpu, err := p.CPUPercent()
			if err != nil {
				w.log.Debug("CPU sample failed", "error", err)
				continue
			}
			mem, err := p.MemoryInfo()
			if err != nil {
				w.log.Debug("Memory sample failed", "error", err)
				continue
			}
			w.log.Info("Telemetry",
				"connections", w.liveConns(),
				"cpu_percent", cpu,
				"rss_mb", mem.RSS/1024/1024)
		}
	}
}
