package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"tutor-chat/observability"
)

// Heartbeat periodically logs a health line combining chat counters with
// the process's own CPU and memory figures. It is observability only; no
// domain state depends on it.
type Heartbeat struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	interval time.Duration
}

func NewHeartbeat(log *slog.Logger, monitor *observability.Monitor, interval time.Duration) *Heartbeat {
	return &Heartbeat{log: log, monitor: monitor, interval: interval}
}

func (w *Heartbeat) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := w.monitor.Snapshot()

			args := []any{
				"connected_users", stats.ConnectedUsers,
				"messages_stored", stats.MessagesStored,
				"delivered", stats.Delivered,
				"delivery_dropped", stats.DeliveryDropped,
				"read_receipts", stats.ReadReceipts,
				"conversations_created", stats.ConversationsNew,
			}

			if mem, err := proc.MemoryInfo(); err == nil {
				args = append(args, "rss_mb", mem.RSS/1024/1024)
			}
			if cpu, err := proc.CPUPercent(); err == nil {
				args = append(args, "cpu_percent", cpu)
			}

			w.log.Info("heartbeat", args...)
		}
	}
}
