package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// StorageGCWorker periodically compacts Badger's value log. Badger never
// reclaims value-log space on its own; RunValueLogGC must be driven by the
// application.
type StorageGCWorker struct {
	db       *badger.DB
	log      *slog.Logger
	interval time.Duration
}

func NewStorageGCWorker(db *badger.DB, log *slog.Logger, interval time.Duration) *StorageGCWorker {
	return &StorageGCWorker{db: db, log: log, interval: interval}
}

func (w *StorageGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping storage GC worker")
			return nil
		case <-ticker.C:
			// Keep rewriting value-log files until Badger reports
			// there is nothing left worth rewriting.
			for {
				if err := w.db.RunValueLogGC(0.5); err != nil {
					break
				}
				w.log.Debug("Value log file garbage collected")
			}
		}
	}
}
