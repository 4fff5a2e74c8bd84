package querylog

import (
	"context"
	"fmt"
	"time"

	"github.com/0xERR0R/argus/config"
	"github.com/0xERR0R/argus/log"
	"github.com/0xERR0R/argus/model"
)

const cleanUpRunPeriod = 12 * time.Hour

// Store persists one entry per observed exchange
type Store interface {
	// Append assigns id and timestamp and persists the entry
	Append(ctx context.Context, entry *model.LogEntry) error

	// Recent returns up to limit entries, newest first. Failures result in an empty list.
	Recent(ctx context.Context, limit int) []model.LogEntry

	// ClearAll deletes all entries
	ClearAll(ctx context.Context) error

	// CleanUp deletes entries exceeding the retention period
	CleanUp(ctx context.Context)

	// Close releases the underlying storage
	Close() error
}

// NewStore creates the store for the configured type
func NewStore(cfg config.QueryLog) (Store, error) {
	switch cfg.Type {
	case config.QueryLogTypeNone:
		return NewNoneStore(), nil
	case config.QueryLogTypeSqlite, config.QueryLogTypeMysql, config.QueryLogTypePostgresql:
		return NewDatabaseStore(cfg)
	}

	return nil, fmt.Errorf("unsupported query log type: %s", cfg.Type)
}

// StartCleanUp removes old entries periodically until ctx is done
func StartCleanUp(ctx context.Context, store Store) {
	go periodicCleanUp(ctx, store, cleanUpRunPeriod)
}

func periodicCleanUp(ctx context.Context, store Store, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			store.CleanUp(ctx)
		case <-ctx.Done():
			log.PrefixedLog("query_log").Debug("stopping clean up")

			return
		}
	}
}
