package querylog

import (
	"context"
	"fmt"
	"time"

	"github.com/0xERR0R/argus/config"
	"github.com/0xERR0R/argus/evt"
	"github.com/0xERR0R/argus/log"
	"github.com/0xERR0R/argus/model"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type logEntry struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp     time.Time `gorm:"index"`
	Method        string
	URL           string
	Host          string `gorm:"index"`
	StatusCode    *int
	ContentType   string
	IsBlocked     bool `gorm:"index"`
	BlockReason   string
	EffectiveTLDP string
}

func (logEntry) TableName() string {
	return "log_entries"
}

func (e *logEntry) toModel() model.LogEntry {
	return model.LogEntry{
		ID:            e.ID,
		Timestamp:     e.Timestamp.UTC(),
		Method:        e.Method,
		URL:           e.URL,
		Host:          e.Host,
		StatusCode:    e.StatusCode,
		ContentType:   e.ContentType,
		IsBlocked:     e.IsBlocked,
		BlockReason:   e.BlockReason,
		EffectiveTLDP: e.EffectiveTLDP,
	}
}

// DatabaseStore persists entries with gorm
type DatabaseStore struct {
	db               *gorm.DB
	logRetentionDays uint64
}

func dbLogger() *logrus.Entry {
	return log.PrefixedLog("database_store")
}

// NewDatabaseStore connects to the configured database and migrates the schema
func NewDatabaseStore(cfg config.QueryLog) (*DatabaseStore, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case config.QueryLogTypeSqlite:
		dialector = sqlite.Open(cfg.Target)
	case config.QueryLogTypeMysql:
		dialector = mysql.Open(cfg.Target)
	case config.QueryLogTypePostgresql:
		dialector = postgres.Open(cfg.Target)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	return newDatabaseStore(dialector, cfg.LogRetentionDays, cfg.CreationAttempts, cfg.CreationCooldown.ToDuration())
}

func newDatabaseStore(target gorm.Dialector, logRetentionDays uint64,
	creationAttempts uint, creationCooldown time.Duration,
) (*DatabaseStore, error) {
	var db *gorm.DB

	err := retry.Do(
		func() error {
			var err error
			db, err = gorm.Open(target, &gorm.Config{
				Logger: logger.Default.LogMode(logger.Silent),
			})

			return err
		},
		retry.Attempts(creationAttempts),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(creationCooldown),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			dbLogger().WithField("attempt", n+1).Warn("can't create database connection, retrying: ", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("can't create database connection: %w", err)
	}

	if target.Name() == "sqlite" {
		if err := prepareSqlite(db); err != nil {
			return nil, err
		}
	}

	if err := db.AutoMigrate(&logEntry{}); err != nil {
		return nil, fmt.Errorf("can't perform auto migration: %w", err)
	}

	return &DatabaseStore{
		db:               db,
		logRetentionDays: logRetentionDays,
	}, nil
}

// sqliteCreateTable declares the id as AUTOINCREMENT, otherwise sqlite reuses ids after all
// rows were deleted. Column types match the ones AutoMigrate derives for logEntry.
const sqliteCreateTable = `CREATE TABLE IF NOT EXISTS log_entries (
	id integer PRIMARY KEY AUTOINCREMENT,
	timestamp datetime,
	method text,
	url text,
	host text,
	status_code integer,
	content_type text,
	is_blocked numeric,
	block_reason text,
	effective_tldp text
)`

func prepareSqlite(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("can't access database pool: %w", err)
	}

	// sqlite allows only one writer, serialize all operations on one connection
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec(sqliteCreateTable).Error; err != nil {
		return fmt.Errorf("can't create table: %w", err)
	}

	return nil
}

// Append implements `Store`. The insert is not bound to ctx, an exchange whose client
// went away after the response was produced is still recorded.
func (d *DatabaseStore) Append(ctx context.Context, entry *model.LogEntry) error {
	entry.Timestamp = time.Now().UTC().Truncate(time.Microsecond)
	entry.EffectiveTLDP, _ = publicsuffix.EffectiveTLDPlusOne(entry.Host)

	row := logEntry{
		Timestamp:     entry.Timestamp,
		Method:        entry.Method,
		URL:           entry.URL,
		Host:          entry.Host,
		StatusCode:    entry.StatusCode,
		ContentType:   entry.ContentType,
		IsBlocked:     entry.IsBlocked,
		BlockReason:   entry.BlockReason,
		EffectiveTLDP: entry.EffectiveTLDP,
	}

	if err := d.db.Create(&row).Error; err != nil {
		evt.Bus().Publish(evt.QueryLogWriteFailed, err)

		return fmt.Errorf("%w: can't insert log entry: %v", model.ErrStorageFailure, err)
	}

	entry.ID = row.ID

	log.FromCtx(ctx).WithField("id", row.ID).Trace("log entry persisted")

	return nil
}

// Recent implements `Store`.
func (d *DatabaseStore) Recent(ctx context.Context, limit int) []model.LogEntry {
	result := make([]model.LogEntry, 0)

	if limit <= 0 {
		return result
	}

	var rows []logEntry

	err := d.db.WithContext(ctx).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		dbLogger().Error("can't read log entries: ", err)

		return result
	}

	for i := range rows {
		result = append(result, rows[i].toModel())
	}

	return result
}

// ClearAll implements `Store`.
func (d *DatabaseStore) ClearAll(ctx context.Context) error {
	res := d.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&logEntry{})
	if res.Error != nil {
		return fmt.Errorf("%w: can't delete log entries: %v", model.ErrStorageFailure, res.Error)
	}

	dbLogger().WithField("count", res.RowsAffected).Info("all log entries deleted")

	evt.Bus().Publish(evt.QueryLogCleared)

	return nil
}

// CleanUp implements `Store`.
func (d *DatabaseStore) CleanUp(ctx context.Context) {
	if d.logRetentionDays == 0 {
		return
	}

	deletionDate := time.Now().UTC().AddDate(0, 0, -int(d.logRetentionDays))

	dbLogger().Debugf("deleting log entries with timestamp < %s", deletionDate)

	res := d.db.WithContext(ctx).Where("timestamp < ?", deletionDate).Delete(&logEntry{})
	if res.Error != nil {
		dbLogger().Error("can't delete old log entries: ", res.Error)
	}
}

// Close implements `Store`.
func (d *DatabaseStore) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
