package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLConfig configures the gorm backend.
type SQLConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	// DSN is a sqlite path (or ":memory:") or a postgres connection string.
	DSN string
	// MaxValueBytes caps a single value. Zero means no cap.
	MaxValueBytes int64
	Debug         bool
}

// Entry is one stored key.
type Entry struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     []byte
	UpdatedAt time.Time
}

// TableName keeps the table name stable regardless of gorm naming strategy.
func (Entry) TableName() string {
	return "kv_entries"
}

// SQLBackend stores values in a single kv_entries table.
type SQLBackend struct {
	db       *gorm.DB
	maxValue int64
}

// NewSQLBackend opens the database and migrates the entries table.
func NewSQLBackend(cfg SQLConfig) (*SQLBackend, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	gormLogger := logger.Default.LogMode(logger.Silent)
	if cfg.Debug {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if dialector.Name() == "sqlite" {
		// one writer; also keeps a :memory: database alive on a single connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return NewSQLBackendFromDB(db, cfg.MaxValueBytes)
}

// NewSQLBackendFromDB wraps an open connection and migrates the entries table.
func NewSQLBackendFromDB(db *gorm.DB, maxValueBytes int64) (*SQLBackend, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &SQLBackend{db: db, maxValue: maxValueBytes}, nil
}

func (s *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sql get %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *SQLBackend) Set(ctx context.Context, key string, value []byte) error {
	if s.maxValue > 0 && int64(len(value)) > s.maxValue {
		return capacityExceeded("sql", key, nil)
	}

	entry := Entry{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		if isDatabaseFull(err) {
			return capacityExceeded("sql", key, err)
		}
		return fmt.Errorf("sql set %s: %w", key, err)
	}
	return nil
}

func (s *SQLBackend) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&Entry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("sql delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLBackend) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isDatabaseFull matches SQLITE_FULL and postgres disk_full (53100).
func isDatabaseFull(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database or disk is full") || strings.Contains(msg, "SQLSTATE 53100")
}
