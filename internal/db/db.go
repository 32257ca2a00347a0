package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"solarsizing/internal/logger"
	"solarsizing/internal/model"
)

// Options controls the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

// Open connects to the database named by url. The scheme selects the driver:
// postgres:// or postgresql:// for PostgreSQL, mysql:// for MySQL, and
// sqlite:// (or a bare path) for SQLite.
func Open(url string, opts Options, log *zap.Logger) (*gorm.DB, error) {
	dialector, name, err := dialectorFor(url)
	if err != nil {
		return nil, err
	}

	slow := opts.SlowThreshold
	if slow == 0 {
		slow = 200 * time.Millisecond
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(log, gormlogger.Warn, slow),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", name, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s: %w", name, err)
	}

	log.Info("database connected", zap.String("driver", name))
	return gormDB, nil
}

func dialectorFor(url string) (gorm.Dialector, string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), "postgres", nil
	case strings.HasPrefix(url, "mysql://"):
		return mysql.Open(strings.TrimPrefix(url, "mysql://")), "mysql", nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(sqliteDSN(sqlitePath(url))), "sqlite", nil
	case strings.Contains(url, "://"):
		return nil, "", fmt.Errorf("unsupported database url scheme in %q", redact(url))
	default:
		return sqlite.Open(sqliteDSN(url)), "sqlite", nil
	}
}

// sqlitePath turns sqlite://./dev.db, sqlite:///abs/dev.db and sqlite://:memory: into a driver DSN.
func sqlitePath(url string) string {
	path := strings.TrimPrefix(url, "sqlite://")
	if path == "" {
		return ":memory:"
	}
	return path
}

// sqliteDefaults take the write lock at BEGIN and wait up to 5s for it, so
// concurrent version appends run one after another.
var sqliteDefaults = []struct{ key, value string }{
	{"_txlock", "immediate"},
	{"_busy_timeout", "5000"},
}

// sqliteDSN adds sqliteDefaults to path, keeping any value already set.
func sqliteDSN(path string) string {
	for _, opt := range sqliteDefaults {
		if strings.Contains(path, opt.key+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + opt.key + "=" + opt.value
	}
	return path
}

func redact(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return url
	}
	return url[:scheme+3] + "***" + url[at:]
}

// Migrate creates or updates every table.
func Migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table, children first.
func Reset(gormDB *gorm.DB) error {
	tables := model.All()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := gormDB.Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
