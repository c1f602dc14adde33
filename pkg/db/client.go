package db

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/utulok/shelter-backend/pkg/config"
	apperrors "github.com/utulok/shelter-backend/pkg/errors"
)

// Connect opens the Postgres connection pool used by every repository.
func Connect(ctx context.Context, cfg config.DBConfig) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "failed to open database connection")
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "failed to access database pool")
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "failed to ping database")
	}

	return gdb.WithContext(ctx), nil
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func WithTx(ctx context.Context, gdb *gorm.DB, fn func(tx *gorm.DB) error) error {
	return gdb.WithContext(ctx).Transaction(fn)
}

// Conn wraps the shared gorm handle so callers can take transaction and
// health-check capabilities without holding *gorm.DB directly.
type Conn struct {
	gdb *gorm.DB
}

func NewConn(gdb *gorm.DB) *Conn {
	return &Conn{gdb: gdb}
}

func (c *Conn) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return WithTx(ctx, c.gdb, fn)
}

func (c *Conn) Ping(ctx context.Context) error {
	return Ping(ctx, c.gdb)
}

// Ping checks connectivity, used by the readiness probe.
func Ping(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "failed to access database pool")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "database ping failed")
	}
	return nil
}
