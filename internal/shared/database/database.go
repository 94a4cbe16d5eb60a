package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	oracle "github.com/godoes/gorm-oracle"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/changhyeonkim/gorm-timestamp/internal/config"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/logger"
	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp/gormplugin"
)

// DB wraps the GORM database instance
type DB struct {
	*gorm.DB
	Timestamps *gormplugin.Plugin
}

// New creates a new database connection with the timestamp plugin registered
func New(cfg *config.Config) (*DB, error) {
	dialector, err := newDialector(cfg)
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		Logger:                 newLogger(cfg),
		PrepareStmt:            true, // Prepared statements for better performance
		SkipDefaultTransaction: true, // Skip default transaction for better performance, pass tx 1.BEGIN 2.INSERT(QUERY) 3.COMMIT (3 network)
		NowFunc:                NowFunc(cfg.Timestamp),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("데이터베이스 연결 실패: %w", err)
	}

	plugin := gormplugin.New(gormplugin.WithLogger(logger.Component("timestamp")))
	if err := db.Use(plugin); err != nil {
		return nil, fmt.Errorf("타임스탬프 플러그인 등록 실패: %w", err)
	}

	// Get underlying SQL database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("데이터베이스 인스턴스 가져오기 실패: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("데이터베이스 핑 실패: %w", err)
	}

	slog.Info("데이터베이스 연결 성공",
		"driver", cfg.Database.Driver,
		"host", cfg.Database.Host,
		"service", cfg.Database.Service,
		"max_idle_conns", cfg.Database.MaxIdleConns,
		"max_open_conns", cfg.Database.MaxOpenConns,
		"conn_max_lifetime", cfg.Database.ConnMaxLifetime.String(),
		"conn_max_idle_time", cfg.Database.ConnMaxIdleTime.String(),
	)

	// Run migration based on configuration
	if err := Migrate(db, plugin, cfg); err != nil {
		return nil, fmt.Errorf("마이그레이션 실패: %w", err)
	}

	return &DB{DB: db, Timestamps: plugin}, nil
}

// NowFunc returns the clock gorm and the timestamp plugin read "now" from
func NowFunc(cfg config.TimestampConfig) func() time.Time {
	if cfg.UTC {
		return func() time.Time {
			return time.Now().UTC() // create_time, update_time 등에 UTC 사용
		}
	}
	return time.Now
}

func newDialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.GetDSN()), nil
	case config.DriverOracle:
		return oracle.Open(cfg.GetDSN()), nil
	default:
		return nil, fmt.Errorf("지원하지 않는 데이터베이스 드라이버: %s", cfg.Database.Driver)
	}
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("데이터베이스 종료 실패: %w", err)
	}

	slog.Info("데이터베이스 연결이 종료되었습니다")
	return nil
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("데이터베이스 인스턴스 가져오기 실패: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("데이터베이스 상태 확인 실패: %w", err)
	}

	return nil
}

// WithContext returns a new DB with context
func (db *DB) WithContext(ctx context.Context) *gorm.DB {
	return db.DB.WithContext(ctx)
}
