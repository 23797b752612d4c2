package sqldb

import (
	"context"
	"fmt"
	"time"

	"newsgraph/backend/go/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Open 根据配置的驱动打开一个 GORM 数据库实例并配置连接池。
func Open(cfg *config.SQLConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接到关系库 (%s): %w", cfg.Driver, err)
	}

	// 获取底层 *sql.DB 实例，以便进行连接池配置。
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("无法获取底层 SQL DB 实例: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	return db, nil
}

func dialectorFor(cfg *config.SQLConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres 需要 DSN")
		}
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				cfg.Username,
				cfg.Password,
				cfg.Address,
				cfg.Database,
			)
		}
		return mysql.Open(dsn), nil
	case "sqlite":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("sqlite 需要数据库文件路径")
		}
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("不支持的关系库驱动: %s", cfg.Driver)
	}
}

// Close 关闭底层连接。
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 SQL DB 实例失败: %w", err)
	}
	return sqlDB.Close()
}

// HealthCheck 检查数据库连接的健康状况。
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("数据库连接未初始化")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("无法获取底层 SQL DB 实例进行健康检查: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
