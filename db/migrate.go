package db

import (
	"errors"
	"fmt"

	"cv_optimizer/config"
	"cv_optimizer/logger"

	"github.com/golang-migrate/migrate/v4"
	mysqlmigrate "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations 执行数据库迁移，必须在InitMySQLWithConfig之后调用
func RunMigrations(cfg *config.Config) error {
	driver, err := mysqlmigrate.WithInstance(DB, &mysqlmigrate.Config{})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.DB.MigrationsPath, cfg.DB.Database, driver)
	if err != nil {
		return fmt.Errorf("初始化迁移失败: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("数据库结构已是最新，无需迁移")
			return nil
		}
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("数据库迁移完成", "version", version, "dirty", dirty)
	return nil
}
