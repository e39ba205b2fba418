// Package upgrade 按版本执行一次性数据升级
package upgrade

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"gorm.io/gorm"
)

// SchemaVersion 数据库版本记录表
type SchemaVersion struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Version     string    `gorm:"not null;uniqueIndex;type:varchar(64)" json:"version"`
	Description string    `gorm:"type:text" json:"description"`
	AppliedAt   time.Time `gorm:"not null" json:"applied_at"`
}

// TableName 指定表名
func (SchemaVersion) TableName() string {
	return "schema_version"
}

// Migration 定义升级接口
type Migration interface {
	Version() string
	Description() string
	Up(ctx context.Context, db *gorm.DB) error
}

// MigrationManager 升级管理器
type MigrationManager struct {
	db         *gorm.DB
	logger     *zap.Logger
	migrations []Migration
}

// NewMigrationManager 创建升级管理器，未传入 migrations 时使用内置脚本
func NewMigrationManager(db *gorm.DB, logger *zap.Logger, migrations ...Migration) *MigrationManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(migrations) == 0 {
		migrations = []Migration{
			// 在这里注册所有的升级脚本
			&NoteUpdatedAtBackfill{},
		}
	}
	return &MigrationManager{db: db, logger: logger, migrations: migrations}
}

// Run 执行所有版本不高于 running 且尚未记录的升级脚本
func (m *MigrationManager) Run(ctx context.Context, running string) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&SchemaVersion{}); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied versions: %w", err)
	}

	runningVersion := canonical(running)
	executed := 0
	for _, migration := range m.migrations {
		scriptVersion := canonical(migration.Version())
		if applied[scriptVersion] {
			continue
		}
		// 新版本的脚本留给新版本执行
		if semver.IsValid(runningVersion) && semver.Compare(scriptVersion, runningVersion) > 0 {
			m.logger.Info("skip migration > running version",
				zap.String("scriptVersion", scriptVersion),
				zap.String("runningVersion", runningVersion))
			continue
		}

		m.logger.Info("applying migration",
			zap.String("scriptVersion", scriptVersion),
			zap.String("desc", migration.Description()))

		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(ctx, tx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			return tx.Create(&SchemaVersion{
				Version:     scriptVersion,
				Description: migration.Description(),
				AppliedAt:   time.Now(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", scriptVersion, err)
		}
		executed++
	}

	if executed == 0 {
		m.logger.Debug("database is already up to date")
	} else {
		m.logger.Info("upgrade completed", zap.Int("migrations_applied", executed))
	}
	return nil
}

func (m *MigrationManager) appliedVersions(ctx context.Context) (map[string]bool, error) {
	var versions []SchemaVersion
	if err := m.db.WithContext(ctx).Find(&versions).Error; err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[canonical(v.Version)] = true
	}
	return applied, nil
}

func canonical(v string) string {
	if v != "" && !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// Execute 执行升级(便捷方法)
func Execute(ctx context.Context, db *gorm.DB, logger *zap.Logger, running string) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return NewMigrationManager(db, logger).Run(ctx, running)
}
