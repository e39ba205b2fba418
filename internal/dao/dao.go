// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dejay09121/Noteapp/internal/model"
	"github.com/dejay09121/Noteapp/pkg/util"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type            string
	Path            string
	UserName        string
	Password        string
	Host            string
	Port            int
	Name            string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	// Replicas 只读副本 DSN，非空时启用读写分离
	Replicas []string
	RunMode  string
}

// Dao 数据访问对象
type Dao struct {
	Db     *gorm.DB
	ctx    context.Context
	config *DatabaseConfig
	logger *zap.Logger
}

// DaoOption Dao 配置选项
type DaoOption func(*Dao)

// WithConfig 设置数据库配置
func WithConfig(c *DatabaseConfig) DaoOption {
	return func(d *Dao) {
		d.config = c
	}
}

// WithLogger 设置日志器
func WithLogger(l *zap.Logger) DaoOption {
	return func(d *Dao) {
		d.logger = l
	}
}

// New 创建 Dao
func New(db *gorm.DB, ctx context.Context, opts ...DaoOption) *Dao {
	d := &Dao{Db: db, ctx: ctx, config: &DatabaseConfig{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DB 带上下文的会话
func (d *Dao) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		ctx = d.ctx
	}
	return d.Db.WithContext(ctx)
}

// Migrate 按配置执行自动迁移
func (d *Dao) Migrate() error {
	if !d.config.AutoMigrate {
		return nil
	}
	if err := model.AutoMigrateAll(d.Db); err != nil {
		d.logger.Error("auto migrate failed", zap.Error(err))
		return err
	}
	return nil
}

// NewDBEngine 按配置打开数据库连接
func NewDBEngine(c DatabaseConfig) (*gorm.DB, error) {
	dialector, err := useDialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix, // 表名前缀，`Note` 的表名应该是 `t_note`
			SingularTable: true,          // 使用单数表名
		},
	})
	if err != nil {
		return nil, err
	}
	if c.RunMode == "debug" {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	if len(c.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(c.Replicas))
		for _, dsn := range c.Replicas {
			rd, err := replicaDialector(c.Type, dsn)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, rd)
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// SQLite 单写者
	if c.Type == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if d, err := util.ParseDuration(c.ConnMaxLifetime); err == nil {
		sqlDB.SetConnMaxLifetime(d)
	} else {
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if d, err := util.ParseDuration(c.ConnMaxIdleTime); err == nil {
		sqlDB.SetConnMaxIdleTime(d)
	}

	_ = db.Use(&gormTracing.OpentracingPlugin{})

	return db, nil
}

func useDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		return mysql.Open(mysqlDSN(c)), nil
	case "postgres":
		return postgres.Open(postgresDSN(c)), nil
	case "sqlite", "":
		if c.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(c.Path), os.ModePerm); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(c.Path), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", c.Type)
}

// replicaDialector 副本直接使用完整 DSN（sqlite 为文件路径）
func replicaDialector(dbType, dsn string) (gorm.Dialector, error) {
	switch dbType {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite", "":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", dbType)
}

func mysqlDSN(c DatabaseConfig) string {
	charset := c.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	host := c.Host
	if c.Port > 0 {
		host = fmt.Sprintf("%s:%d", c.Host, c.Port)
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
		c.UserName, c.Password, host, c.Name, charset, c.ParseTime)
}

func postgresDSN(c DatabaseConfig) string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		c.Host, c.UserName, c.Password, c.Name, port, sslMode)
}
