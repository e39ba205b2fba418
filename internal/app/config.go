package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dejay09121/Noteapp/internal/dao"
	"github.com/dejay09121/Noteapp/pkg/logger"
	"github.com/dejay09121/Noteapp/pkg/storage"
	"github.com/dejay09121/Noteapp/pkg/util"
	"github.com/dejay09121/Noteapp/pkg/workerpool"
	"github.com/dejay09121/Noteapp/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// 客户端模式
const (
	ModeRemote   = "remote"
	ModeEmbedded = "embedded"
)

// AppConfig 应用配置
type AppConfig struct {
	File      string          `yaml:"-"` // 配置文件路径，不序列化
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Security  SecurityConfig  `yaml:"security"`
	Storage   storage.Config  `yaml:"storage"`
	Client    ClientConfig    `yaml:"client"`
	Realtime  RealtimeConfig  `yaml:"realtime"`
	Tracer    TracerConfig    `yaml:"tracer"`
	RateLimit RateLimitConfig `yaml:"rate-limit"`
	Ngrok     NgrokConfig     `yaml:"ngrok"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"warn"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式 debug|release
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 监听地址
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// ContextTimeout 单个请求的处理超时（秒）
	ContextTimeout int `yaml:"context-timeout" default:"30"`
	// PprofListen pprof 监听地址，为空时不启用
	PprofListen string `yaml:"pprof-listen"`
	// WriteQueueCapacity 每个 owner 的写队列容量
	WriteQueueCapacity int `yaml:"write-queue-capacity" default:"100"`
	// WriteQueueTimeout 写操作超时
	WriteQueueTimeout string `yaml:"write-queue-timeout" default:"30s"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型 sqlite|mysql|postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path     string `yaml:"path" default:"storage/database/notes.sqlite3"`
	UserName string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool   `yaml:"auto-migrate" default:"true"`
	Charset     string `yaml:"charset"`
	ParseTime   bool   `yaml:"parse-time"`
	SSLMode     string `yaml:"ssl-mode"`
	// MaxIdleConns 最大闲置连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m、1h
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
	// Replicas 只读副本 DSN
	Replicas []string `yaml:"replicas"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" default:"noteapp-Auth-Token"`
	// TokenExpiry Token 过期时间，支持格式：7d、24h、30m
	TokenExpiry string `yaml:"token-expiry" default:"365d"`
}

// ClientConfig 命令行客户端配置
type ClientConfig struct {
	// Mode remote 通过 HTTP 访问服务端；embedded 直接读写本地数据库
	Mode      string `yaml:"mode" default:"remote"`
	ServerURL string `yaml:"server-url" default:"http://127.0.0.1:9000"`
	// Token 登录凭证，为空表示未登录
	Token string `yaml:"token"`
	// PollSpec 兜底轮询刷新的 cron 表达式，为空时不轮询
	PollSpec string `yaml:"poll-spec" default:"@every 5m"`
	// Timeout 单个远程请求超时
	Timeout string `yaml:"timeout" default:"10s"`
	// Lang 提示语言 en|zh_cn
	Lang string `yaml:"lang" default:"en"`

	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"1"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"8"`
}

// RealtimeConfig 变更通知通道配置
type RealtimeConfig struct {
	Path         string `yaml:"path" default:"/api/notes/ws"`
	PingInterval string `yaml:"ping-interval" default:"25s"`
	PingWait     string `yaml:"ping-wait" default:"40s"`
	ReconnectMin string `yaml:"reconnect-min" default:"1s"`
	ReconnectMax string `yaml:"reconnect-max" default:"30s"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用 Trace ID
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称
	Header string `yaml:"header" default:"X-Trace-ID"`
	// JaegerAgent Jaeger agent 地址，为空时不上报 span
	JaegerAgent string `yaml:"jaeger-agent"`
	ServiceName string `yaml:"service-name" default:"noteapp"`
}

// RateLimitConfig 按客户端 IP 的令牌桶限流
type RateLimitConfig struct {
	Enabled  bool   `yaml:"enabled" default:"true"`
	Interval string `yaml:"interval" default:"100ms"`
	Capacity int64  `yaml:"capacity" default:"50"`
}

// NgrokConfig ngrok 隧道配置
type NgrokConfig struct {
	Enabled   bool   `yaml:"enabled"`
	AuthToken string `yaml:"auth-token"`
	Domain    string `yaml:"domain"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// defaults.Set 只填充零值字段，YAML 中存在但为空的字段在这里补齐
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	return c, realpath, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	if err := os.WriteFile(c.File, data, 0o644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// LoggerConfig 日志器配置
func (c *AppConfig) LoggerConfig() logger.Config {
	return logger.Config{Level: c.Log.Level, File: c.Log.File, Production: c.Log.Production}
}

// DaoConfig 转换为 dao 层数据库配置
func (c *AppConfig) DaoConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		SSLMode:         c.Database.SSLMode,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		Replicas:        c.Database.Replicas,
		RunMode:         c.Server.RunMode,
	}
}

// GetWorkerPoolConfig 客户端后台刷新的 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()
	if c.Client.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.Client.WorkerPoolMaxWorkers
	}
	if c.Client.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.Client.WorkerPoolQueueSize
	}
	return cfg
}

// GetWriteQueueConfig 服务端写队列配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()
	if c.Server.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.Server.WriteQueueCapacity
	}
	cfg.WriteTimeout = durationOr(c.Server.WriteQueueTimeout, cfg.WriteTimeout)
	return cfg
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	return durationOr(c.Security.TokenExpiry, 365*24*time.Hour)
}

// GetClientTimeout 远程请求超时
func (c *AppConfig) GetClientTimeout() time.Duration {
	return durationOr(c.Client.Timeout, 10*time.Second)
}

// durationOr 解析失败或为空时返回 def
func durationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := util.ParseDuration(s); err == nil {
		return d
	}
	return def
}

// GetRateLimitInterval 令牌补充间隔
func (c *AppConfig) GetRateLimitInterval() time.Duration {
	return durationOr(c.RateLimit.Interval, 100*time.Millisecond)
}

// GetContextTimeout 单个请求的处理超时
func (c *AppConfig) GetContextTimeout() time.Duration {
	if c.Server.ContextTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Server.ContextTimeout) * time.Second
}
