// Package storage 媒体附件存储，按配置选择后端
package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dejay09121/Noteapp/pkg/code"
	"github.com/dejay09121/Noteapp/pkg/storage/aliyun_oss"
	"github.com/dejay09121/Noteapp/pkg/storage/aws_s3"
	"github.com/dejay09121/Noteapp/pkg/storage/cloudflare_r2"
	"github.com/dejay09121/Noteapp/pkg/storage/local_fs"
	"github.com/dejay09121/Noteapp/pkg/storage/minio"
	"github.com/dejay09121/Noteapp/pkg/storage/webdav"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Type = string

const (
	OSS    Type = "oss"
	R2     Type = "r2"
	S3     Type = "s3"
	LOCAL  Type = "localfs"
	MinIO  Type = "minio"
	WebDAV Type = "webdav"
)

// DefaultBucket 媒体附件默认存储桶
const DefaultBucket = "notes-media"

var StorageTypeMap = map[Type]bool{
	OSS:    true,
	R2:     true,
	S3:     true,
	LOCAL:  true,
	MinIO:  true,
	WebDAV: true,
}

// Config Unified storage configuration
type Config struct {
	Type      Type   `yaml:"type" default:"localfs"`
	IsEnabled bool   `yaml:"is-enable" default:"true"`
	PublicURL string `yaml:"public-url"`
	// CustomPath 对象键前缀
	CustomPath string `yaml:"custom-path"`

	// Cloud Storage (S3/OSS/MinIO/R2)
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name" default:"notes-media"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	AccountID       string `yaml:"account-id"` // Cloudflare R2 specific

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Local FS
	SavePath string `yaml:"save-path" default:"storage/uploads"`
}

// Storager 存储后端
type Storager interface {
	SendFile(ctx context.Context, fileKey string, file io.Reader, contentType string) (string, error)
	PublicURL(fileKey string) string
	Delete(ctx context.Context, fileKey string) error
}

var (
	sf      singleflight.Group
	mu      sync.RWMutex
	clients = make(map[string]Storager)
)

func cacheKey(c *Config) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s", c.Type, c.Endpoint, c.Region, c.BucketName, c.AccessKeyID, c.AccountID, c.User, c.SavePath)
}

// NewClient 按配置返回存储后端，相同配置复用同一实例
func NewClient(config *Config, logger *zap.Logger) (Storager, error) {
	if config == nil || !StorageTypeMap[config.Type] {
		return nil, code.ErrorInvalidStorageType
	}
	if !config.IsEnabled {
		return nil, code.ErrorStorageNotConfigure
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	key := cacheKey(config)
	mu.RLock()
	c, ok := clients[key]
	mu.RUnlock()
	if ok {
		return c, nil
	}

	v, err, _ := sf.Do(key, func() (any, error) {
		c, err := newClient(config, logger)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		clients[key] = c
		mu.Unlock()
		logger.Info("storage client created", zap.String("type", config.Type), zap.String("bucket", config.BucketName))
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Storager), nil
}

func newClient(config *Config, logger *zap.Logger) (Storager, error) {
	switch config.Type {
	case LOCAL:
		return local_fs.NewClient(&local_fs.Config{
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
			PublicURL:  config.PublicURL,
		})
	case OSS:
		return aliyun_oss.NewClient(&aliyun_oss.Config{
			Endpoint:        config.Endpoint,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
			PublicURL:       config.PublicURL,
		})
	case R2:
		return cloudflare_r2.NewClient(&cloudflare_r2.Config{
			AccountID:       config.AccountID,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
			PublicURL:       config.PublicURL,
		}, logger)
	case S3:
		return aws_s3.NewClient(&aws_s3.Config{
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
			Endpoint:        config.Endpoint,
			PublicURL:       config.PublicURL,
		}, aws_s3.WithLogger(logger))
	case MinIO:
		return minio.NewClient(&minio.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
			PublicURL:       config.PublicURL,
		}, logger)
	case WebDAV:
		return webdav.NewClient(&webdav.Config{
			Endpoint:   config.Endpoint,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
			PublicURL:  config.PublicURL,
		})
	}
	return nil, code.ErrorInvalidStorageType
}
