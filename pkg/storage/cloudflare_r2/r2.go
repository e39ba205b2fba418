// Package cloudflare_r2 Cloudflare R2 对象存储
package cloudflare_r2

import (
	"fmt"

	"github.com/dejay09121/Noteapp/pkg/storage/aws_s3"

	"go.uber.org/zap"
)

type Config struct {
	AccountID       string
	BucketName      string
	AccessKeyID     string
	AccessKeySecret string
	CustomPath      string
	PublicURL       string
}

// Endpoint R2 的 S3 兼容地址
func Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}

// NewClient 创建 R2 存储实例，R2 使用 S3 协议，region 固定为 auto
func NewClient(conf *Config, logger *zap.Logger) (*aws_s3.S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return aws_s3.NewClient(&aws_s3.Config{
		Region:          "auto",
		BucketName:      conf.BucketName,
		AccessKeyID:     conf.AccessKeyID,
		AccessKeySecret: conf.AccessKeySecret,
		CustomPath:      conf.CustomPath,
		Endpoint:        Endpoint(conf.AccountID),
		PublicURL:       conf.PublicURL,
	}, aws_s3.WithLogger(logger), aws_s3.WithName("cloudflare_r2"))
}
