// Package minio MinIO 对象存储
package minio

import (
	"github.com/dejay09121/Noteapp/pkg/storage/aws_s3"

	"go.uber.org/zap"
)

type Config struct {
	Endpoint        string
	Region          string
	BucketName      string
	AccessKeyID     string
	AccessKeySecret string
	CustomPath      string
	PublicURL       string
}

// NewClient 创建 MinIO 存储实例，使用 path-style 访问
func NewClient(conf *Config, logger *zap.Logger) (*aws_s3.S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}
	return aws_s3.NewClient(&aws_s3.Config{
		Region:          region,
		BucketName:      conf.BucketName,
		AccessKeyID:     conf.AccessKeyID,
		AccessKeySecret: conf.AccessKeySecret,
		CustomPath:      conf.CustomPath,
		Endpoint:        conf.Endpoint,
		UsePathStyle:    true,
		PublicURL:       conf.PublicURL,
	}, aws_s3.WithLogger(logger), aws_s3.WithName("minio"))
}
