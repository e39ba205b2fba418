// Package aws_s3 基于 S3 协议的对象存储（AWS S3 及兼容服务）
package aws_s3

import (
	"context"
	"fmt"
	"io"

	"github.com/dejay09121/Noteapp/pkg/fileurl"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	Region          string
	BucketName      string
	AccessKeyID     string
	AccessKeySecret string
	CustomPath      string
	// Endpoint 兼容服务地址，为空时使用 AWS 默认地址
	Endpoint     string
	UsePathStyle bool
	// PublicURL 对外访问地址前缀，为空时按 bucket 推导
	PublicURL string
}

type S3 struct {
	S3Client        *s3.Client
	TransferManager *transfermanager.Client
	Config          *Config
	logger          *zap.Logger
	name            string
}

// Option 配置选项函数类型
type Option func(*S3)

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(s *S3) {
		s.logger = logger
	}
}

// WithName 设置错误信息中的存储名称
func WithName(name string) Option {
	return func(s *S3) {
		s.name = name
	}
}

// NewClient 创建 S3 存储实例
func NewClient(conf *Config, opts ...Option) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion(conf.Region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "aws_s3")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
		o.UsePathStyle = conf.UsePathStyle
	})

	p := &S3{
		S3Client:        client,
		TransferManager: transfermanager.New(client),
		Config:          conf,
		logger:          zap.NewNop(),
		name:            "aws_s3",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// SendFile 上传文件，返回带自定义前缀的对象键
func (p *S3) SendFile(ctx context.Context, fileKey string, file io.Reader, contentType string) (string, error) {
	fileKey = fileurl.ObjectKey(p.Config.CustomPath, fileKey)

	_, err := p.TransferManager.UploadObject(ctx, &transfermanager.UploadObjectInput{
		Bucket:      aws.String(p.Config.BucketName),
		Key:         aws.String(fileKey),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrap(err, p.name)
	}
	p.logger.Debug("object uploaded", zap.String("bucket", p.Config.BucketName), zap.String("fileKey", fileKey))
	return fileKey, nil
}

// Delete 删除对象
func (p *S3) Delete(ctx context.Context, fileKey string) error {
	_, err := p.S3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(fileKey),
	})
	return errors.Wrap(err, p.name)
}

// PublicURL 对象的公开访问地址
func (p *S3) PublicURL(fileKey string) string {
	if p.Config.PublicURL != "" {
		return fileurl.JoinURL(p.Config.PublicURL, fileKey)
	}
	if p.Config.Endpoint != "" {
		return fileurl.JoinURL(p.Config.Endpoint, p.Config.BucketName, fileKey)
	}
	return fileurl.JoinURL(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", p.Config.BucketName, p.Config.Region), fileKey)
}
