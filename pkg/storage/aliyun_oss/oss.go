// Package aliyun_oss 阿里云 OSS 对象存储
package aliyun_oss

import (
	"context"
	"io"
	"strings"

	"github.com/dejay09121/Noteapp/pkg/fileurl"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
)

type Config struct {
	Endpoint        string
	BucketName      string
	AccessKeyID     string
	AccessKeySecret string
	CustomPath      string
	PublicURL       string
}

type OSS struct {
	Client *oss.Client
	Bucket *oss.Bucket
	Config *Config
}

// NewClient 创建 OSS 存储实例
func NewClient(conf *Config) (*OSS, error) {
	client, err := oss.New(conf.Endpoint, conf.AccessKeyID, conf.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	bucket, err := client.Bucket(conf.BucketName)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	return &OSS{Client: client, Bucket: bucket, Config: conf}, nil
}

// SendFile 上传文件
func (p *OSS) SendFile(ctx context.Context, fileKey string, file io.Reader, contentType string) (string, error) {
	fileKey = fileurl.ObjectKey(p.Config.CustomPath, fileKey)
	if err := p.Bucket.PutObject(fileKey, file, oss.ContentType(contentType), oss.WithContext(ctx)); err != nil {
		return "", errors.Wrap(err, "aliyun_oss")
	}
	return fileKey, nil
}

// Delete 删除对象
func (p *OSS) Delete(ctx context.Context, fileKey string) error {
	return errors.Wrap(p.Bucket.DeleteObject(fileKey, oss.WithContext(ctx)), "aliyun_oss")
}

// PublicURL 对象的公开访问地址，默认 https://<bucket>.<endpoint>/<key>
func (p *OSS) PublicURL(fileKey string) string {
	if p.Config.PublicURL != "" {
		return fileurl.JoinURL(p.Config.PublicURL, fileKey)
	}
	host := strings.TrimPrefix(strings.TrimPrefix(p.Config.Endpoint, "https://"), "http://")
	return fileurl.JoinURL("https://"+p.Config.BucketName+"."+host, fileKey)
}
