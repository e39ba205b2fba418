// Package webdav WebDAV 存储
package webdav

import (
	"context"
	"io"
	"os"
	"path"

	"github.com/dejay09121/Noteapp/pkg/fileurl"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

// Config 结构体用于存储 WebDAV 连接信息。
type Config struct {
	Endpoint   string
	User       string
	Password   string
	CustomPath string
	PublicURL  string
}

// WebDAV 结构体表示 WebDAV 客户端。
type WebDAV struct {
	Client *gowebdav.Client
	Config *Config
}

// NewClient 创建一个新的 WebDAV 客户端实例。
func NewClient(conf *Config) (*WebDAV, error) {
	c := gowebdav.NewClient(conf.Endpoint, conf.User, conf.Password)
	if err := c.Connect(); err != nil {
		return nil, errors.Wrap(err, "webdav")
	}
	return &WebDAV{Client: c, Config: conf}, nil
}

// SendFile 以流方式写入远端文件，必要时创建目录
func (w *WebDAV) SendFile(ctx context.Context, fileKey string, file io.Reader, contentType string) (string, error) {
	fileKey = fileurl.ObjectKey(w.Config.CustomPath, fileKey)

	if dir := path.Dir(fileKey); dir != "." {
		if err := w.Client.MkdirAll(dir, 0755); err != nil {
			return "", errors.Wrap(err, "webdav")
		}
	}
	if err := w.Client.WriteStream(fileKey, file, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	return fileKey, nil
}

// Delete 删除远端文件
func (w *WebDAV) Delete(ctx context.Context, fileKey string) error {
	return errors.Wrap(w.Client.Remove(fileKey), "webdav")
}

// PublicURL 文件访问地址
func (w *WebDAV) PublicURL(fileKey string) string {
	base := w.Config.PublicURL
	if base == "" {
		base = w.Config.Endpoint
	}
	return fileurl.JoinURL(base, fileKey)
}
