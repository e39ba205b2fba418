// Package local_fs 本地文件系统存储
package local_fs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/dejay09121/Noteapp/pkg/fileurl"

	"github.com/pkg/errors"
)

type Config struct {
	SavePath   string
	CustomPath string
	// PublicURL 访问地址前缀，服务端以静态目录方式对外提供 SavePath
	PublicURL string
}

type LocalFS struct {
	Config *Config
}

func NewClient(conf *Config) (*LocalFS, error) {
	if conf.SavePath == "" {
		return nil, errors.New("local_fs: save path is empty")
	}
	return &LocalFS{Config: conf}, nil
}

// SendFile 写入 SavePath 下的对象键路径
func (p *LocalFS) SendFile(ctx context.Context, fileKey string, file io.Reader, contentType string) (string, error) {
	fileKey = fileurl.ObjectKey(p.Config.CustomPath, fileKey)
	dst := p.FilePath(fileKey)

	if err := fileurl.CreatePath(filepath.Dir(dst), 0755); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	out, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	return fileKey, nil
}

// Delete 删除本地文件，不存在时忽略
func (p *LocalFS) Delete(ctx context.Context, fileKey string) error {
	err := os.Remove(p.FilePath(fileKey))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "local_fs")
	}
	return nil
}

// PublicURL 访问地址
func (p *LocalFS) PublicURL(fileKey string) string {
	return fileurl.JoinURL(p.Config.PublicURL, fileKey)
}

// FilePath 对象键对应的本地路径
func (p *LocalFS) FilePath(fileKey string) string {
	return filepath.Join(p.Config.SavePath, filepath.FromSlash(fileKey))
}
