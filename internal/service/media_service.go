package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/pkg/code"
	apperrors "github.com/dejay09121/Noteapp/pkg/errors"
	"github.com/dejay09121/Noteapp/pkg/logger"

	"go.uber.org/zap"
)

const (
	// MediaKeyPrefix 上传对象键前缀
	MediaKeyPrefix = "private/"

	contentTypeVideo = "video/mp4"
	contentTypeImage = "image/jpeg"
)

// MediaService 媒体附件上传
type MediaService interface {
	// Upload 上传本地文件并返回可公开访问的 URL
	// 已有上传进行中时返回 ErrorUploadInProgress
	Upload(ctx context.Context, localPath string) (string, error)
	// Uploading 是否有上传正在进行
	Uploading() bool
}

type mediaService struct {
	store     domain.MediaStore
	logger    *zap.Logger
	now       func() time.Time
	uploading atomic.Bool
}

// NewMediaService 创建 MediaService，st 为空时所有上传返回 ErrorStorageNotConfigure
func NewMediaService(st domain.MediaStore, lg *zap.Logger) MediaService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &mediaService{store: st, logger: lg, now: time.Now}
}

func (m *mediaService) Uploading() bool {
	return m.uploading.Load()
}

func (m *mediaService) Upload(ctx context.Context, localPath string) (string, error) {
	if m.store == nil {
		return "", apperrors.NewAppError(code.ErrorStorageNotConfigure, nil)
	}
	if !m.uploading.CompareAndSwap(false, true) {
		return "", apperrors.NewAppError(code.ErrorUploadInProgress, nil)
	}
	defer m.uploading.Store(false)

	f, err := os.Open(localPath)
	if err != nil {
		return "", apperrors.NewAppError(code.ErrorMediaFailure, err)
	}
	defer f.Close()

	key := MediaKey(localPath, m.now())
	start := time.Now()
	storedKey, err := m.store.SendFile(ctx, key, f, MediaContentType(localPath))
	if err != nil {
		m.logger.Warn("media upload failed", zap.String(logger.FieldFileKey, key), zap.Error(err))
		return "", apperrors.NewAppError(code.ErrorMediaFailure, err)
	}
	url := m.store.PublicURL(storedKey)
	m.logger.Info("media uploaded",
		zap.String(logger.FieldFileKey, storedKey),
		zap.Duration(logger.FieldDuration, time.Since(start)))
	return url, nil
}

// MediaKey 生成对象键 private/<毫秒时间戳>.<扩展名>，缺省扩展名为 jpg
func MediaKey(localPath string, at time.Time) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(localPath)), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s%d.%s", MediaKeyPrefix, at.UnixMilli(), ext)
}

// MediaContentType .mp4 按视频上传，其余按 JPEG 图片上传
func MediaContentType(localPath string) string {
	if strings.HasSuffix(strings.ToLower(localPath), ".mp4") {
		return contentTypeVideo
	}
	return contentTypeImage
}
