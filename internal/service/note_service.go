package service

import (
	"context"
	"errors"
	"time"

	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/pkg/code"
	apperrors "github.com/dejay09121/Noteapp/pkg/errors"
	"github.com/dejay09121/Noteapp/pkg/logger"
	"github.com/dejay09121/Noteapp/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NoteService 服务端笔记业务，按 owner 隔离
// 与客户端的 NoteRemote 契约一致，内嵌模式下同步控制器直接调用它
type NoteService interface {
	domain.NoteRemote
}

type noteService struct {
	repo      domain.NoteRepository
	publisher domain.ChangePublisher
	writes    *writequeue.Manager
	logger    *zap.Logger
	now       func() time.Time
}

// NoteServiceOption 笔记服务选项
type NoteServiceOption func(*noteService)

// WithWriteQueue 同一 owner 的写操作经写队列串行执行
func WithWriteQueue(m *writequeue.Manager) NoteServiceOption {
	return func(s *noteService) {
		s.writes = m
	}
}

// NewNoteService 创建笔记服务，pub 为空时不发布变更
func NewNoteService(repo domain.NoteRepository, pub domain.ChangePublisher, lg *zap.Logger, opts ...NoteServiceOption) NoteService {
	if lg == nil {
		lg = zap.NewNop()
	}
	s := &noteService{repo: repo, publisher: pub, logger: lg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// write 执行写操作，配置了写队列时按 owner 排队
func (s *noteService) write(ctx context.Context, ownerID string, fn func() error) error {
	if s.writes == nil {
		return fn()
	}
	return s.writes.Execute(ctx, ownerID, fn)
}

func (s *noteService) List(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	if ownerID == "" {
		return nil, apperrors.NewAppError(code.ErrorAuthenticationAbsent, nil)
	}
	notes, err := s.repo.ListByOwner(ctx, ownerID)
	remoteNoteOps.WithLabelValues("list", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Error("list notes failed", zap.String(logger.FieldUID, ownerID), zap.Error(err))
		return nil, apperrors.NewAppError(code.ErrorNoteListFailed, err)
	}
	return notes, nil
}

func (s *noteService) Insert(ctx context.Context, ownerID string, in *domain.NoteInput) (*domain.Note, error) {
	if ownerID == "" {
		return nil, apperrors.NewAppError(code.ErrorAuthenticationAbsent, nil)
	}
	if in == nil {
		in = &domain.NoteInput{}
	}
	var note *domain.Note
	err := s.write(ctx, ownerID, func() (err error) {
		note, err = s.repo.Create(ctx, &domain.Note{
			OwnerID:  ownerID,
			Title:    in.Title,
			Content:  in.Content,
			MediaURL: in.MediaURL,
		})
		return err
	})
	remoteNoteOps.WithLabelValues("insert", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Error("insert note failed", zap.String(logger.FieldUID, ownerID), zap.Error(err))
		return nil, apperrors.NewAppError(code.ErrorNoteCreateFailed, err)
	}
	s.publish(ownerID, domain.NoteActionInsert)
	return note, nil
}

func (s *noteService) Update(ctx context.Context, ownerID, id string, in *domain.NoteInput) (*domain.Note, error) {
	if ownerID == "" {
		return nil, apperrors.NewAppError(code.ErrorAuthenticationAbsent, nil)
	}
	if in == nil {
		in = &domain.NoteInput{}
	}
	var note *domain.Note
	err := s.write(ctx, ownerID, func() (err error) {
		note, err = s.repo.Update(ctx, ownerID, id, in)
		return err
	})
	remoteNoteOps.WithLabelValues("update", resultLabel(err)).Inc()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewAppError(code.ErrorNoteNotFound, err)
		}
		s.logger.Error("update note failed", zap.String(logger.FieldUID, ownerID), zap.String(logger.FieldNoteID, id), zap.Error(err))
		return nil, apperrors.NewAppError(code.ErrorNoteUpdateFailed, err)
	}
	s.publish(ownerID, domain.NoteActionUpdate)
	return note, nil
}

func (s *noteService) DeleteBatch(ctx context.Context, ownerID string, ids []string) error {
	if ownerID == "" {
		return apperrors.NewAppError(code.ErrorAuthenticationAbsent, nil)
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	var n int64
	err := s.write(ctx, ownerID, func() (err error) {
		n, err = s.repo.DeleteByIDs(ctx, ownerID, ids)
		return err
	})
	remoteNoteOps.WithLabelValues("delete", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Error("delete notes failed", zap.String(logger.FieldUID, ownerID), zap.Error(err))
		return apperrors.NewAppError(code.ErrorNoteDeleteFailed, err)
	}
	s.logger.Info("notes deleted",
		zap.String(logger.FieldUID, ownerID),
		zap.Int(logger.FieldCount, len(ids)),
		zap.Int64("affected", n))
	if n > 0 {
		s.publish(ownerID, domain.NoteActionDelete)
	}
	return nil
}

func (s *noteService) publish(ownerID string, action domain.NoteAction) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(domain.NoteChange{OwnerID: ownerID, Action: action, At: s.now()})
}
