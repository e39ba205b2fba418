// Package service 笔记同步与视图业务层
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/internal/selection"
	"github.com/dejay09121/Noteapp/internal/store"
	pkgapp "github.com/dejay09121/Noteapp/pkg/app"
	"github.com/dejay09121/Noteapp/pkg/code"
	apperrors "github.com/dejay09121/Noteapp/pkg/errors"
	"github.com/dejay09121/Noteapp/pkg/logger"
	"github.com/dejay09121/Noteapp/pkg/workerpool"

	"go.uber.org/zap"
)

// SyncService 同步控制器
// The only component that talks to the remote store. Every trigger funnels
// into Refresh, which is the only caller of store.ReplaceAll.
type SyncService interface {
	// Start 首次挂载：订阅变更通知并执行一次刷新
	Start(ctx context.Context) error
	// Stop 取消订阅并等待后台刷新结束
	Stop(ctx context.Context) error
	// Refresh 全量拉取并替换本地集合，未登录时静默返回
	Refresh(ctx context.Context) error
	// RefreshWithTrigger 同 Refresh，记录触发来源
	RefreshWithTrigger(ctx context.Context, trigger string) error
	// FocusRegained 视图重新可见时刷新
	FocusRegained(ctx context.Context) error
	// NotifyChanged 收到远程变更通知，异步排队刷新
	NotifyChanged(change domain.NoteChange)

	// Create 新建笔记，成功后刷新
	Create(ctx context.Context, in *domain.NoteInput) (*domain.Note, error)
	// Update 按 ID 更新笔记，成功后刷新
	Update(ctx context.Context, id string, in *domain.NoteInput) (*domain.Note, error)
	// DeleteBatch 批量删除，成功后清空选择、退出删除模式并刷新
	DeleteBatch(ctx context.Context, ids []string) error
	// DeleteSelected 删除当前选中的笔记
	DeleteSelected(ctx context.Context) error

	Store() *store.Store
	Selection() *selection.Selection
}

// SyncDeps 同步控制器依赖
type SyncDeps struct {
	Remote    domain.NoteRemote
	Changes   domain.ChangeSource // 可选
	Session   domain.SessionProvider
	Store     *store.Store
	Selection *selection.Selection
	Validator *pkgapp.Validator
	Pool      *workerpool.Pool // 可选，为空时自建
	Logger    *zap.Logger
	// OnError 后台刷新（通知、轮询）失败时回调
	OnError func(err error)
}

type syncService struct {
	remote    domain.NoteRemote
	changes   domain.ChangeSource
	session   domain.SessionProvider
	store     *store.Store
	selection *selection.Selection
	validator *pkgapp.Validator
	pool      *workerpool.Pool
	ownPool   bool
	logger    *zap.Logger
	onError   func(err error)

	// seq 最近一次发出的刷新序号
	seq atomic.Uint64
	// applyMu 串行化“序号仍为最新 → ReplaceAll”
	applyMu sync.Mutex

	mu          sync.Mutex
	unsubscribe func()
	bgCtx       context.Context
	bgCancel    context.CancelFunc
}

// NewSyncService 创建同步控制器
func NewSyncService(d SyncDeps) (SyncService, error) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Store == nil {
		d.Store = store.New()
	}
	if d.Selection == nil {
		d.Selection = selection.New()
	}
	if d.Validator == nil {
		v, err := pkgapp.NewValidator()
		if err != nil {
			return nil, err
		}
		d.Validator = v
	}
	s := &syncService{
		remote:    d.Remote,
		changes:   d.Changes,
		session:   d.Session,
		store:     d.Store,
		selection: d.Selection,
		validator: d.Validator,
		pool:      d.Pool,
		logger:    d.Logger,
		onError:   d.OnError,
	}
	if s.pool == nil {
		s.pool = workerpool.New(&workerpool.Config{MaxWorkers: 1, QueueSize: 8}, d.Logger)
		s.ownPool = true
	}
	s.bgCtx, s.bgCancel = context.WithCancel(context.Background())
	return s, nil
}

func (s *syncService) Store() *store.Store {
	return s.store
}

func (s *syncService) Selection() *selection.Selection {
	return s.selection
}

// currentUser 解析当前用户，解析失败按未登录处理
func (s *syncService) currentUser(ctx context.Context) *domain.User {
	if s.session == nil {
		return nil
	}
	user, err := s.session.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn("resolve current user failed", zap.Error(err))
		return nil
	}
	if user == nil || user.ID == "" {
		return nil
	}
	return user
}

func (s *syncService) Start(ctx context.Context) error {
	user := s.currentUser(ctx)
	if user == nil {
		s.logger.Debug("sync start skipped, user not logged in")
		return nil
	}

	// 先订阅再拉取，拉取期间发生的变更不会丢失
	if s.changes != nil {
		unsub, err := s.changes.Subscribe(s.bgCtx, user.ID, s.NotifyChanged)
		if err != nil {
			s.logger.Warn("subscribe to note changes failed", zap.String(logger.FieldUID, user.ID), zap.Error(err))
		} else {
			s.mu.Lock()
			if s.unsubscribe != nil {
				s.unsubscribe()
			}
			s.unsubscribe = unsub
			s.mu.Unlock()
		}
	}

	return s.RefreshWithTrigger(ctx, TriggerMount)
}

func (s *syncService) Stop(ctx context.Context) error {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	s.bgCancel()
	if s.ownPool {
		return s.pool.Shutdown(ctx)
	}
	return nil
}

func (s *syncService) Refresh(ctx context.Context) error {
	return s.RefreshWithTrigger(ctx, TriggerManual)
}

func (s *syncService) FocusRegained(ctx context.Context) error {
	return s.RefreshWithTrigger(ctx, TriggerFocus)
}

func (s *syncService) RefreshWithTrigger(ctx context.Context, trigger string) error {
	user := s.currentUser(ctx)
	if user == nil {
		refreshTotal.WithLabelValues(trigger, refreshSkipped).Inc()
		return nil
	}

	token := s.seq.Add(1)
	start := time.Now()
	notes, err := s.remote.List(ctx, user.ID)
	refreshDuration.WithLabelValues(trigger).Observe(time.Since(start).Seconds())
	if err != nil {
		refreshTotal.WithLabelValues(trigger, refreshFailed).Inc()
		s.logger.Warn("refresh notes failed",
			zap.String(logger.FieldUID, user.ID),
			zap.String(logger.FieldTrigger, trigger),
			zap.Uint64(logger.FieldToken, token),
			zap.Error(err))
		return apperrors.NewAppError(code.ErrorRemoteFailure, err)
	}

	owned := notes[:0:0]
	for _, n := range notes {
		if n != nil && (n.OwnerID == "" || n.OwnerID == user.ID) {
			owned = append(owned, n)
		}
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	if latest := s.seq.Load(); token != latest {
		refreshTotal.WithLabelValues(trigger, refreshStale).Inc()
		s.logger.Debug("discard stale refresh",
			zap.String(logger.FieldTrigger, trigger),
			zap.Uint64(logger.FieldToken, token),
			zap.Uint64("latest", latest))
		return nil
	}
	s.store.ReplaceAll(owned)
	refreshTotal.WithLabelValues(trigger, refreshApplied).Inc()
	s.logger.Debug("refresh applied",
		zap.String(logger.FieldTrigger, trigger),
		zap.Uint64(logger.FieldToken, token),
		zap.Int(logger.FieldCount, len(owned)),
		zap.Duration(logger.FieldDuration, time.Since(start)))
	return nil
}

func (s *syncService) NotifyChanged(change domain.NoteChange) {
	s.enqueueRefresh(TriggerNotification)
}

// enqueueRefresh 在 worker pool 上排队一次后台刷新
// A full queue already holds refreshes that have not started yet, and those
// will observe this change, so the extra one is dropped.
func (s *syncService) enqueueRefresh(trigger string) {
	err := s.pool.SubmitAsync(s.bgCtx, func(ctx context.Context) error {
		if err := s.RefreshWithTrigger(ctx, trigger); err != nil {
			s.report(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("background refresh not queued", zap.String(logger.FieldTrigger, trigger), zap.Error(err))
	}
}

func (s *syncService) report(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}

func (s *syncService) validate(in *domain.NoteInput) error {
	if in == nil {
		in = &domain.NoteInput{}
	}
	if errs := s.validator.Struct(in, code.GetGlobalDefaultLang()); len(errs) > 0 {
		return apperrors.NewAppError(code.ErrorInvalidParams, errs).WithDetails(errs.Errors()...)
	}
	return nil
}

func (s *syncService) Create(ctx context.Context, in *domain.NoteInput) (*domain.Note, error) {
	user := s.currentUser(ctx)
	if user == nil {
		writeTotal.WithLabelValues("create", "unauthenticated").Inc()
		return nil, apperrors.NewAppError(code.ErrorAuthenticationAbsent, nil)
	}
	if err := s.validate(in); err != nil {
		writeTotal.WithLabelValues("create", "invalid").Inc()
		return nil, err
	}
	note, err := s.remote.Insert(ctx, user.ID, in)
	writeTotal.WithLabelValues("create", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Warn("create note failed", zap.String(logger.FieldUID, user.ID), zap.Error(err))
		return nil, apperrors.NewAppError(code.ErrorRemoteFailure, err)
	}
	s.logger.Info("note created", zap.String(logger.FieldUID, user.ID), zap.String(logger.FieldNoteID, note.ID))
	s.refreshAfterWrite(ctx)
	return note, nil
}

func (s *syncService) Update(ctx context.Context, id string, in *domain.NoteInput) (*domain.Note, error) {
	user := s.currentUser(ctx)
	if user == nil {
		writeTotal.WithLabelValues("update", "unauthenticated").Inc()
		return nil, apperrors.NewAppError(code.ErrorAuthenticationAbsent, nil)
	}
	if id == "" {
		writeTotal.WithLabelValues("update", "invalid").Inc()
		return nil, apperrors.NewAppError(code.ErrorInvalidParams, nil).WithDetails("id is required")
	}
	if err := s.validate(in); err != nil {
		writeTotal.WithLabelValues("update", "invalid").Inc()
		return nil, err
	}
	note, err := s.remote.Update(ctx, user.ID, id, in)
	writeTotal.WithLabelValues("update", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Warn("update note failed", zap.String(logger.FieldUID, user.ID), zap.String(logger.FieldNoteID, id), zap.Error(err))
		return nil, apperrors.NewAppError(code.ErrorRemoteFailure, err)
	}
	s.logger.Info("note updated", zap.String(logger.FieldUID, user.ID), zap.String(logger.FieldNoteID, id))
	s.refreshAfterWrite(ctx)
	return note, nil
}

// refreshAfterWrite 写入成功后刷新列表，刷新失败不影响写入结果
func (s *syncService) refreshAfterWrite(ctx context.Context) {
	if err := s.RefreshWithTrigger(ctx, TriggerWrite); err != nil {
		s.report(err)
	}
}

func (s *syncService) DeleteBatch(ctx context.Context, ids []string) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		writeTotal.WithLabelValues("delete", "empty").Inc()
		s.logger.Debug(code.ErrorEmptySelection.Msg())
		return nil
	}
	user := s.currentUser(ctx)
	if user == nil {
		writeTotal.WithLabelValues("delete", "unauthenticated").Inc()
		return apperrors.NewAppError(code.ErrorAuthenticationAbsent, nil)
	}

	err := s.remote.DeleteBatch(ctx, user.ID, ids)
	writeTotal.WithLabelValues("delete", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Warn("delete notes failed", zap.String(logger.FieldUID, user.ID), zap.Int(logger.FieldCount, len(ids)), zap.Error(err))
		return apperrors.NewAppError(code.ErrorRemoteFailure, err)
	}
	s.logger.Info("notes deleted", zap.String(logger.FieldUID, user.ID), zap.Int(logger.FieldCount, len(ids)))

	s.selection.Clear()
	return s.RefreshWithTrigger(ctx, TriggerWrite)
}

func (s *syncService) DeleteSelected(ctx context.Context) error {
	return s.DeleteBatch(ctx, s.selection.Selected())
}

// uniqueIDs 去掉空值与重复值，保持首次出现顺序
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
