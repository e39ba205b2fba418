package dao

import (
	"context"
	"time"

	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/internal/model"
	"github.com/dejay09121/Noteapp/pkg/convert"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
	now func() time.Time
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao, now: time.Now}
}

// toDomain 将数据库模型转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) (*domain.Note, error) {
	if m == nil {
		return nil, nil
	}
	n := &domain.Note{}
	if err := convert.StructAssign(m, n); err != nil {
		return nil, err
	}
	return n, nil
}

// ListByOwner 按 created_at 倒序获取 owner 的全部笔记
func (r *noteRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	var rows []*model.Note
	err := r.dao.DB(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Note, 0, len(rows))
	for _, m := range rows {
		n, err := r.toDomain(m)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Create 分配 UUID 与创建时间后写入
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := &model.Note{}
	if err := convert.StructAssign(note, m); err != nil {
		return nil, err
	}
	m.ID = uuid.New().String()
	m.CreatedAt = r.now().UTC()
	m.UpdatedAt = m.CreatedAt
	if err := r.dao.DB(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m)
}

// Update 仅更新 title/content/media_url，记录不存在或不属于 owner 时返回 gorm.ErrRecordNotFound
func (r *noteRepository) Update(ctx context.Context, ownerID, id string, in *domain.NoteInput) (*domain.Note, error) {
	var m model.Note
	err := r.dao.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&m).Error; err != nil {
			return err
		}
		return tx.Model(&m).Updates(map[string]any{
			"title":      in.Title,
			"content":    in.Content,
			"media_url":  in.MediaURL,
			"updated_at": r.now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m)
}

// DeleteByIDs 批量删除 owner 名下的笔记
func (r *noteRepository) DeleteByIDs(ctx context.Context, ownerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.dao.DB(ctx).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Delete(&model.Note{})
	return res.RowsAffected, res.Error
}
