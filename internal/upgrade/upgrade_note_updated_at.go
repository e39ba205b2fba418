package upgrade

import (
	"context"

	"github.com/dejay09121/Noteapp/internal/model"

	"gorm.io/gorm"
)

// NoteUpdatedAtBackfill 早期版本没有 updated_at，用 created_at 补齐
type NoteUpdatedAtBackfill struct{}

func (*NoteUpdatedAtBackfill) Version() string { return "0.3.0" }

func (*NoteUpdatedAtBackfill) Description() string {
	return "backfill note.updated_at from created_at"
}

func (*NoteUpdatedAtBackfill) Up(ctx context.Context, db *gorm.DB) error {
	return db.Model(&model.Note{}).
		Where("updated_at IS NULL OR updated_at < created_at").
		UpdateColumn("updated_at", gorm.Expr("created_at")).Error
}
