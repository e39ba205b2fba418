// Package model 定义数据库表结构
package model

import (
	"time"

	"gorm.io/gorm"
)

const TableNameNote = "note"

// Note 笔记表
type Note struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	OwnerID   string    `gorm:"column:owner_id;type:varchar(64);not null;index:idx_note_owner_created,priority:1" json:"ownerId"`
	Title     string    `gorm:"column:title;type:varchar(255);not null;default:''" json:"title"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	MediaURL  string    `gorm:"column:media_url;type:varchar(2048);not null;default:''" json:"mediaUrl"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_note_owner_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}

// AutoMigrate 按模型名迁移表结构
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "Note":
		return db.AutoMigrate(&Note{})
	}
	return nil
}

// AutoMigrateAll 迁移全部表
func AutoMigrateAll(db *gorm.DB) error {
	return AutoMigrate(db, "Note")
}
