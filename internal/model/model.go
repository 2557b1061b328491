// Package model 数据模型
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base 公共字段，ID 为 uuid 字符串
type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BeforeCreate 未指定 ID 时生成 uuid
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// GetID 记录 ID
func (b *Base) GetID() string { return b.ID }

// Creator 创建人摘要，只读取 users 表的 name 与 email
type Creator struct {
	ID    string `gorm:"primaryKey" json:"-"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TableName 表名
func (Creator) TableName() string { return "users" }

// Owned 带创建人的记录
type Owned struct {
	CreatedBy string   `gorm:"size:36;index" json:"createdBy"`
	Creator   *Creator `gorm:"foreignKey:CreatedBy;references:ID;-:migration" json:"creator,omitempty"`
}

// SetCreatedBy 设置创建人
func (o *Owned) SetCreatedBy(userID string) { o.CreatedBy = userID }

// CreatorName 创建人姓名，未知时返回 "Unknown"
func (o Owned) CreatorName() string {
	if o.Creator == nil || o.Creator.Name == "" {
		return "Unknown"
	}
	return o.Creator.Name
}

// Models 需要迁移的全部模型
func Models() []any {
	return []any{
		&User{},
		&Agenda{},
		&Task{},
		&Notulensi{},
		&Surat{},
		&Decision{},
		&Imam{},
	}
}
