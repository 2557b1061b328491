package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tokmz/uskup/internal/model"
)

// Users 用户仓储
type Users struct {
	*Repository[model.User]
}

// NewUsers 创建用户仓储
func NewUsers(db *gorm.DB) *Users {
	return &Users{Repository: New[model.User](db, Spec{Order: "name asc"})}
}

// ByEmail 按邮箱读取（忽略大小写）
func (u *Users) ByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := u.DB(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &user, nil
}

// SetPassword 写入密码哈希并标记已设置
func (u *Users) SetPassword(ctx context.Context, id, hash string) (*model.User, error) {
	return u.Update(ctx, id, map[string]any{
		"password":     hash,
		"password_set": true,
	})
}
