// Package repository gorm 数据访问
package repository

import (
	"context"
	stderrors "errors"
	"strings"

	"gorm.io/gorm"
)

// All 过滤值为 All 或空时不参与过滤
const All = "semua"

// Spec 记录类型的查询约定
type Spec struct {
	// Order 默认排序，如 "tanggal desc"
	Order string
	// Search 关键字搜索的列（不区分大小写的子串匹配）
	Search []string
	// Creator 读取时预加载创建人
	Creator bool
}

// Filter 列表过滤条件
type Filter struct {
	// Equals 精确匹配，列名 → 值
	Equals map[string]string
	// Contains 子串匹配（不区分大小写），列名 → 值
	Contains map[string]string
	// Search 在 Spec.Search 列中搜索
	Search string
}

// Scope gorm 查询条件
type Scope = func(*gorm.DB) *gorm.DB

// Repository 单表通用仓储
type Repository[T any] struct {
	db   *gorm.DB
	spec Spec
}

// New 创建仓储
func New[T any](db *gorm.DB, spec Spec) *Repository[T] {
	return &Repository[T]{db: db, spec: spec}
}

// DB 带 ctx 的查询会话
func (r *Repository[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(T))
}

func (r *Repository[T]) query(ctx context.Context) *gorm.DB {
	q := r.DB(ctx)
	if r.spec.Creator {
		q = q.Preload("Creator")
	}
	return q
}

// List 按过滤条件列出记录
func (r *Repository[T]) List(ctx context.Context, f Filter) ([]T, error) {
	q := r.query(ctx).Scopes(f.scopes(r.spec.Search)...)
	if r.spec.Order != "" {
		q = q.Order(r.spec.Order)
	}

	list := make([]T, 0)
	if err := q.Find(&list).Error; err != nil {
		return nil, ErrQueryFailed.WithError(err)
	}
	return list, nil
}

// Find 按条件读取，limit <= 0 时不限制
func (r *Repository[T]) Find(ctx context.Context, order string, limit int, scopes ...Scope) ([]T, error) {
	q := r.query(ctx).Scopes(scopes...)
	if order != "" {
		q = q.Order(order)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	list := make([]T, 0)
	if err := q.Find(&list).Error; err != nil {
		return nil, ErrQueryFailed.WithError(err)
	}
	return list, nil
}

// Count 按条件计数
func (r *Repository[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var n int64
	if err := r.DB(ctx).Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, ErrQueryFailed.WithError(err)
	}
	return n, nil
}

// Get 按 ID 读取
func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	var rec T
	if err := r.query(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, wrap(err)
	}
	return &rec, nil
}

// Create 写入记录
func (r *Repository[T]) Create(ctx context.Context, rec *T) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return wrap(err)
	}
	return nil
}

// Update 只更新给定字段，返回更新后的记录
func (r *Repository[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	if len(fields) == 0 {
		return r.Get(ctx, id)
	}

	// 值未变化时部分驱动 RowsAffected 为 0，存在性以 Get 为准
	if err := r.DB(ctx).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, wrap(err)
	}
	return r.Get(ctx, id)
}

// Patch 用 rec 中 columns 对应的值更新记录，零值同样写入
func (r *Repository[T]) Patch(ctx context.Context, id string, rec *T, columns ...string) (*T, error) {
	if len(columns) == 0 {
		return r.Get(ctx, id)
	}
	if err := r.DB(ctx).Where("id = ?", id).Select(columns).Updates(rec).Error; err != nil {
		return nil, wrap(err)
	}
	return r.Get(ctx, id)
}

// Delete 按 ID 删除
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// scopes 构造过滤条件，列名只来自代码常量
func (f Filter) scopes(searchCols []string) []Scope {
	var scopes []Scope
	for col, v := range f.Equals {
		if skip(v) {
			continue
		}
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(col+" = ?", v)
		})
	}
	for col, v := range f.Contains {
		if skip(v) {
			continue
		}
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("LOWER("+col+") LIKE ?", like(v))
		})
	}
	if term := strings.TrimSpace(f.Search); term != "" && len(searchCols) > 0 {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			conds := make([]string, len(searchCols))
			args := make([]any, len(searchCols))
			for i, col := range searchCols {
				conds[i] = "LOWER(" + col + ") LIKE ?"
				args[i] = like(term)
			}
			return db.Where("("+strings.Join(conds, " OR ")+")", args...)
		})
	}
	return scopes
}

func skip(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

func like(v string) string {
	return "%" + strings.ToLower(strings.TrimSpace(v)) + "%"
}

// wrap 转换 gorm 错误
func wrap(err error) error {
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate.WithError(err)
	default:
		return ErrQueryFailed.WithError(err)
	}
}
