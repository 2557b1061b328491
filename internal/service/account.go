package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tokmz/uskup/internal/auth"
	"github.com/tokmz/uskup/internal/model"
	"github.com/tokmz/uskup/internal/repository"
	"github.com/tokmz/uskup/pkg/cache"
	"github.com/tokmz/uskup/pkg/errors"
	"github.com/tokmz/uskup/pkg/logger"
)

// AccountConfig 登录保护
type AccountConfig struct {
	// LoginLimit 锁定前允许的连续失败次数，0 表示不限制
	LoginLimit   int
	LoginLockout time.Duration
}

// PasswordStatus 密码状态
type PasswordStatus struct {
	HasPassword bool      `json:"hasPassword"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// GeneratedPassword 生成的初始密码，只返回一次
type GeneratedPassword struct {
	TemporaryPassword string `json:"temporaryPassword"`
	HasPassword       bool   `json:"hasPassword"`
}

// Bootstrap 启动时确保存在的管理员
type Bootstrap struct {
	Email    string
	Name     string
	Role     string
	Password string
}

// Account 登录与密码管理
type Account struct {
	users    *repository.Users
	hasher   *auth.Hasher
	attempts cache.Cache
	config   AccountConfig
	log      logger.Logger
}

// NewAccount attempts 为 nil 时不做登录锁定
func NewAccount(db *gorm.DB, hasher *auth.Hasher, attempts cache.Cache, cfg AccountConfig, log logger.Logger) *Account {
	if hasher == nil {
		hasher = auth.NewHasher(auth.DefaultCost)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Account{
		users:    repository.NewUsers(db),
		hasher:   hasher,
		attempts: attempts,
		config:   cfg,
		log:      log,
	}
}

// Login 校验邮箱与密码
func (a *Account) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}
	if a.locked(ctx, email) {
		return nil, auth.ErrLoginLocked
	}

	user, err := a.users.ByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if user == nil || !user.PasswordSet || !a.hasher.Verify(password, user.Password) {
		a.fail(ctx, email)
		return nil, auth.ErrInvalidCredentials
	}

	a.reset(ctx, email)
	a.log.InfoContext(ctx, "user logged in", zap.String("user_id", user.ID), zap.String("role", user.Role))
	return user, nil
}

func (a *Account) locked(ctx context.Context, email string) bool {
	if a.attempts == nil || a.config.LoginLimit <= 0 {
		return false
	}
	ok, err := a.attempts.Exists(ctx, "login:lock:"+email)
	return err == nil && ok
}

func (a *Account) fail(ctx context.Context, email string) {
	if a.attempts == nil || a.config.LoginLimit <= 0 {
		return
	}
	n, err := a.attempts.Incr(ctx, "login:fail:"+email, a.config.LoginLockout)
	if err != nil {
		a.log.WarnContext(ctx, "login attempt counter unavailable", zap.Error(err))
		return
	}
	if n >= int64(a.config.LoginLimit) {
		_ = a.attempts.Set(ctx, "login:lock:"+email, true, a.config.LoginLockout)
		a.log.WarnContext(ctx, "login locked", zap.String("email", email), zap.Int64("failures", n))
	}
}

func (a *Account) reset(ctx context.Context, email string) {
	if a.attempts == nil {
		return
	}
	_ = a.attempts.Delete(ctx, "login:fail:"+email, "login:lock:"+email)
}

// Me 当前用户的最新数据
func (a *Account) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := a.users.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, auth.ErrUnauthenticated
	}
	return user, err
}

// PasswordStatus 是否已设置密码
func (a *Account) PasswordStatus(ctx context.Context, userID string) (*PasswordStatus, error) {
	user, err := a.users.Get(ctx, userID)
	if err != nil {
		return nil, userNotFound(err)
	}
	return &PasswordStatus{HasPassword: user.PasswordSet, LastUpdated: user.UpdatedAt}, nil
}

// ChangePassword 设置或修改密码，已有密码时必须提供当前密码
func (a *Account) ChangePassword(ctx context.Context, userID, current, next string) (*PasswordStatus, error) {
	if next == "" {
		return nil, auth.ErrWeakPassword.WithMessage("New password is required")
	}
	if problems := auth.ValidateStrength(next); len(problems) > 0 {
		return nil, auth.ErrWeakPassword.WithMessage("Password does not meet requirements: " + strings.Join(problems, "; "))
	}

	user, err := a.users.Get(ctx, userID)
	if err != nil {
		return nil, userNotFound(err)
	}
	if user.PasswordSet && user.Password != "" {
		if current == "" {
			return nil, auth.ErrCurrentPasswordRequired
		}
		if !a.hasher.Verify(current, user.Password) {
			return nil, auth.ErrCurrentPasswordIncorrect
		}
	}

	updated, err := a.setPassword(ctx, user.ID, next)
	if err != nil {
		return nil, err
	}
	a.log.InfoContext(ctx, "password updated", zap.String("user_id", user.ID))
	return &PasswordStatus{HasPassword: updated.PasswordSet, LastUpdated: updated.UpdatedAt}, nil
}

// GeneratePassword 为当前用户生成随机密码，仅限 bishop 与 admin
func (a *Account) GeneratePassword(ctx context.Context, userID string, length int) (*GeneratedPassword, error) {
	user, err := a.users.Get(ctx, userID)
	if err != nil {
		return nil, userNotFound(err)
	}
	if !user.CanManagePasswords() {
		return nil, auth.ErrForbidden
	}

	password, err := auth.Generate(length)
	if err != nil {
		return nil, err
	}
	updated, err := a.setPassword(ctx, user.ID, password)
	if err != nil {
		return nil, err
	}
	a.log.InfoContext(ctx, "password generated", zap.String("user_id", user.ID))
	return &GeneratedPassword{TemporaryPassword: password, HasPassword: updated.PasswordSet}, nil
}

func (a *Account) setPassword(ctx context.Context, userID, password string) (*model.User, error) {
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return a.users.SetPassword(ctx, userID, hash)
}

// EnsureBootstrap 用户不存在时创建，已存在时不做修改
func (a *Account) EnsureBootstrap(ctx context.Context, b Bootstrap) (*model.User, error) {
	if b.Email == "" {
		return nil, nil
	}
	existing, err := a.users.ByEmail(ctx, b.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user := &model.User{
		Email: strings.ToLower(strings.TrimSpace(b.Email)),
		Name:  b.Name,
		Role:  b.Role,
	}
	if user.Role == "" {
		user.Role = model.RoleBishop
	}
	if b.Password != "" {
		hash, err := a.hasher.Hash(b.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
		user.PasswordSet = true
	}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}
	a.log.InfoContext(ctx, "bootstrap user created",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
		zap.Bool("password_set", user.PasswordSet),
	)
	return user, nil
}

func userNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return repository.ErrNotFound.WithMessage("User not found")
	}
	return err
}
