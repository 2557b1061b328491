package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tokmz/uskup/internal/auth"
	"github.com/tokmz/uskup/internal/model"
	"github.com/tokmz/uskup/internal/repository"
	"github.com/tokmz/uskup/pkg/logger"
)

func newAccount(t *testing.T, limit int) (*Account, *fixture) {
	t.Helper()
	f := newFixture(t)
	acc := NewAccount(f.db, auth.NewHasher(bcrypt.MinCost), f.cache, AccountConfig{
		LoginLimit:   limit,
		LoginLockout: time.Minute,
	}, logger.Nop())
	return acc, f
}

func TestAccount_Bootstrap(t *testing.T) {
	acc, _ := newAccount(t, 0)
	ctx := context.Background()

	u, err := acc.EnsureBootstrap(ctx, Bootstrap{Email: "Uskup@Keuskupan.id", Name: "Mgr. Tri", Password: "Rahasia#2026"})
	require.NoError(t, err)
	assert.Equal(t, "uskup@keuskupan.id", u.Email)
	assert.Equal(t, model.RoleBishop, u.Role)
	assert.True(t, u.PasswordSet)

	again, err := acc.EnsureBootstrap(ctx, Bootstrap{Email: "uskup@keuskupan.id", Name: "other", Password: "Lain#2026xx"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "Mgr. Tri", again.Name)

	none, err := acc.EnsureBootstrap(ctx, Bootstrap{})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestAccount_Login(t *testing.T) {
	acc, f := newAccount(t, 0)
	ctx := context.Background()

	// 未设置密码的用户无法登录
	_, err := acc.Login(ctx, f.actor.Email, "Rahasia#2026")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = acc.ChangePassword(ctx, f.actor.UserID, "", "Rahasia#2026")
	require.NoError(t, err)

	u, err := acc.Login(ctx, "  SEKRETARIS@keuskupan.id ", "Rahasia#2026")
	require.NoError(t, err)
	assert.Equal(t, f.actor.UserID, u.ID)

	_, err = acc.Login(ctx, f.actor.Email, "salah")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = acc.Login(ctx, "nobody@keuskupan.id", "Rahasia#2026")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = acc.Login(ctx, "", "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAccount_LoginLockout(t *testing.T) {
	acc, f := newAccount(t, 2)
	ctx := context.Background()
	_, err := acc.ChangePassword(ctx, f.actor.UserID, "", "Rahasia#2026")
	require.NoError(t, err)

	for range 2 {
		_, err = acc.Login(ctx, f.actor.Email, "salah")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}
	_, err = acc.Login(ctx, f.actor.Email, "Rahasia#2026")
	assert.ErrorIs(t, err, auth.ErrLoginLocked)

	acc.reset(ctx, f.actor.Email)
	_, err = acc.Login(ctx, f.actor.Email, "Rahasia#2026")
	assert.NoError(t, err)
}

func TestAccount_ChangePassword(t *testing.T) {
	acc, f := newAccount(t, 0)
	ctx := context.Background()
	uid := f.actor.UserID

	status, err := acc.PasswordStatus(ctx, uid)
	require.NoError(t, err)
	assert.False(t, status.HasPassword)

	_, err = acc.ChangePassword(ctx, uid, "", "lemah")
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
	_, err = acc.ChangePassword(ctx, uid, "", "")
	assert.ErrorIs(t, err, auth.ErrWeakPassword)

	status, err = acc.ChangePassword(ctx, uid, "", "Rahasia#2026")
	require.NoError(t, err)
	assert.True(t, status.HasPassword)

	_, err = acc.ChangePassword(ctx, uid, "", "Baru#20262026")
	assert.ErrorIs(t, err, auth.ErrCurrentPasswordRequired)
	_, err = acc.ChangePassword(ctx, uid, "Salah#2026", "Baru#20262026")
	assert.ErrorIs(t, err, auth.ErrCurrentPasswordIncorrect)
	_, err = acc.ChangePassword(ctx, uid, "Rahasia#2026", "Baru#20262026")
	require.NoError(t, err)

	_, err = acc.Login(ctx, f.actor.Email, "Baru#20262026")
	assert.NoError(t, err)

	_, err = acc.PasswordStatus(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccount_GeneratePassword(t *testing.T) {
	acc, f := newAccount(t, 0)
	ctx := context.Background()

	_, err := acc.GeneratePassword(ctx, f.actor.UserID, 0)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	bishop, err := acc.EnsureBootstrap(ctx, Bootstrap{Email: "uskup@keuskupan.id", Name: "Mgr. Tri", Role: model.RoleBishop})
	require.NoError(t, err)
	assert.False(t, bishop.PasswordSet)

	gen, err := acc.GeneratePassword(ctx, bishop.ID, 0)
	require.NoError(t, err)
	assert.Len(t, gen.TemporaryPassword, auth.DefaultGeneratedLength)
	assert.True(t, gen.HasPassword)

	_, err = acc.Login(ctx, "uskup@keuskupan.id", gen.TemporaryPassword)
	assert.NoError(t, err)
}

func TestAccount_Me(t *testing.T) {
	acc, f := newAccount(t, 0)
	ctx := context.Background()

	u, err := acc.Me(ctx, f.actor.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Agnes", u.Name)

	_, err = acc.Me(ctx, "gone")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}
