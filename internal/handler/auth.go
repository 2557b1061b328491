package handler

import (
	stderrors "errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/tokmz/uskup"
	"github.com/tokmz/uskup/internal/auth"
	"github.com/tokmz/uskup/internal/model"
	"github.com/tokmz/uskup/internal/service"
	"github.com/tokmz/uskup/pkg/errors"
)

// LoginRequest 登录
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse 用户信息
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	PasswordSet bool      `json:"passwordSet"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		PasswordSet: u.PasswordSet,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ChangePasswordRequest 修改密码
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// GeneratePasswordRequest 生成密码
type GeneratePasswordRequest struct {
	Length int `json:"length"`
}

func (h *Handler) login(c *uskup.Context, req *LoginRequest) (*UserResponse, error) {
	user, err := h.account.Login(c.RequestContext(), req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if _, err := h.auth.Login(c, auth.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}); err != nil {
		return nil, errors.ErrServer.WithError(err)
	}
	return newUserResponse(user), nil
}

func (h *Handler) logout(c *uskup.Context) {
	h.auth.Logout(c)
	c.SuccessWithMessage(nil, "Logged out successfully")
}

func (h *Handler) me(c *uskup.Context) (*UserResponse, error) {
	p, _ := auth.FromContext(c)
	user, err := h.account.Me(c.RequestContext(), p.UserID)
	if err != nil {
		return nil, err
	}
	return newUserResponse(user), nil
}

func (h *Handler) passwordStatus(c *uskup.Context) (*service.PasswordStatus, error) {
	p, _ := auth.FromContext(c)
	return h.account.PasswordStatus(c.RequestContext(), p.UserID)
}

func (h *Handler) changePassword(c *uskup.Context, req *ChangePasswordRequest) (*service.PasswordStatus, error) {
	p, _ := auth.FromContext(c)
	return h.account.ChangePassword(c.RequestContext(), p.UserID, req.CurrentPassword, req.NewPassword)
}

// generatePassword 请求体可以为空
func (h *Handler) generatePassword(c *uskup.Context) {
	var req GeneratePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		c.RespondError(errors.ErrBadRequest.WithError(err))
		return
	}

	p, _ := auth.FromContext(c)
	gen, err := h.account.GeneratePassword(c.RequestContext(), p.UserID, req.Length)
	if err != nil {
		h.log.WarnContext(c.RequestContext(), "generate password refused", zap.Error(err))
		c.RespondError(err)
		return
	}
	c.SuccessWithMessage(gen, "Secure password generated successfully")
}
