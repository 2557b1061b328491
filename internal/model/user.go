package model

// 角色
const (
	RoleBishop = "bishop"
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
)

// User 系统用户
type User struct {
	Base
	Email       string `gorm:"size:191;uniqueIndex" json:"email"`
	Name        string `gorm:"size:191" json:"name"`
	Role        string `gorm:"size:32;default:staff" json:"role"`
	Password    string `gorm:"size:255" json:"-"`
	PasswordSet bool   `gorm:"default:false" json:"passwordSet"`
}

// CanManagePasswords bishop 与 admin 可以生成初始密码
func (u *User) CanManagePasswords() bool {
	return u.Role == RoleBishop || u.Role == RoleAdmin
}
