package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role 决定用户拥有的能力集合。
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleAuthor Role = "author"
)

// Capability 是可被检查的单项权限。
type Capability string

const (
	CapEditPosts     Capability = "edit_posts"
	CapManageOptions Capability = "manage_options"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin:  {CapEditPosts, CapManageOptions},
	RoleEditor: {CapEditPosts},
	RoleAuthor: {CapEditPosts},
}

// User 定义了用户模型
type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
	Role     Role   `gorm:"size:20;not null;default:author"`
}

// Can reports whether the user's role grants capability.
func (u *User) Can(capability Capability) bool {
	if u == nil {
		return false
	}
	for _, granted := range roleCapabilities[u.Role] {
		if granted == capability {
			return true
		}
	}
	return false
}

// ParseRole 解析角色名称，未知值回退为 author。
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleEditor:
		return RoleEditor
	default:
		return RoleAuthor
	}
}

// EnsureUser 存在性检查：若提供的用户名与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的用户。
func EnsureUser(gdb *gorm.DB, username, password string, role Role) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := gdb.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return gdb.Create(&User{Username: trimmedUser, Password: string(hashed), Role: role}).Error
	}

	return nil
}
