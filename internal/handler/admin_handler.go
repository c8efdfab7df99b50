package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/longform/internal/db"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
	currentUserKey     = "__current_user"
)

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login 校验账号密码并写入会话。
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "用户名和密码不能为空")
		return
	}

	var user db.User
	if err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			a.internalError(c, "login", err, false)
			return
		}
		respondError(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		a.internalError(c, "login", err, false)
		return
	}

	a.logger.Info("user logged in", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"user": gin.H{"id": user.ID, "username": user.Username, "role": user.Role}})
}

// Logout 清除会话。
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		a.internalError(c, "logout", err, false)
		return
	}
	c.Status(http.StatusNoContent)
}

// currentUser 返回当前会话用户，匿名访问返回 nil。结果缓存在请求上下文中。
func (a *API) currentUser(c *gin.Context) *db.User {
	if cached, exists := c.Get(currentUserKey); exists {
		user, _ := cached.(*db.User)
		return user
	}

	var user *db.User
	if id, ok := sessions.Default(c).Get(sessionUserIDKey).(uint); ok && id != 0 && a.db != nil {
		var record db.User
		if err := a.db.First(&record, id).Error; err == nil {
			user = &record
		}
	}
	c.Set(currentUserKey, user)
	return user
}

func (a *API) currentUserID(c *gin.Context) uint {
	if user := a.currentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// AuthRequired 要求已登录用户。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.currentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请先登录"})
			return
		}
		c.Next()
	}
}

// RequireCapability 要求当前用户拥有指定能力。
func (a *API) RequireCapability(capability db.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.currentUser(c).Can(capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "权限不足"})
			return
		}
		c.Next()
	}
}
