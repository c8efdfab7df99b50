package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/longform/internal/config"
	"github.com/longform/internal/db"
	"github.com/longform/internal/handler"
	"github.com/longform/internal/logging"
	"github.com/longform/internal/view"
	"go.uber.org/zap"
)

const sessionName = "longform_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, api *handler.API, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(logging.GinLogger(logger), logging.Recovery(logger))

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.SetHTMLTemplate(view.Templates())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// 前台页面
	r.GET("/essays", api.ListEssays)
	r.GET("/essays/:slug", api.ShowEssay)
	r.GET("/jottings/:slug", api.ShowJotting)
	r.GET("/subscribe/confirm", api.ConfirmSubscription)

	// 前台 AJAX
	ajax := r.Group("/ajax")
	{
		ajax.GET("/nonce", api.IssueNonce)
		ajax.POST("/filter", api.FilterContent)
		ajax.POST("/pageview", api.TrackPageview)
		ajax.POST("/debug-log", api.DebugLog)
		ajax.POST("/subscribe", api.Subscribe)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.POST("/login", api.Login)
		admin.POST("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(api.AuthRequired(), api.RequireCapability(db.CapEditPosts))
		{
			auth.POST("/entries", api.SubmitEntryForm)
			auth.POST("/entries/:id", api.SubmitEntryForm)
			auth.GET("/entries/:id/notices", api.EntryNotices)

			apiGroup := auth.Group("/api")
			{
				apiGroup.GET("/entries", api.ListEntries)
				apiGroup.GET("/entries/:id", api.GetEntry)
				apiGroup.POST("/entries", api.CreateEntry)
				apiGroup.PUT("/entries/:id", api.UpdateEntry)

				apiGroup.GET("/topics", api.ListTopics)

				settings := apiGroup.Group("/settings")
				settings.Use(api.RequireCapability(db.CapManageOptions))
				{
					settings.GET("/essay-order", api.GetEssayOrder)
					settings.PUT("/essay-order", api.UpdateEssayOrder)
				}
			}
		}
	}

	return r
}
