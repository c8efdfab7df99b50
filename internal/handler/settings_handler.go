package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/longform/internal/service"
	"go.uber.org/zap"
)

// GetEssayOrder 返回站点默认的长文排序方式。
func (a *API) GetEssayOrder(c *gin.Context) {
	mode, err := a.system.EssayDefaultOrder()
	if err != nil {
		a.internalError(c, "get_essay_order", err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": mode})
}

// UpdateEssayOrder 更新站点默认的长文排序方式。
func (a *API) UpdateEssayOrder(c *gin.Context) {
	var params EssayOrderParams
	if !bindJSON(c, &params, "排序方式必须是 manual、popular、date 或 title") {
		return
	}

	mode, err := a.system.SetEssayDefaultOrder(params.Order)
	if err != nil {
		if errors.Is(err, service.ErrOrderModeInvalid) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		a.internalError(c, "update_essay_order", err, false)
		return
	}

	a.logger.Info("essay default order updated",
		zap.String("order", string(mode)),
		zap.Uint("user_id", a.currentUserID(c)),
	)
	c.JSON(http.StatusOK, gin.H{"order": mode})
}

// ListTopics 返回全部话题及其已发布内容数量。
func (a *API) ListTopics(c *gin.Context) {
	usage, err := a.topics.PublishedUsage()
	if err != nil {
		a.internalError(c, "list_topics", err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": usage})
}
