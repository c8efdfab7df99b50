package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AJAX 错误码，作为 message 返回给前端。
const (
	codeInvalidNonce   = "invalid_nonce"
	codeForbidden      = "forbidden"
	codeInvalidRequest = "invalid_request"
	codeInvalidLogData = "invalid_log_data"
	codeDebugDisabled  = "debug_disabled"
	codeInternal       = "internal_error"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// splitList 同时接受数组形式与逗号分隔形式的参数。
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func ajaxSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

func ajaxError(c *gin.Context, status int, code string) {
	c.AbortWithStatusJSON(status, gin.H{"status": "error", "message": code})
}

// internalError logs err with request context and returns a generic message.
func (a *API) internalError(c *gin.Context, action string, err error, ajax bool) {
	a.logger.Error("request failed",
		zap.String("action", action),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	_ = c.Error(err)
	if ajax {
		ajaxError(c, http.StatusInternalServerError, codeInternal)
		return
	}
	respondError(c, http.StatusInternalServerError, "internal error")
}
