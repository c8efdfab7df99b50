package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/longform/internal/service"
	"go.uber.org/zap"
)

const (
	codeInvalidEmail        = "invalid_email"
	codeConfirmationNotSent = "confirmation_not_sent"
)

const (
	msgCheckInbox        = "Check your inbox to confirm your subscription."
	msgAlreadySubscribed = "You are already subscribed."
)

// Subscribe 处理访客的邮件订阅请求，新地址会收到确认邮件。
func (a *API) Subscribe(c *gin.Context) {
	var params SubscribeParams
	if err := c.ShouldBind(&params); err != nil {
		if strings.TrimSpace(c.PostForm("nonce")) == "" {
			ajaxError(c, http.StatusForbidden, codeInvalidNonce)
			return
		}
		ajaxError(c, http.StatusBadRequest, codeInvalidEmail)
		return
	}
	if err := a.nonces.Verify(params.Nonce, service.NonceActionPublic, a.currentUserID(c)); err != nil {
		ajaxError(c, http.StatusForbidden, codeInvalidNonce)
		return
	}

	outcome, err := a.subscriptions.Subscribe(params.Email)
	switch {
	case errors.Is(err, service.ErrSubscriberEmailInvalid):
		ajaxError(c, http.StatusBadRequest, codeInvalidEmail)
		return
	case errors.Is(err, service.ErrConfirmationNotSent):
		ajaxError(c, http.StatusBadGateway, codeConfirmationNotSent)
		return
	case err != nil:
		a.internalError(c, "subscribe", err, true)
		return
	}

	message := msgCheckInbox
	if outcome == service.SubscribeAlreadyConfirmed {
		message = msgAlreadySubscribed
	}
	ajaxSuccess(c, gin.H{"state": outcome, "message": message})
}

// ConfirmSubscription 完成双重确认，token 只能使用一次。
func (a *API) ConfirmSubscription(c *gin.Context) {
	subscriber, err := a.subscriptions.Confirm(c.Query("token"))
	if err != nil {
		if errors.Is(err, service.ErrSubscriptionToken) {
			c.HTML(http.StatusBadRequest, "subscription.html", gin.H{
				"Confirmed": false,
				"Message":   "Invalid or expired confirmation link.",
			})
			return
		}
		a.internalError(c, "confirm_subscription", err, false)
		return
	}

	a.logger.Info("subscriber confirmed", zap.Uint("subscriber_id", subscriber.ID))
	c.HTML(http.StatusOK, "subscription.html", gin.H{
		"Confirmed": true,
		"Message":   "Subscription confirmed. Thank you!",
	})
}
