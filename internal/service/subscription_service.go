package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/longform/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSubscriberEmailInvalid = errors.New("invalid subscriber email")
	ErrSubscriptionToken      = errors.New("invalid or expired confirmation link")
	ErrConfirmationNotSent    = errors.New("confirmation email not sent")
)

// SubscribeOutcome 描述一次订阅请求的结果。
type SubscribeOutcome string

const (
	SubscribeCreated          SubscribeOutcome = "created"
	SubscribeAlreadyPending   SubscribeOutcome = "pending"
	SubscribeAlreadyConfirmed SubscribeOutcome = "confirmed"
)

// Mailer 发送纯文本邮件。
type Mailer interface {
	Send(to, subject, body string) error
}

// LogMailer writes outgoing mail to a logger instead of delivering it.
type LogMailer struct {
	Logger *zap.Logger
}

// Send logs the message at info level.
func (m LogMailer) Send(to, subject, body string) error {
	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("outgoing mail", zap.String("to", to), zap.String("subject", subject), zap.String("body", body))
	return nil
}

// SubscriptionOptions configures a SubscriptionService.
type SubscriptionOptions struct {
	Mailer      Mailer
	SiteName    string
	SiteBaseURL string
	// NotifyEmail receives a note for each confirmed subscriber; empty disables it.
	NotifyEmail string
	Logger      *zap.Logger
}

// SubscriptionService 实现邮件订阅的双重确认流程。
type SubscriptionService struct {
	db     *gorm.DB
	opts   SubscriptionOptions
	logger *zap.Logger
	now    func() time.Time
}

// NewSubscriptionService creates a SubscriptionService.
func NewSubscriptionService(gdb *gorm.DB, opts SubscriptionOptions) *SubscriptionService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Mailer == nil {
		opts.Mailer = LogMailer{Logger: logger}
	}
	if opts.SiteName == "" {
		opts.SiteName = "Longform"
	}
	opts.SiteBaseURL = strings.TrimRight(opts.SiteBaseURL, "/")
	return &SubscriptionService{db: gdb, opts: opts, logger: logger, now: time.Now}
}

var emailValidator = validator.New()

// NormalizeSubscriberEmail 校验并规范化邮箱：去空白并转小写。
func NormalizeSubscriberEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if err := emailValidator.Var(email, "required,email,max=254"); err != nil {
		return "", ErrSubscriberEmailInvalid
	}
	return email, nil
}

// Subscribe registers email as a pending subscriber and mails a confirmation
// link. An address that is already known is left untouched and reported by
// its current state. A failed send keeps the pending row; asking again does
// not resend.
func (s *SubscriptionService) Subscribe(rawEmail string) (SubscribeOutcome, error) {
	email, err := NormalizeSubscriberEmail(rawEmail)
	if err != nil {
		return "", err
	}

	var existing db.Subscriber
	err = s.db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if existing.Confirmed() {
			return SubscribeAlreadyConfirmed, nil
		}
		return SubscribeAlreadyPending, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", err
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	subscriber := db.Subscriber{Email: email, Status: db.SubscriberPending, Token: &token}
	if err := s.db.Create(&subscriber).Error; err != nil {
		return "", err
	}

	subject := fmt.Sprintf("[%s] Confirm your subscription", s.opts.SiteName)
	body := "Hi!\n\nPlease confirm your subscription by clicking the link below:\n\n" +
		s.ConfirmURL(token) +
		"\n\nIf you didn't request this, you can ignore this email.\n"
	if err := s.opts.Mailer.Send(email, subject, body); err != nil {
		s.logger.Error("subscribe confirmation email failed", zap.String("to", email), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrConfirmationNotSent, err)
	}
	return SubscribeCreated, nil
}

// ConfirmURL 返回确认链接。
func (s *SubscriptionService) ConfirmURL(token string) string {
	return s.opts.SiteBaseURL + "/subscribe/confirm?token=" + url.QueryEscape(token)
}

// Confirm completes the opt-in for the subscriber holding token. The token is
// single use.
func (s *SubscriptionService) Confirm(token string) (*db.Subscriber, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrSubscriptionToken
	}

	var subscriber db.Subscriber
	if err := s.db.Where("token = ?", token).First(&subscriber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionToken
		}
		return nil, err
	}

	now := s.now().UTC()
	if err := s.db.Model(&subscriber).Updates(map[string]interface{}{
		"status":       db.SubscriberConfirmed,
		"token":        nil,
		"confirmed_at": now,
	}).Error; err != nil {
		return nil, err
	}
	subscriber.Status = db.SubscriberConfirmed
	subscriber.Token = nil
	subscriber.ConfirmedAt = &now

	if s.opts.NotifyEmail != "" {
		subject := fmt.Sprintf("[%s] New subscriber", s.opts.SiteName)
		if err := s.opts.Mailer.Send(s.opts.NotifyEmail, subject, "New subscriber confirmed:\n\n"+subscriber.Email+"\n"); err != nil {
			// 通知失败不影响确认结果
			s.logger.Warn("new subscriber notification failed", zap.Error(err))
		}
	}
	return &subscriber, nil
}

// WithClock overrides the clock used for confirmation timestamps.
func (s *SubscriptionService) WithClock(now func() time.Time) *SubscriptionService {
	if now != nil {
		s.now = now
	}
	return s
}
