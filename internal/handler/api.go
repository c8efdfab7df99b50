package handler

import (
	"time"

	"github.com/longform/internal/render"
	"github.com/longform/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options 汇总构造 API 所需的依赖与配置。
type Options struct {
	DB                *gorm.DB
	Registry          *render.Registry
	Logger            *zap.Logger
	DebugSink         *zap.Logger
	NonceSecret       string
	NonceTTL          time.Duration
	DebugMode         bool
	SiteBaseURL       string
	SiteName          string
	EssayDefaultOrder service.OrderMode
	// Mailer delivers subscription mail; nil logs it instead.
	Mailer               service.Mailer
	SubscribeNotifyEmail string
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db            *gorm.DB
	entries       *service.EntryService
	topics        *service.TopicService
	analytics     pageviewTracker
	system        *service.SystemSettingService
	nonces        *service.NonceService
	debugLog      *service.DebugLogService
	subscriptions *service.SubscriptionService
	registry      *render.Registry
	logger        *zap.Logger
	debugMode     bool
	siteBaseURL   string
	now           func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(opts Options) *API {
	registerValidators()

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := opts.Registry
	if registry == nil {
		registry = render.DefaultRegistry()
	}

	topics := service.NewTopicService(opts.DB)
	return &API{
		db:            opts.DB,
		entries:       service.NewEntryService(opts.DB, topics, registry, logger.Named("entries")),
		topics:        topics,
		analytics:     service.NewAnalyticsService(opts.DB),
		system:        service.NewSystemSettingService(opts.DB, opts.EssayDefaultOrder),
		nonces:        service.NewNonceService(opts.NonceSecret, opts.NonceTTL),
		debugLog:      service.NewDebugLogService(opts.DebugSink),
		subscriptions: service.NewSubscriptionService(opts.DB, service.SubscriptionOptions{
			Mailer:      opts.Mailer,
			SiteName:    opts.SiteName,
			SiteBaseURL: opts.SiteBaseURL,
			NotifyEmail: opts.SubscribeNotifyEmail,
			Logger:      logger.Named("subscriptions"),
		}),
		registry:    registry,
		logger:      logger,
		debugMode:   opts.DebugMode,
		siteBaseURL: opts.SiteBaseURL,
		now:         time.Now,
	}
}

// Nonces exposes the nonce issuer, e.g. for tests and page templates.
func (a *API) Nonces() *service.NonceService {
	return a.nonces
}
