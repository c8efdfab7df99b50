package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/longform/internal/db"
	"github.com/longform/internal/render"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEntryNotFound    = errors.New("entry not found")
	ErrEntryTypeInvalid = errors.New("entry type is invalid")
	ErrContentInvalid   = errors.New("entry content is not a valid block document")
	ErrMenuOrderInvalid = errors.New("menu order must not be negative")
	ErrReadTimeInvalid  = errors.New("read time must not be negative")
)

// SaveSource 标识保存请求来自哪个编辑入口，仅用于日志。
type SaveSource string

const (
	SourceBlockEditor SaveSource = "block-editor"
	SourceLegacyForm  SaveSource = "legacy-form"
)

// SaveCommand 描述一次编辑器保存。ID 为 0 表示新建。
type SaveCommand struct {
	ID     uint
	Type   db.EntryType
	UserID uint
	Edit   EditRequest
	Source SaveSource
}

// EntryService wraps entry related database operations.
type EntryService struct {
	db       *gorm.DB
	topics   *TopicService
	registry *render.Registry
	logger   *zap.Logger
	now      func() time.Time
}

// EntryListResult aggregates paginated list data.
type EntryListResult struct {
	Entries []db.Entry
	Total   int64
	Pages   int
	Page    int
	PerPage int
}

// NewEntryService creates an EntryService instance.
func NewEntryService(gdb *gorm.DB, topics *TopicService, registry *render.Registry, logger *zap.Logger) *EntryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryService{
		db:       gdb,
		topics:   topics,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock 允许测试固定当前时间。
func (s *EntryService) WithClock(now func() time.Time) *EntryService {
	if now != nil {
		s.now = now
	}
	return s
}

// Get fetches an entry by id with topics and statistics preloaded.
func (s *EntryService) Get(id uint) (*db.Entry, error) {
	var entry db.Entry
	if err := s.db.Preload("Topics").Preload("Statistic").First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// GetPublishedBySlug 返回指定类型、已发布的内容。
func (s *EntryService) GetPublishedBySlug(entryType db.EntryType, slug string) (*db.Entry, error) {
	var entry db.Entry
	if err := s.db.Preload("Topics").Preload("Statistic").
		Where("type = ? AND slug = ? AND status = ?", entryType, strings.TrimSpace(slug), db.StatusPublish).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Save applies one editor save. When the resulting status is publish the
// shared publish gate runs first; on rejection nothing from the edit is
// written, an already published entry is reverted to draft, and the returned
// error is a *ValidationError listing every violation.
func (s *EntryService) Save(cmd SaveCommand) (*db.Entry, error) {
	var persisted *db.Entry
	entryType := cmd.Type
	if cmd.ID != 0 {
		existing, err := s.Get(cmd.ID)
		if err != nil {
			return nil, err
		}
		persisted = existing
		entryType = existing.Type
	}
	if !entryType.Valid() {
		return nil, ErrEntryTypeInvalid
	}

	if err := s.checkEditShape(cmd.Edit); err != nil {
		return nil, err
	}

	targetStatus := db.StatusDraft
	if persisted != nil {
		targetStatus = persisted.Status
	}
	if cmd.Edit.Status != nil {
		targetStatus = *cmd.Edit.Status
	}

	if targetStatus == db.StatusPublish {
		if err := CheckPublish(entryType, cmd.Edit, persisted); err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				s.logger.Info("publish rejected",
					zap.Uint("entry_id", cmd.ID),
					zap.String("type", string(entryType)),
					zap.String("source", string(cmd.Source)),
					zap.Int("violations", len(verr.Violations)),
				)
			}
			if persisted != nil && persisted.Status == db.StatusPublish {
				if revertErr := s.db.Model(&db.Entry{}).
					Where("id = ?", persisted.ID).
					Update("status", db.StatusDraft).Error; revertErr != nil {
					return nil, fmt.Errorf("revert entry to draft: %w", revertErr)
				}
				persisted.Status = db.StatusDraft
			}
			return persisted, err
		}
	}

	entry := db.Entry{Type: entryType, Status: db.StatusDraft, UserID: cmd.UserID}
	if persisted != nil {
		entry = *persisted
		entry.Topics = nil
		entry.Statistic = nil
	}
	applyEdit(&entry, cmd.Edit)
	entry.Status = targetStatus
	if entry.Status == db.StatusPublish && entry.PublishedAt == nil {
		publishedAt := s.now()
		entry.PublishedAt = &publishedAt
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		slug, err := s.uniqueSlug(tx, &entry)
		if err != nil {
			return err
		}
		entry.Slug = slug

		if err := tx.Save(&entry).Error; err != nil {
			return err
		}

		if cmd.Edit.TopicSlugs != nil {
			topics, err := s.topics.EnsureBySlugs(tx, cmd.Edit.TopicSlugs)
			if err != nil {
				return err
			}
			if err := tx.Model(&entry).Association("Topics").Replace(topics); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Debug("entry saved",
		zap.Uint("entry_id", entry.ID),
		zap.String("status", string(entry.Status)),
		zap.String("source", string(cmd.Source)),
	)
	return s.Get(entry.ID)
}

func (s *EntryService) checkEditShape(edit EditRequest) error {
	if edit.MenuOrder != nil && *edit.MenuOrder < 0 {
		return ErrMenuOrderInvalid
	}
	if edit.ReadTimeMinutes != nil && *edit.ReadTimeMinutes < 0 {
		return ErrReadTimeInvalid
	}
	if edit.Content != nil && s.registry != nil {
		doc, err := render.ParseDocument([]byte(*edit.Content))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrContentInvalid, err)
		}
		if err := s.registry.Validate(doc); err != nil {
			return fmt.Errorf("%w: %v", ErrContentInvalid, err)
		}
	}
	return nil
}

func applyEdit(entry *db.Entry, edit EditRequest) {
	if edit.Title != nil {
		entry.Title = strings.TrimSpace(*edit.Title)
	}
	if edit.Slug != nil {
		entry.Slug = NormalizeSlug(*edit.Slug)
	}
	if edit.Subtitle != nil {
		entry.Subtitle = strings.TrimSpace(*edit.Subtitle)
	}
	if edit.ReadTimeMinutes != nil {
		entry.ReadTimeMinutes = *edit.ReadTimeMinutes
	}
	if edit.CardImageURL != nil {
		entry.CardImageURL = strings.TrimSpace(*edit.CardImageURL)
	}
	if edit.FeaturedImageURL != nil {
		entry.FeaturedImageURL = strings.TrimSpace(*edit.FeaturedImageURL)
	}
	if edit.MenuOrder != nil {
		entry.MenuOrder = *edit.MenuOrder
	}
	if edit.Content != nil {
		entry.Content = *edit.Content
	}
	if edit.PublishedAt != nil && !edit.PublishedAt.IsZero() {
		publishedAt := *edit.PublishedAt
		entry.PublishedAt = &publishedAt
	}
}

func (s *EntryService) uniqueSlug(tx *gorm.DB, entry *db.Entry) (string, error) {
	base := NormalizeSlug(entry.Slug)
	if base == "" {
		base = NormalizeSlug(entry.Title)
	}
	if base == "" {
		base = string(entry.Type)
	}

	candidate := base
	for suffix := 2; ; suffix++ {
		var count int64
		query := tx.Model(&db.Entry{}).Unscoped().Where("slug = ?", candidate)
		if entry.ID != 0 {
			query = query.Where("id <> ?", entry.ID)
		}
		if err := query.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}

// Query executes a listing built by BuildQueryArgs.
func (s *EntryService) Query(args QueryArgs) (*EntryListResult, error) {
	args = args.Normalize()
	if len(args.OrderBy) == 0 {
		args = BuildQueryArgs(args.Mode, args)
	}

	result := &EntryListResult{Page: args.Page, PerPage: args.PerPage}

	countQuery := s.applyEntryFilters(s.db.Model(&db.Entry{}), args)
	if err := countQuery.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	dataQuery := s.db.Model(&db.Entry{}).
		Preload("Topics").
		Preload("Statistic")
	dataQuery = s.applyEntryFilters(dataQuery, args)
	if args.NeedsStatistics() {
		dataQuery = dataQuery.Joins("LEFT JOIN entry_statistics ON entry_statistics.entry_id = entries.id")
	}

	var entries []db.Entry
	offset := (args.Page - 1) * args.PerPage
	if err := dataQuery.
		Order(args.OrderClause()).
		Limit(args.PerPage).
		Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	if result.Total == 0 {
		result.Pages = 0
	} else {
		result.Pages = int((result.Total + int64(args.PerPage) - 1) / int64(args.PerPage))
	}

	result.Entries = entries
	return result, nil
}

// likeEscaper 让搜索词中的通配符按字面匹配。
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (s *EntryService) applyEntryFilters(query *gorm.DB, args QueryArgs) *gorm.DB {
	if args.EntryType != "" {
		query = query.Where("entries.type = ?", args.EntryType)
	}

	if args.Status != "" {
		query = query.Where("entries.status = ?", args.Status)
	}

	if search := strings.TrimSpace(args.Search); search != "" {
		like := "%" + likeEscaper.Replace(search) + "%"
		query = query.Where(`(entries.title LIKE ? ESCAPE '\' OR entries.subtitle LIKE ? ESCAPE '\' OR entries.content LIKE ? ESCAPE '\')`, like, like, like)
	}

	if len(args.TopicSlugs) > 0 {
		subQuery := s.db.Table("entry_topics").
			Select("entry_topics.entry_id").
			Joins("JOIN topics ON topics.id = entry_topics.topic_id").
			Where("topics.slug IN ?", args.TopicSlugs)

		query = query.Where("entries.id IN (?)", subQuery)
	}

	return query
}

// AdminList 返回后台列表所需的内容，包含全部状态。orderBy 为 views 时按浏览量排序。
func (s *EntryService) AdminList(entryType db.EntryType, orderBy string, page, perPage int) (*EntryListResult, error) {
	mode := NormalizeOrderMode(orderBy)
	if strings.EqualFold(strings.TrimSpace(orderBy), "views") {
		mode = OrderPopular
	}
	return s.Query(BuildQueryArgs(mode, QueryArgs{EntryType: entryType, Page: page, PerPage: perPage}))
}
