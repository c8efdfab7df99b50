package db

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// EntryType 区分长文与随笔两种内容类型。
type EntryType string

const (
	EntryTypeEssay   EntryType = "essay"
	EntryTypeJotting EntryType = "jotting"
)

// Valid reports whether t is a known content type.
func (t EntryType) Valid() bool {
	return t == EntryTypeEssay || t == EntryTypeJotting
}

// EntryStatus 描述内容的发布状态。
type EntryStatus string

const (
	StatusDraft   EntryStatus = "draft"
	StatusPending EntryStatus = "pending"
	StatusPrivate EntryStatus = "private"
	StatusPublish EntryStatus = "publish"
)

// ParseEntryStatus 解析状态字符串，未知值返回 false。
func ParseEntryStatus(raw string) (EntryStatus, bool) {
	switch EntryStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusDraft:
		return StatusDraft, true
	case StatusPending:
		return StatusPending, true
	case StatusPrivate:
		return StatusPrivate, true
	case StatusPublish, "published":
		return StatusPublish, true
	}
	return "", false
}

// Entry 定义了长文/随笔模型，Content 保存序列化后的区块文档。
type Entry struct {
	gorm.Model
	Type             EntryType   `gorm:"size:20;index;not null"`
	Slug             string      `gorm:"size:200;uniqueIndex"`
	Title            string      `gorm:"size:300"`
	Subtitle         string      `gorm:"size:500"`
	ReadTimeMinutes  int         `gorm:"default:0"`
	CardImageURL     string      `gorm:"size:1000"`
	FeaturedImageURL string      `gorm:"size:1000"`
	MenuOrder        int         `gorm:"default:0;index"`
	Status           EntryStatus `gorm:"size:20;index;not null;default:draft"`
	PublishedAt      *time.Time  `gorm:"index"`
	Content          string      `gorm:"type:text"`
	UserID           uint
	Topics           []Topic         `gorm:"many2many:entry_topics;"`
	Statistic        *EntryStatistic `gorm:"foreignKey:EntryID"`
}

// IsPublished reports whether the entry is publicly visible.
func (e *Entry) IsPublished() bool {
	return e != nil && e.Status == StatusPublish
}

// PageViews 返回浏览量，没有统计记录时视为 0。
func (e *Entry) PageViews() uint64 {
	if e == nil || e.Statistic == nil {
		return 0
	}
	return e.Statistic.PageViews
}

// TopicSlugs 返回已关联话题的 slug 列表。
func (e *Entry) TopicSlugs() []string {
	slugs := make([]string, 0, len(e.Topics))
	for _, topic := range e.Topics {
		slugs = append(slugs, topic.Slug)
	}
	return slugs
}

// TopicNames 返回已关联话题的名称列表。
func (e *Entry) TopicNames() []string {
	names := make([]string, 0, len(e.Topics))
	for _, topic := range e.Topics {
		names = append(names, topic.Name)
	}
	return names
}

// CardImage 优先返回卡片图，其次是特色图。
func (e *Entry) CardImage() string {
	if url := strings.TrimSpace(e.CardImageURL); url != "" {
		return url
	}
	return strings.TrimSpace(e.FeaturedImageURL)
}
