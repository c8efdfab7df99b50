package service

import (
	"errors"
	"strings"
	"unicode"

	"github.com/longform/internal/db"
	"gorm.io/gorm"
)

var (
	ErrTopicNotFound = errors.New("topic not found")
	ErrTopicInvalid  = errors.New("topic slug is invalid")
)

// TopicService wraps topic related operations.
type TopicService struct {
	db *gorm.DB
}

// TopicUsage 描述话题在已发布内容中的使用次数
type TopicUsage struct {
	ID    uint   `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// NewTopicService creates a TopicService instance.
func NewTopicService(gdb *gorm.DB) *TopicService {
	return &TopicService{db: gdb}
}

// PublishedUsage 返回全部话题及其已发布内容数量，未使用的话题计数为 0。
func (s *TopicService) PublishedUsage() ([]TopicUsage, error) {
	var rows []TopicUsage
	if err := s.db.Table("topics").
		Select("topics.id, topics.slug, topics.name, COUNT(DISTINCT entries.id) AS count").
		Joins("LEFT JOIN entry_topics ON entry_topics.topic_id = topics.id").
		Joins("LEFT JOIN entries ON entries.id = entry_topics.entry_id AND entries.status = ? AND entries.deleted_at IS NULL", db.StatusPublish).
		Where("topics.deleted_at IS NULL").
		Group("topics.id, topics.slug, topics.name").
		Order("topics.name asc").
		Order("topics.id asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []TopicUsage{}
	}
	return rows, nil
}

// GetBySlug fetches a topic by its slug.
func (s *TopicService) GetBySlug(slug string) (*db.Topic, error) {
	var topic db.Topic
	if err := s.db.Where("slug = ?", NormalizeSlug(slug)).First(&topic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	return &topic, nil
}

// EnsureBySlugs resolves slugs to topics inside tx, creating missing ones with a
// name derived from the slug. Duplicates and blanks are ignored; the result
// keeps the first-seen order.
func (s *TopicService) EnsureBySlugs(tx *gorm.DB, slugs []string) ([]db.Topic, error) {
	if tx == nil {
		tx = s.db
	}

	seen := make(map[string]struct{}, len(slugs))
	topics := make([]db.Topic, 0, len(slugs))
	for _, raw := range slugs {
		slug := NormalizeSlug(raw)
		if slug == "" {
			if strings.TrimSpace(raw) != "" {
				return nil, ErrTopicInvalid
			}
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}

		topic := db.Topic{Slug: slug}
		if err := tx.Where(db.Topic{Slug: slug}).
			Attrs(db.Topic{Name: topicNameFromSlug(slug)}).
			FirstOrCreate(&topic).Error; err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

// NormalizeSlug lowercases s and collapses every run of non-alphanumeric runes
// into a single hyphen.
func NormalizeSlug(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

func topicNameFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, word := range words {
		runes := []rune(word)
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
