package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/longform/internal/db"
)

// ErrEntryIncomplete is matched by every *ValidationError.
var ErrEntryIncomplete = errors.New("entry is missing required fields for publishing")

// ViolationKind 标识一条发布校验失败的原因。
type ViolationKind string

const (
	ViolationSubtitleMissing ViolationKind = "subtitle_missing"
	ViolationReadTimeMissing ViolationKind = "read_time_missing"
	ViolationTopicMissing    ViolationKind = "topic_missing"
	ViolationImageMissing    ViolationKind = "image_missing"
)

// Violation 是一条面向编辑者的校验失败信息。
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	Field   string        `json:"field"`
	Message string        `json:"message"`
}

// ValidationError 汇总一次发布请求的全部校验失败项。
type ValidationError struct {
	EntryType  db.EntryType
	Violations []Violation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s cannot be published: %s", e.EntryType, strings.Join(e.Messages(), "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrEntryIncomplete
}

// Messages 按顺序返回每条失败信息。
func (e *ValidationError) Messages() []string {
	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		messages = append(messages, v.Message)
	}
	return messages
}

// EditRequest carries the fields of one editor save. A nil field was not
// part of the request; TopicSlugs follows the same rule (nil = omitted,
// empty = cleared).
type EditRequest struct {
	Title            *string
	Slug             *string
	Subtitle         *string
	ReadTimeMinutes  *int
	TopicSlugs       []string
	CardImageURL     *string
	FeaturedImageURL *string
	MenuOrder        *int
	Content          *string
	Status           *db.EntryStatus
	PublishedAt      *time.Time
}

// ValidateForPublish checks the required-field list for entryType. Each check
// reads the request first and falls back to the persisted entry (nil for a new
// one). Every violation is returned, in a fixed order.
func ValidateForPublish(entryType db.EntryType, req EditRequest, persisted *db.Entry) []Violation {
	label := "Essay"
	if entryType == db.EntryTypeJotting {
		label = "Jotting"
	}

	var violations []Violation

	if strings.TrimSpace(effectiveString(req.Subtitle, persisted, func(e *db.Entry) string { return e.Subtitle })) == "" {
		violations = append(violations, Violation{
			Kind:    ViolationSubtitleMissing,
			Field:   "subtitle",
			Message: fmt.Sprintf("Subtitle/dek is required (%s Details)", label),
		})
	}

	if entryType != db.EntryTypeEssay {
		return violations
	}

	if effectiveReadTime(req, persisted) <= 0 {
		violations = append(violations, Violation{
			Kind:    ViolationReadTimeMissing,
			Field:   "read_time",
			Message: "Read time is required (Essay Details)",
		})
	}

	if !hasTopics(req, persisted) {
		violations = append(violations, Violation{
			Kind:    ViolationTopicMissing,
			Field:   "topics",
			Message: "At least one topic is required",
		})
	}

	card := effectiveString(req.CardImageURL, persisted, func(e *db.Entry) string { return e.CardImageURL })
	featured := effectiveString(req.FeaturedImageURL, persisted, func(e *db.Entry) string { return e.FeaturedImageURL })
	if strings.TrimSpace(card) == "" && strings.TrimSpace(featured) == "" {
		violations = append(violations, Violation{
			Kind:    ViolationImageMissing,
			Field:   "card_image",
			Message: "A card image or featured image is required",
		})
	}

	return violations
}

// CheckPublish is the one publish gate shared by every save path.
func CheckPublish(entryType db.EntryType, req EditRequest, persisted *db.Entry) error {
	violations := ValidateForPublish(entryType, req, persisted)
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{EntryType: entryType, Violations: violations}
}

func effectiveString(value *string, persisted *db.Entry, field func(*db.Entry) string) string {
	if value != nil {
		return *value
	}
	if persisted != nil {
		return field(persisted)
	}
	return ""
}

func effectiveReadTime(req EditRequest, persisted *db.Entry) int {
	if req.ReadTimeMinutes != nil {
		return *req.ReadTimeMinutes
	}
	if persisted != nil {
		return persisted.ReadTimeMinutes
	}
	return 0
}

func hasTopics(req EditRequest, persisted *db.Entry) bool {
	if req.TopicSlugs != nil {
		for _, slug := range req.TopicSlugs {
			if strings.TrimSpace(slug) != "" {
				return true
			}
		}
		return false
	}
	return persisted != nil && len(persisted.Topics) > 0
}
