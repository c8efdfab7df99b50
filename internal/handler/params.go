package handler

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FilterParams 是 /ajax/filter 的表单参数。
type FilterParams struct {
	Nonce       string   `form:"nonce" binding:"required"`
	PostType    string   `form:"post_type" binding:"omitempty,oneof=essay jotting"`
	Topics      []string `form:"topics"`
	TopicsArray []string `form:"topics[]"`
	Sort        string   `form:"sort" binding:"max=32"`
	Search      string   `form:"search" binding:"max=200"`
	Page        int      `form:"page"`
	PerPage     int      `form:"per_page"`
}

// TopicSlugs merges both topic encodings.
func (p FilterParams) TopicSlugs() []string {
	return splitList(append(append([]string(nil), p.Topics...), p.TopicsArray...))
}

// PageviewParams 是 /ajax/pageview 的表单参数。
type PageviewParams struct {
	Nonce  string `form:"nonce" binding:"required"`
	PostID uint   `form:"post_id" binding:"required"`
}

// DebugLogParams 是 /ajax/debug-log 的表单参数。
type DebugLogParams struct {
	Nonce   string `form:"nonce" binding:"required"`
	LogData string `form:"log_data" binding:"required"`
}

// SubscribeParams 是 /ajax/subscribe 的表单参数。
type SubscribeParams struct {
	Nonce string `form:"nonce" binding:"required"`
	Email string `form:"email" binding:"required,email,max=254"`
}

// EntryParams carries one editor save from either entry point. Pointer fields
// left nil were not part of the request. The block editor sends the document
// as JSON in Content; the legacy form sends it as text in ContentText.
type EntryParams struct {
	Type          string          `json:"type" form:"type" binding:"omitempty,oneof=essay jotting"`
	Title         *string         `json:"title" form:"title" binding:"omitempty,max=300"`
	Slug          *string         `json:"slug" form:"slug" binding:"omitempty,slug"`
	Subtitle      *string         `json:"subtitle" form:"subtitle" binding:"omitempty,max=500"`
	ReadTime      *int            `json:"readTime" form:"read_time" binding:"omitempty,min=0"`
	Topics        []string        `json:"topics" form:"topics"`
	CardImage     *string         `json:"cardImage" form:"card_image"`
	FeaturedImage *string         `json:"featuredImage" form:"featured_image"`
	MenuOrder     *int            `json:"menuOrder" form:"menu_order" binding:"omitempty,min=0"`
	Content       json.RawMessage `json:"content" form:"-"`
	ContentText   *string         `json:"-" form:"content"`
	Status        *string         `json:"status" form:"status" binding:"omitempty,oneof=draft pending private publish published"`
	PublishedAt   *time.Time      `json:"publishedAt" form:"published_at" time_format:"2006-01-02T15:04"`
}

// EssayOrderParams 是站点默认排序的更新请求。
type EssayOrderParams struct {
	Order string `json:"order" binding:"required,oneof=manual popular date title"`
}

var registerOnce sync.Once

func registerValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("slug", validateSlug)
		}
	})
}

// validateSlug accepts lowercase letters, digits and single inner hyphens.
func validateSlug(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" || strings.HasPrefix(value, "-") || strings.HasSuffix(value, "-") || strings.Contains(value, "--") {
		return false
	}
	for _, r := range value {
		if r == '-' || unicode.IsDigit(r) || (unicode.IsLetter(r) && !unicode.IsUpper(r)) {
			continue
		}
		return false
	}
	return true
}
