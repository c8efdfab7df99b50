package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/longform/internal/db"
	"github.com/longform/internal/service"
)

const codeEntryIncomplete = "entry_incomplete"

// entryView 是后台接口返回的内容结构。
type entryView struct {
	ID          uint       `json:"id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Subtitle    string     `json:"subtitle"`
	ReadTime    int        `json:"readTime"`
	Topics      []string   `json:"topics"`
	CardImage   string     `json:"cardImage"`
	Featured    string     `json:"featuredImage"`
	MenuOrder   int        `json:"menuOrder"`
	Views       uint64     `json:"views"`
	PublishedAt *time.Time `json:"publishedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Content     string     `json:"content,omitempty"`
}

func entryViewOf(entry *db.Entry, withContent bool) entryView {
	view := entryView{
		ID:          entry.ID,
		Type:        string(entry.Type),
		Status:      string(entry.Status),
		Title:       entry.Title,
		Slug:        entry.Slug,
		Subtitle:    entry.Subtitle,
		ReadTime:    entry.ReadTimeMinutes,
		Topics:      entry.TopicSlugs(),
		CardImage:   entry.CardImageURL,
		Featured:    entry.FeaturedImageURL,
		MenuOrder:   entry.MenuOrder,
		Views:       entry.PageViews(),
		PublishedAt: entry.PublishedAt,
		UpdatedAt:   entry.UpdatedAt,
	}
	if withContent {
		view.Content = entry.Content
	}
	return view
}

// ListEntries 返回后台内容列表，支持 type、orderby、page、per_page。
func (a *API) ListEntries(c *gin.Context) {
	entryType := db.EntryType(strings.TrimSpace(c.Query("type")))
	if entryType != "" && !entryType.Valid() {
		respondError(c, http.StatusBadRequest, "无效的内容类型")
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))

	result, err := a.entries.AdminList(entryType, c.Query("orderby"), page, perPage)
	if err != nil {
		a.internalError(c, "list_entries", err, false)
		return
	}

	views := make([]entryView, 0, len(result.Entries))
	for i := range result.Entries {
		views = append(views, entryViewOf(&result.Entries[i], false))
	}
	c.JSON(http.StatusOK, gin.H{
		"entries": views,
		"total":   result.Total,
		"pages":   result.Pages,
		"page":    result.Page,
	})
}

// GetEntry 返回单条内容及其区块文档。
func (a *API) GetEntry(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的内容ID")
		return
	}
	entry, err := a.entries.Get(id)
	if err != nil {
		a.respondSaveError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entryViewOf(entry, true)})
}

// CreateEntry 是区块编辑器的新建入口。
func (a *API) CreateEntry(c *gin.Context) {
	a.saveFromEditor(c, 0)
}

// UpdateEntry 是区块编辑器的保存入口。
func (a *API) UpdateEntry(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的内容ID")
		return
	}
	a.saveFromEditor(c, id)
}

func (a *API) saveFromEditor(c *gin.Context, id uint) {
	var params EntryParams
	if !bindJSON(c, &params, "请求参数不合法") {
		return
	}
	edit, err := params.editRequest()
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	status := http.StatusOK
	if id == 0 {
		status = http.StatusCreated
	}

	entry, err := a.entries.Save(service.SaveCommand{
		ID:     id,
		Type:   params.entryType(),
		UserID: a.currentUserID(c),
		Edit:   edit,
		Source: service.SourceBlockEditor,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			body := gin.H{
				"code":       codeEntryIncomplete,
				"message":    verr.Error(),
				"violations": verr.Violations,
				"status":     db.StatusDraft,
			}
			if entry != nil {
				body["status"] = entry.Status
			}
			c.JSON(http.StatusBadRequest, body)
			return
		}
		a.respondSaveError(c, err)
		return
	}
	c.JSON(status, gin.H{"entry": entryViewOf(entry, true)})
}

// SubmitEntryForm 是传统表单的保存入口，结果以会话通知的形式返回。
func (a *API) SubmitEntryForm(c *gin.Context) {
	key := c.Param("id")
	var id uint
	if key == "" {
		key = "new"
	} else {
		parsed, err := parseUintParam(c, "id")
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的内容ID")
			return
		}
		id = parsed
	}

	var params EntryParams
	if err := c.ShouldBind(&params); err != nil {
		a.redirectWithNotices(c, key, []string{"请求参数不合法"})
		return
	}
	if values, ok := c.GetPostFormArray("topics"); ok {
		params.Topics = splitList(values)
	} else {
		params.Topics = nil
	}
	edit, err := params.editRequest()
	if err != nil {
		a.redirectWithNotices(c, key, []string{err.Error()})
		return
	}

	entry, err := a.entries.Save(service.SaveCommand{
		ID:     id,
		Type:   params.entryType(),
		UserID: a.currentUserID(c),
		Edit:   edit,
		Source: service.SourceLegacyForm,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			a.redirectWithNotices(c, key, verr.Messages())
			return
		}
		if errors.Is(err, service.ErrEntryNotFound) {
			respondError(c, http.StatusNotFound, "内容不存在")
			return
		}
		if isEditError(err) {
			a.redirectWithNotices(c, key, []string{err.Error()})
			return
		}
		a.internalError(c, "submit_entry_form", err, false)
		return
	}

	a.redirectWithNotices(c, strconv.FormatUint(uint64(entry.ID), 10), []string{"Entry saved."})
}

// EntryNotices 返回并清除传统表单保存后留下的通知。
func (a *API) EntryNotices(c *gin.Context) {
	session := sessions.Default(c)
	key := noticeKey(c.Param("id"))
	notices, _ := session.Get(key).([]string)
	if notices == nil {
		notices = []string{}
	}
	session.Delete(key)
	if err := session.Save(); err != nil {
		a.internalError(c, "entry_notices", err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notices": notices})
}

func (a *API) redirectWithNotices(c *gin.Context, key string, notices []string) {
	session := sessions.Default(c)
	existing, _ := session.Get(noticeKey(key)).([]string)
	session.Set(noticeKey(key), append(existing, notices...))
	if err := session.Save(); err != nil {
		a.internalError(c, "entry_notices", err, false)
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/admin/entries/%s/notices", key))
}

func noticeKey(id string) string {
	return "entry:" + id
}

func (a *API) respondSaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		respondError(c, http.StatusNotFound, "内容不存在")
	case isEditError(err):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		a.internalError(c, "save_entry", err, false)
	}
}

func isEditError(err error) bool {
	return errors.Is(err, service.ErrContentInvalid) ||
		errors.Is(err, service.ErrMenuOrderInvalid) ||
		errors.Is(err, service.ErrReadTimeInvalid) ||
		errors.Is(err, service.ErrEntryTypeInvalid) ||
		errors.Is(err, service.ErrTopicInvalid)
}

func (p EntryParams) entryType() db.EntryType {
	if p.Type == string(db.EntryTypeJotting) {
		return db.EntryTypeJotting
	}
	return db.EntryTypeEssay
}

// editRequest 转换为服务层请求，未提交的字段保持 nil。
func (p EntryParams) editRequest() (service.EditRequest, error) {
	edit := service.EditRequest{
		Title:            p.Title,
		Slug:             p.Slug,
		Subtitle:         p.Subtitle,
		ReadTimeMinutes:  p.ReadTime,
		CardImageURL:     p.CardImage,
		FeaturedImageURL: p.FeaturedImage,
		MenuOrder:        p.MenuOrder,
		PublishedAt:      p.PublishedAt,
	}
	if p.Topics != nil {
		edit.TopicSlugs = make([]string, 0, len(p.Topics))
		for _, raw := range p.Topics {
			if slug := service.NormalizeSlug(raw); slug != "" {
				edit.TopicSlugs = append(edit.TopicSlugs, slug)
			}
		}
	}

	if p.Status != nil {
		status, ok := db.ParseEntryStatus(*p.Status)
		if !ok {
			return edit, fmt.Errorf("unknown status %q", *p.Status)
		}
		edit.Status = &status
	}

	switch raw := bytes.TrimSpace(p.Content); {
	case len(raw) > 0 && !bytes.Equal(raw, []byte("null")):
		content := string(raw)
		if raw[0] == '"' {
			// 编辑器也可能把文档作为字符串提交
			if err := json.Unmarshal(raw, &content); err != nil {
				return edit, fmt.Errorf("content: %w", err)
			}
		}
		edit.Content = &content
	case p.ContentText != nil:
		content := *p.ContentText
		edit.Content = &content
	}
	return edit, nil
}
