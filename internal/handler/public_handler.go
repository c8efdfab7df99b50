package handler

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/longform/internal/db"
	"github.com/longform/internal/render"
	"github.com/longform/internal/service"
	"go.uber.org/zap"
)

const visitorCookieName = "longform_visitor"

// visitorID 返回访客标识，首次访问时写入 cookie。
func visitorID(c *gin.Context) string {
	if id, err := c.Cookie(visitorCookieName); err == nil {
		if _, parseErr := uuid.Parse(id); parseErr == nil {
			return id
		}
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(visitorCookieName, id, 365*24*60*60, "/", "", false, true)
	return id
}

// ShowEssay 渲染已发布的长文。
func (a *API) ShowEssay(c *gin.Context) {
	a.showEntry(c, db.EntryTypeEssay)
}

// ShowJotting 渲染已发布的随笔。
func (a *API) ShowJotting(c *gin.Context) {
	a.showEntry(c, db.EntryTypeJotting)
}

func (a *API) showEntry(c *gin.Context, entryType db.EntryType) {
	entry, err := a.entries.GetPublishedBySlug(entryType, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			respondError(c, http.StatusNotFound, "内容不存在")
			return
		}
		a.internalError(c, "show_entry", err, false)
		return
	}

	doc, err := render.ParseDocument([]byte(entry.Content))
	if err != nil {
		a.internalError(c, "show_entry", err, false)
		return
	}

	nonce, err := a.nonces.Issue(service.NonceActionPublic, a.currentUserID(c))
	if err != nil {
		a.internalError(c, "show_entry", err, false)
		return
	}
	visitorID(c)

	pass := render.NewPass()
	body := a.registry.RenderPass(pass, doc)
	if pending := pass.PendingFootnotes(); pending > 0 {
		// 没有脚注区块时脚注不会输出
		a.logger.Warn("footnotes without a footnotes section",
			zap.String("slug", entry.Slug), zap.Int("count", pending))
	}

	image := entry.FeaturedImageURL
	if image == "" {
		image = entry.CardImage()
	}

	c.HTML(http.StatusOK, "entry.html", gin.H{
		"Entry": entry,
		"Image": image,
		"Nonce": nonce,
		// 区块渲染已完成转义与清洗
		"Body": template.HTML(body),
	})
}

// ListEssays 渲染长文列表，默认使用站点排序，可通过 ?sort= 覆盖。
func (a *API) ListEssays(c *gin.Context) {
	siteDefault, err := a.system.EssayDefaultOrder()
	if err != nil {
		a.internalError(c, "list_essays", err, false)
		return
	}
	mode := service.ResolveOrderMode(c.Query("sort"), siteDefault)

	page, _ := strconv.Atoi(c.Query("page"))
	var (
		topics []string
		topic  *db.Topic
	)
	if slug := service.NormalizeSlug(c.Query("topic")); slug != "" {
		topic, err = a.topics.GetBySlug(slug)
		if err != nil {
			if errors.Is(err, service.ErrTopicNotFound) {
				respondError(c, http.StatusNotFound, "话题不存在")
				return
			}
			a.internalError(c, "list_essays", err, false)
			return
		}
		topics = []string{topic.Slug}
	}

	result, err := a.entries.Query(service.BuildQueryArgs(mode, service.QueryArgs{
		EntryType:  db.EntryTypeEssay,
		Status:     db.StatusPublish,
		TopicSlugs: topics,
		Page:       page,
	}))
	if err != nil {
		a.internalError(c, "list_essays", err, false)
		return
	}

	posts := make([]filterPost, 0, len(result.Entries))
	for i := range result.Entries {
		posts = append(posts, a.filterPostOf(&result.Entries[i]))
	}

	nonce, err := a.nonces.Issue(service.NonceActionPublic, a.currentUserID(c))
	if err != nil {
		a.internalError(c, "list_essays", err, false)
		return
	}

	c.HTML(http.StatusOK, "essays.html", gin.H{
		"Posts": posts,
		"Topic": topic,
		"Order": mode,
		"Nonce": nonce,
		"Page":  result.Page,
		"Pages": result.Pages,
	})
}
