package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/longform/internal/db"
	"github.com/longform/internal/service"
	"go.uber.org/zap"
)

type filterPost struct {
	ID        uint     `json:"id"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Date      string   `json:"date"`
	DateShort string   `json:"dateShort"`
	Subtitle  string   `json:"subtitle"`
	ReadTime  int      `json:"readTime"`
	Image     string   `json:"image"`
	Tags      []string `json:"tags"`
	TagSlugs  []string `json:"tagSlugs"`
}

type filterResponse struct {
	Posts []filterPost `json:"posts"`
	Total int64        `json:"total"`
	Pages int          `json:"pages"`
	Page  int          `json:"page"`
}

// IssueNonce 为当前会话用户签发指定动作的 nonce。
func (a *API) IssueNonce(c *gin.Context) {
	action := strings.TrimSpace(c.DefaultQuery("action", service.NonceActionPublic))
	if action != service.NonceActionPublic && action != service.NonceActionDebugLog {
		ajaxError(c, http.StatusBadRequest, codeInvalidRequest)
		return
	}

	token, err := a.nonces.Issue(action, a.currentUserID(c))
	if err != nil {
		a.internalError(c, "issue_nonce", err, true)
		return
	}
	ajaxSuccess(c, gin.H{"nonce": token, "action": action})
}

// FilterContent 处理前台列表的筛选、排序与分页。
func (a *API) FilterContent(c *gin.Context) {
	var params FilterParams
	if err := c.ShouldBind(&params); err != nil {
		if strings.TrimSpace(c.PostForm("nonce")) == "" {
			ajaxError(c, http.StatusForbidden, codeInvalidNonce)
			return
		}
		ajaxError(c, http.StatusBadRequest, codeInvalidRequest)
		return
	}
	if err := a.nonces.Verify(params.Nonce, service.NonceActionPublic, a.currentUserID(c)); err != nil {
		ajaxError(c, http.StatusForbidden, codeInvalidNonce)
		return
	}

	entryType := db.EntryTypeEssay
	if params.PostType == string(db.EntryTypeJotting) {
		entryType = db.EntryTypeJotting
	}

	siteDefault := service.OrderDate
	if entryType == db.EntryTypeEssay {
		mode, err := a.system.EssayDefaultOrder()
		if err != nil {
			a.logger.Warn("load essay default order", zap.Error(err))
		}
		siteDefault = mode
	}
	mode := service.ResolveOrderMode(params.Sort, siteDefault)

	topicSlugs := make([]string, 0)
	for _, raw := range params.TopicSlugs() {
		if slug := service.NormalizeSlug(raw); slug != "" {
			topicSlugs = append(topicSlugs, slug)
		}
	}

	base := service.QueryArgs{
		EntryType:  entryType,
		Status:     db.StatusPublish,
		TopicSlugs: topicSlugs,
		Search:     strings.TrimSpace(params.Search),
		Page:       params.Page,
		PerPage:    params.PerPage,
	}
	var args service.QueryArgs
	if service.IsOldestFirst(params.Sort) {
		args = service.OldestFirst(base)
	} else {
		args = service.BuildQueryArgs(mode, base)
	}

	result, err := a.entries.Query(args)
	if err != nil {
		a.internalError(c, "filter_content", err, true)
		return
	}

	posts := make([]filterPost, 0, len(result.Entries))
	for i := range result.Entries {
		posts = append(posts, a.filterPostOf(&result.Entries[i]))
	}

	ajaxSuccess(c, filterResponse{
		Posts: posts,
		Total: result.Total,
		Pages: result.Pages,
		Page:  result.Page,
	})
}

func (a *API) filterPostOf(entry *db.Entry) filterPost {
	post := filterPost{
		ID:       entry.ID,
		Title:    entry.Title,
		URL:      a.entryURL(entry),
		Subtitle: entry.Subtitle,
		ReadTime: entry.ReadTimeMinutes,
		Image:    entry.CardImage(),
		Tags:     entry.TopicNames(),
		TagSlugs: entry.TopicSlugs(),
	}
	if entry.PublishedAt != nil {
		post.Date = entry.PublishedAt.Format("2 January 2006")
		post.DateShort = entry.PublishedAt.Format("2 Jan 2006")
	}
	return post
}

func (a *API) entryURL(entry *db.Entry) string {
	section := "essays"
	if entry.Type == db.EntryTypeJotting {
		section = "jottings"
	}
	return a.siteBaseURL + "/" + section + "/" + entry.Slug
}

// TrackPageview 记录匿名访客对已发布长文的一次浏览。
func (a *API) TrackPageview(c *gin.Context) {
	var params PageviewParams
	if err := c.ShouldBind(&params); err != nil {
		if strings.TrimSpace(c.PostForm("nonce")) == "" {
			ajaxError(c, http.StatusForbidden, codeInvalidNonce)
			return
		}
		ajaxError(c, http.StatusBadRequest, codeInvalidRequest)
		return
	}

	userID := a.currentUserID(c)
	if err := a.nonces.Verify(params.Nonce, service.NonceActionPublic, userID); err != nil {
		ajaxError(c, http.StatusForbidden, codeInvalidNonce)
		return
	}

	if userID != 0 {
		ajaxSuccess(c, gin.H{"skipped": true, "reason": service.PageviewSkippedLoggedIn})
		return
	}

	result, err := a.analytics.TrackPageview(params.PostID, a.now())
	if err != nil {
		a.internalError(c, "track_pageview", err, true)
		return
	}
	if !result.Tracked() {
		ajaxSuccess(c, gin.H{"skipped": true, "reason": result.Outcome})
		return
	}

	a.logger.Debug("pageview tracked",
		zap.Uint("entry_id", params.PostID),
		zap.Uint64("count", result.Count),
		zap.String("visitor", visitorID(c)),
	)
	ajaxSuccess(c, gin.H{"count": result.Count})
}

// DebugLog 接收前端调试日志，仅在调试模式下开放。
func (a *API) DebugLog(c *gin.Context) {
	if !a.debugMode {
		ajaxError(c, http.StatusNotFound, codeDebugDisabled)
		return
	}

	var params DebugLogParams
	if err := c.ShouldBind(&params); err != nil {
		if strings.TrimSpace(c.PostForm("nonce")) == "" {
			ajaxError(c, http.StatusForbidden, codeInvalidNonce)
			return
		}
		ajaxError(c, http.StatusBadRequest, codeInvalidLogData)
		return
	}

	user := a.currentUser(c)
	if err := a.nonces.Verify(params.Nonce, service.NonceActionDebugLog, a.currentUserID(c)); err != nil {
		ajaxError(c, http.StatusForbidden, codeInvalidNonce)
		return
	}
	if !user.Can(db.CapEditPosts) {
		ajaxError(c, http.StatusForbidden, codeForbidden)
		return
	}

	if err := a.debugLog.Write(params.LogData); err != nil {
		if errors.Is(err, service.ErrDebugLogInvalid) {
			ajaxError(c, http.StatusBadRequest, codeInvalidLogData)
			return
		}
		a.internalError(c, "debug_log", err, true)
		return
	}
	ajaxSuccess(c, gin.H{"logged": true})
}
