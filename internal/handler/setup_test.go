package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/longform/internal/config"
	"github.com/longform/internal/db"
	"github.com/longform/internal/handler"
	"github.com/longform/internal/router"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ginOnce sync.Once

const testPassword = "correct-horse"

// testServer 持有完整路由以及一个简单的 cookie 容器。
type testServer struct {
	t       *testing.T
	db      *gorm.DB
	api     *handler.API
	engine  *gin.Engine
	cookies map[string]*http.Cookie
}

func newTestServer(t *testing.T, configure func(*handler.Options)) *testServer {
	t.Helper()

	ginOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})

	name := strings.NewReplacer("/", "-", " ", "-").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	gdb, err := db.Open(sqlite.Open(dsn), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	for username, role := range map[string]db.Role{"admin": db.RoleAdmin, "editor": db.RoleEditor} {
		if err := db.EnsureUser(gdb, username, testPassword, role); err != nil {
			t.Fatalf("failed to seed user %s: %v", username, err)
		}
	}

	opts := handler.Options{
		DB:          gdb,
		Logger:      zap.NewNop(),
		NonceSecret: "test-nonce-secret",
		SiteBaseURL: "https://example.test",
	}
	if configure != nil {
		configure(&opts)
	}
	api := handler.NewAPI(opts)
	engine := router.SetupRouter(config.AppConfig{SessionSecret: "test-session-secret"}, api, zap.NewNop())

	return &testServer{t: t, db: gdb, api: api, engine: engine, cookies: map[string]*http.Cookie{}}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	s.t.Helper()
	for _, cookie := range s.cookies {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	s.engine.ServeHTTP(rr, req)
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(s.cookies, cookie.Name)
			continue
		}
		s.cookies[cookie.Name] = cookie
	}
	return rr
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *testServer) sendJSON(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

// login 以指定用户登录并返回其 ID。
func (s *testServer) login(username string) uint {
	s.t.Helper()
	rr := s.postForm("/admin/login", url.Values{"username": {username}, "password": {testPassword}})
	if rr.Code != http.StatusOK {
		s.t.Fatalf("login %s failed: %d %s", username, rr.Code, rr.Body.String())
	}
	var user db.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		s.t.Fatalf("failed to load user: %v", err)
	}
	return user.ID
}

func (s *testServer) nonce(action string, userID uint) string {
	s.t.Helper()
	token, err := s.api.Nonces().Issue(action, userID)
	if err != nil {
		s.t.Fatalf("failed to issue nonce: %v", err)
	}
	return token
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

// ajaxEnvelope 对应 AJAX 接口的统一响应结构。
type ajaxEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeAjax(t *testing.T, rr *httptest.ResponseRecorder, data interface{}) ajaxEnvelope {
	t.Helper()
	var env ajaxEnvelope
	decodeJSON(t, rr, &env)
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("failed to decode data %s: %v", env.Data, err)
		}
	}
	return env
}

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// seedEssays 创建三篇已发布长文，以及一篇随笔和一篇草稿。
//
//	id 1 alpha  menu 0  day 1  views 5
//	id 2 beta   menu 1  day 2  no stats
//	id 3 gamma  menu 2  day 3  views 10
func seedEssays(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	published := func(day int) *time.Time {
		at := baseTime.AddDate(0, 0, day)
		return &at
	}
	paragraph := `{"blocks":[{"name":"core/paragraph","attributes":{"content":"Body text"}}]}`
	entries := []db.Entry{
		{Type: db.EntryTypeEssay, Slug: "alpha", Title: "Alpha", Subtitle: "First", ReadTimeMinutes: 3, Status: db.StatusPublish, PublishedAt: published(1), Content: paragraph, CardImageURL: "https://img.test/a.jpg", Statistic: &db.EntryStatistic{PageViews: 5}},
		{Type: db.EntryTypeEssay, Slug: "beta", Title: "Beta", Subtitle: "Second", ReadTimeMinutes: 4, MenuOrder: 1, Status: db.StatusPublish, PublishedAt: published(2), Content: paragraph},
		{Type: db.EntryTypeEssay, Slug: "gamma", Title: "Gamma", Subtitle: "Third", ReadTimeMinutes: 5, MenuOrder: 2, Status: db.StatusPublish, PublishedAt: published(3), Content: paragraph, Statistic: &db.EntryStatistic{PageViews: 10}},
		{Type: db.EntryTypeJotting, Slug: "note", Title: "Note", Subtitle: "Jotting", Status: db.StatusPublish, PublishedAt: published(4), Content: paragraph},
		{Type: db.EntryTypeEssay, Slug: "hidden", Title: "Hidden", Status: db.StatusDraft, Content: paragraph},
	}
	for i := range entries {
		if err := gdb.Create(&entries[i]).Error; err != nil {
			t.Fatalf("failed to seed entry %s: %v", entries[i].Slug, err)
		}
	}
}
