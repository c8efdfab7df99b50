package db

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

func TestParseEntryStatus(t *testing.T) {
	tests := []struct {
		raw    string
		want   EntryStatus
		wantOK bool
	}{
		{raw: "draft", want: StatusDraft, wantOK: true},
		{raw: " Publish ", want: StatusPublish, wantOK: true},
		{raw: "published", want: StatusPublish, wantOK: true},
		{raw: "private", want: StatusPrivate, wantOK: true},
		{raw: "trash", wantOK: false},
		{raw: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseEntryStatus(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("expected (%q,%v), got (%q,%v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestEntryCardImagePrefersCardOverFeatured(t *testing.T) {
	entry := Entry{CardImageURL: " ", FeaturedImageURL: "https://example.com/f.jpg"}
	if got := entry.CardImage(); got != "https://example.com/f.jpg" {
		t.Fatalf("expected featured fallback, got %q", got)
	}

	entry.CardImageURL = "https://example.com/c.jpg"
	if got := entry.CardImage(); got != "https://example.com/c.jpg" {
		t.Fatalf("expected card image, got %q", got)
	}
}

func TestEntryPageViewsWithoutStatistic(t *testing.T) {
	var entry Entry
	if entry.PageViews() != 0 {
		t.Fatalf("expected zero views without statistic row")
	}
	entry.Statistic = &EntryStatistic{PageViews: 7}
	if entry.PageViews() != 7 {
		t.Fatalf("expected 7 views, got %d", entry.PageViews())
	}
}

func TestUserCapabilities(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	author := &User{Role: RoleAuthor}
	var anonymous *User

	if !admin.Can(CapManageOptions) || !admin.Can(CapEditPosts) {
		t.Fatalf("admin should hold every capability")
	}
	if author.Can(CapManageOptions) {
		t.Fatalf("author must not manage options")
	}
	if !author.Can(CapEditPosts) {
		t.Fatalf("author should edit posts")
	}
	if anonymous.Can(CapEditPosts) {
		t.Fatalf("nil user must not hold capabilities")
	}
}

func TestEnsureUserCreatesOnce(t *testing.T) {
	dsn := fmt.Sprintf("file:ensure-user-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := Open(sqlite.Open(dsn), logger.Silent)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := EnsureUser(gdb, "root", "secret", RoleAdmin); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if err := EnsureUser(gdb, "root", "other", RoleAuthor); err != nil {
		t.Fatalf("ensure user again: %v", err)
	}

	var users []User
	if err := gdb.Find(&users).Error; err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].Role != RoleAdmin {
		t.Fatalf("expected admin role, got %q", users[0].Role)
	}
	if users[0].Password == "secret" {
		t.Fatalf("password must be hashed")
	}
}
