package service

import (
	"testing"
	"time"

	"github.com/longform/internal/db"
)

func TestTrackPageviewCountsPublishedEssays(t *testing.T) {
	gdb := setupServiceTestDB(t)

	essay := db.Entry{Type: db.EntryTypeEssay, Status: db.StatusPublish, Slug: "essay", Title: "Essay"}
	if err := gdb.Create(&essay).Error; err != nil {
		t.Fatalf("failed to create essay: %v", err)
	}

	svc := NewAnalyticsService(gdb)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		result, err := svc.TrackPageview(essay.ID, base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("track %d failed: %v", i, err)
		}
		if !result.Tracked() || result.Count != uint64(i) {
			t.Fatalf("expected tracked count %d, got %+v", i, result)
		}
	}

	var stats db.EntryStatistic
	if err := gdb.Where("entry_id = ?", essay.ID).First(&stats).Error; err != nil {
		t.Fatalf("failed to load statistic: %v", err)
	}
	if stats.PageViews != 3 || !stats.LastViewedAt.Equal(base.Add(3*time.Minute)) {
		t.Fatalf("unexpected statistic %+v", stats)
	}
}

func TestTrackPageviewSkipsIneligibleEntries(t *testing.T) {
	gdb := setupServiceTestDB(t)

	jotting := db.Entry{Type: db.EntryTypeJotting, Status: db.StatusPublish, Slug: "jotting"}
	draft := db.Entry{Type: db.EntryTypeEssay, Status: db.StatusDraft, Slug: "draft"}
	for _, e := range []*db.Entry{&jotting, &draft} {
		if err := gdb.Create(e).Error; err != nil {
			t.Fatalf("failed to seed entry: %v", err)
		}
	}

	svc := NewAnalyticsService(gdb)
	now := time.Now()

	tests := []struct {
		name string
		id   uint
		want PageviewOutcome
	}{
		{"missing", 9999, PageviewSkippedMissing},
		{"jotting", jotting.ID, PageviewSkippedType},
		{"draft", draft.ID, PageviewSkippedStatus},
	}
	for _, tt := range tests {
		result, err := svc.TrackPageview(tt.id, now)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		if result.Outcome != tt.want || result.Tracked() {
			t.Fatalf("%s: expected %s, got %+v", tt.name, tt.want, result)
		}
	}

	var count int64
	gdb.Model(&db.EntryStatistic{}).Count(&count)
	if count != 0 {
		t.Fatalf("skipped views should not create statistics, found %d", count)
	}
}
