package service

import (
	"errors"
	"time"

	"github.com/longform/internal/db"
	"gorm.io/gorm"
)

// PageviewOutcome 描述一次浏览上报的处理结果。
type PageviewOutcome string

const (
	PageviewTracked         PageviewOutcome = "tracked"
	PageviewSkippedMissing  PageviewOutcome = "not_found"
	PageviewSkippedType     PageviewOutcome = "not_essay"
	PageviewSkippedStatus   PageviewOutcome = "not_published"
	PageviewSkippedLoggedIn PageviewOutcome = "logged_in"
)

// PageviewResult 汇总浏览上报的结果与最新计数。
type PageviewResult struct {
	Outcome PageviewOutcome
	Count   uint64
}

// Tracked reports whether the counter was incremented.
func (r PageviewResult) Tracked() bool {
	return r.Outcome == PageviewTracked
}

// AnalyticsService 负责处理长文浏览相关的统计逻辑。
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService 创建 AnalyticsService。
func NewAnalyticsService(gdb *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: gdb}
}

// TrackPageview increments the pageview counter of a published essay. Missing
// entries, other types and unpublished essays are skipped without error. The
// increment is a plain read-modify-write; concurrent visitors may lose updates.
func (s *AnalyticsService) TrackPageview(entryID uint, now time.Time) (PageviewResult, error) {
	var entry db.Entry
	if err := s.db.Select("id", "type", "status").First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PageviewResult{Outcome: PageviewSkippedMissing}, nil
		}
		return PageviewResult{}, err
	}
	if entry.Type != db.EntryTypeEssay {
		return PageviewResult{Outcome: PageviewSkippedType}, nil
	}
	if entry.Status != db.StatusPublish {
		return PageviewResult{Outcome: PageviewSkippedStatus}, nil
	}

	var stats db.EntryStatistic
	err := s.db.Where("entry_id = ?", entryID).First(&stats).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		stats = db.EntryStatistic{EntryID: entryID}
	case err != nil:
		return PageviewResult{}, err
	}

	stats.PageViews++
	stats.LastViewedAt = now
	if err := s.db.Save(&stats).Error; err != nil {
		return PageviewResult{}, err
	}

	return PageviewResult{Outcome: PageviewTracked, Count: stats.PageViews}, nil
}
