// Package seed fills an empty database with demo users, essays and jottings.
package seed

import (
	"errors"
	"fmt"
	"time"

	"github.com/longform/internal/db"
	"github.com/longform/internal/render"
	"github.com/longform/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrAlreadySeeded 表示数据库中已有内容，不再重复生成。
var ErrAlreadySeeded = errors.New("database already has entries")

// DemoPassword 是演示账号的初始密码。
const DemoPassword = "longform-demo"

// Summary 汇总一次数据生成的结果。
type Summary struct {
	Users    int
	Essays   int
	Jottings int
}

type essaySeed struct {
	title     string
	subtitle  string
	readTime  int
	topics    []string
	image     string
	menuOrder int
	views     uint64
	blocks    []render.Block
}

type jottingSeed struct {
	title    string
	subtitle string
	text     string
}

// Run 通过编辑器保存流程写入演示数据，所有内容都经过发布校验。
func Run(gdb *gorm.DB, logger *zap.Logger, now time.Time) (Summary, error) {
	var summary Summary
	if logger == nil {
		logger = zap.NewNop()
	}

	var count int64
	if err := gdb.Model(&db.Entry{}).Count(&count).Error; err != nil {
		return summary, err
	}
	if count > 0 {
		return summary, ErrAlreadySeeded
	}

	// 创建演示用户
	for username, role := range map[string]db.Role{"admin": db.RoleAdmin, "editor": db.RoleEditor} {
		if err := db.EnsureUser(gdb, username, DemoPassword, role); err != nil {
			return summary, fmt.Errorf("seed user %s: %w", username, err)
		}
		summary.Users++
	}
	var author db.User
	if err := gdb.Where("username = ?", "editor").First(&author).Error; err != nil {
		return summary, err
	}

	registry := render.DefaultRegistry()
	entries := service.NewEntryService(gdb, service.NewTopicService(gdb), registry, logger)
	analytics := service.NewAnalyticsService(gdb)

	for i, essay := range demoEssays() {
		content, err := (render.Document{Blocks: essay.blocks}).Marshal()
		if err != nil {
			return summary, err
		}
		publishedAt := now.AddDate(0, 0, -7*(len(demoEssays())-i))
		entry, err := entries.Save(service.SaveCommand{
			Type:   db.EntryTypeEssay,
			UserID: author.ID,
			Source: service.SourceBlockEditor,
			Edit: service.EditRequest{
				Title:           ptr(essay.title),
				Subtitle:        ptr(essay.subtitle),
				ReadTimeMinutes: ptr(essay.readTime),
				TopicSlugs:      essay.topics,
				CardImageURL:    ptr(essay.image),
				MenuOrder:       ptr(essay.menuOrder),
				Content:         ptr(string(content)),
				Status:          ptr(db.StatusPublish),
				PublishedAt:     &publishedAt,
			},
		})
		if err != nil {
			return summary, fmt.Errorf("seed essay %q: %w", essay.title, err)
		}
		for v := uint64(0); v < essay.views; v++ {
			if _, err := analytics.TrackPageview(entry.ID, now); err != nil {
				return summary, err
			}
		}
		summary.Essays++
	}

	for i, jotting := range demoJottings() {
		content, err := (render.Document{Blocks: []render.Block{
			{Name: "longform/paragraph", Attributes: render.Attributes{"content": jotting.text}},
		}}).Marshal()
		if err != nil {
			return summary, err
		}
		publishedAt := now.AddDate(0, 0, -i-1)
		if _, err := entries.Save(service.SaveCommand{
			Type:   db.EntryTypeJotting,
			UserID: author.ID,
			Source: service.SourceBlockEditor,
			Edit: service.EditRequest{
				Title:       ptr(jotting.title),
				Subtitle:    ptr(jotting.subtitle),
				Content:     ptr(string(content)),
				Status:      ptr(db.StatusPublish),
				PublishedAt: &publishedAt,
			},
		}); err != nil {
			return summary, fmt.Errorf("seed jotting %q: %w", jotting.title, err)
		}
		summary.Jottings++
	}

	logger.Info("demo data created",
		zap.Int("users", summary.Users),
		zap.Int("essays", summary.Essays),
		zap.Int("jottings", summary.Jottings),
	)
	return summary, nil
}

func ptr[T any](v T) *T {
	return &v
}

func paragraph(text string) render.Block {
	return render.Block{Name: "longform/paragraph", Attributes: render.Attributes{"content": text}}
}

func demoEssays() []essaySeed {
	return []essaySeed{
		{
			title:     "Why Consensus Is Hard",
			subtitle:  "Agreement among machines that cannot trust the clock",
			readTime:  12,
			topics:    []string{"distributed-systems", "engineering"},
			image:     "https://images.unsplash.com/photo-1518770660439-4636190af475?auto=format&fit=crop&w=1600&q=80",
			menuOrder: 1,
			views:     42,
			blocks: []render.Block{
				{Name: "longform/section-header", Attributes: render.Attributes{"title": "The problem", "number": "01"}},
				{Name: "longform/aside", Attributes: render.Attributes{"labelType": "note"}, InnerBlocks: []render.Block{
					paragraph("Two generals, one unreliable messenger."),
					{Name: "longform/footnote", Attributes: render.Attributes{"content": "Gray, <em>Notes on Data Base Operating Systems</em>, 1978."}},
				}},
				{Name: "longform/callout", Attributes: render.Attributes{"type": "tip", "content": "Timeouts are guesses, not facts."}},
				{Name: "longform/know-dont-know", Attributes: render.Attributes{
					"knowItems":     []interface{}{"Majorities intersect"},
					"dontKnowItems": []interface{}{"How long a partition lasts"},
				}},
				{Name: "longform/footnotes-section"},
			},
		},
		{
			title:    "Reading Slowly",
			subtitle: "Notes on attention and long-form text",
			readTime: 6,
			topics:   []string{"writing"},
			image:    "https://images.unsplash.com/photo-1487058792275-0ad4aaf24ca7?auto=format&fit=crop&w=1600&q=80",
			views:    7,
			blocks: []render.Block{
				{Name: "longform/markdown", Attributes: render.Attributes{"source": "Most reading is **skimming**. This essay is about the rest."}},
				{Name: "longform/pullquote", Attributes: render.Attributes{"quote": "Attention is the scarce input.", "size": "large"}},
				{Name: "longform/takeaways", InnerBlocks: []render.Block{
					{Name: "longform/takeaway-item", Attributes: render.Attributes{"heading": "Slow down", "description": "Re-read the hard paragraph."}},
				}},
			},
		},
		{
			title:    "An Assumptions Register",
			subtitle: "Writing down what a plan quietly depends on",
			readTime: 9,
			topics:   []string{"engineering", "planning"},
			image:    "https://images.unsplash.com/photo-1461749280684-dccba630e2f6?auto=format&fit=crop&w=1600&q=80",
			blocks: []render.Block{
				paragraph("Every roadmap rests on claims nobody has checked."),
				{Name: "longform/assumptions-register", Attributes: render.Attributes{"assumptions": []interface{}{
					map[string]interface{}{"text": "Traffic doubles yearly", "confidence": "low", "status": "untested"},
					map[string]interface{}{"text": "SQLite is enough", "confidence": "high", "status": "validated"},
				}}},
				{Name: "longform/related-reading", InnerBlocks: []render.Block{
					{Name: "longform/related-link", Attributes: render.Attributes{"url": "https://sqlite.org/whentouse.html", "title": "Appropriate Uses For SQLite", "source": "sqlite.org"}},
				}},
			},
		},
	}
}

func demoJottings() []jottingSeed {
	return []jottingSeed{
		{title: "On margins", subtitle: "A short note", text: "Wide margins make room for sidenotes."},
		{title: "Draft zero", subtitle: "Start ugly", text: "The first draft exists to be replaced."},
	}
}
