package service

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/longform/internal/db"
)

// OrderMode 是列表查询使用的排序策略。
type OrderMode string

const (
	OrderManual  OrderMode = "manual"
	OrderPopular OrderMode = "popular"
	OrderDate    OrderMode = "date"
	OrderTitle   OrderMode = "title"
)

const (
	defaultPerPage = 12
	maxPerPage     = 100
)

// ParseOrderMode 解析排序模式，未知值返回 false。
func ParseOrderMode(raw string) (OrderMode, bool) {
	switch OrderMode(strings.ToLower(strings.TrimSpace(raw))) {
	case OrderManual:
		return OrderManual, true
	case OrderPopular:
		return OrderPopular, true
	case OrderDate:
		return OrderDate, true
	case OrderTitle:
		return OrderTitle, true
	}
	return "", false
}

// NormalizeOrderMode 将任意输入收敛为合法模式，无法识别时回退到 date。
func NormalizeOrderMode(raw string) OrderMode {
	if mode, ok := ParseOrderMode(raw); ok {
		return mode
	}
	return OrderDate
}

// ResolveOrderMode picks the mode for one request. An explicit mode in the
// request always wins; the site default is consulted only when the request
// names none (or asks for "default").
func ResolveOrderMode(requested string, siteDefault OrderMode) OrderMode {
	trimmed := strings.ToLower(strings.TrimSpace(requested))
	if trimmed == "" || trimmed == "default" {
		return NormalizeOrderMode(string(siteDefault))
	}
	return NormalizeOrderMode(trimmed)
}

// IsOldestFirst reports whether a filter request asks for "old", the
// oldest-first view that is not one of the stored order modes.
func IsOldestFirst(requested string) bool {
	return strings.EqualFold(strings.TrimSpace(requested), "old")
}

// OldestFirst 按发布时间正序排列，id 正序兜底。
func OldestFirst(base QueryArgs) QueryArgs {
	args := BuildQueryArgs(OrderDate, base)
	args.OrderBy = []SortTerm{
		{Key: SortPublishedAt},
		{Key: SortID},
	}
	return args
}

// SortKey 标识排序项引用的字段。
type SortKey int

const (
	// SortManualPartition puts entries with an explicit menu order first.
	SortManualPartition SortKey = iota
	SortMenuOrder
	SortPublishedAt
	SortTitle
	SortViewCount
	SortID
)

// SortTerm 是排序链中的一环。
type SortTerm struct {
	Key  SortKey
	Desc bool
}

// QueryArgs 描述一次内容列表查询。
type QueryArgs struct {
	EntryType  db.EntryType
	Status     db.EntryStatus
	TopicSlugs []string
	Search     string
	Page       int
	PerPage    int
	Mode       OrderMode
	OrderBy    []SortTerm
}

// BuildQueryArgs 根据排序模式生成排序链，其余查询条件沿用 base。
func BuildQueryArgs(mode OrderMode, base QueryArgs) QueryArgs {
	args := base
	args.TopicSlugs = slices.Clone(base.TopicSlugs)

	switch mode {
	case OrderManual:
		args.Mode = OrderManual
		args.OrderBy = []SortTerm{
			{Key: SortManualPartition},
			{Key: SortMenuOrder},
			{Key: SortPublishedAt, Desc: true},
		}
	case OrderPopular:
		args.Mode = OrderPopular
		args.OrderBy = []SortTerm{
			{Key: SortViewCount, Desc: true},
			{Key: SortPublishedAt, Desc: true},
		}
	case OrderTitle:
		args.Mode = OrderTitle
		args.OrderBy = []SortTerm{
			{Key: SortTitle},
		}
	default:
		args.Mode = OrderDate
		args.OrderBy = []SortTerm{
			{Key: SortPublishedAt, Desc: true},
		}
	}

	// id 兜底，保证排序是全序且翻页稳定
	args.OrderBy = append(args.OrderBy, SortTerm{Key: SortID, Desc: true})
	return args
}

// Normalize 修正分页参数：页码至少为 1，每页默认 12 条、最多 100 条。
func (a QueryArgs) Normalize() QueryArgs {
	if a.Page <= 0 {
		a.Page = 1
	}
	if a.PerPage <= 0 {
		a.PerPage = defaultPerPage
	}
	if a.PerPage > maxPerPage {
		a.PerPage = maxPerPage
	}
	return a
}

// NeedsStatistics reports whether ordering reads the pageview counter.
func (a QueryArgs) NeedsStatistics() bool {
	for _, term := range a.OrderBy {
		if term.Key == SortViewCount {
			return true
		}
	}
	return false
}

// OrderClause renders the sort chain as SQL for the entries table. Missing
// pageview rows are read as zero so they are never dropped from the result.
func (a QueryArgs) OrderClause() string {
	parts := make([]string, 0, len(a.OrderBy))
	for _, term := range a.OrderBy {
		direction := "ASC"
		if term.Desc {
			direction = "DESC"
		}
		parts = append(parts, sortExpr(term.Key)+" "+direction)
	}
	return strings.Join(parts, ", ")
}

func sortExpr(key SortKey) string {
	switch key {
	case SortManualPartition:
		return "CASE WHEN entries.menu_order > 0 THEN 0 ELSE 1 END"
	case SortMenuOrder:
		return "entries.menu_order"
	case SortPublishedAt:
		return "entries.published_at"
	case SortTitle:
		return "entries.title"
	case SortViewCount:
		return "COALESCE(entry_statistics.page_views, 0)"
	default:
		return "entries.id"
	}
}

// OrderKey 是排序比较所需的字段快照。
type OrderKey struct {
	ID          uint
	MenuOrder   int
	PublishedAt time.Time
	Title       string
	PageViews   uint64
}

// OrderKeyOf 从实体提取排序字段，缺失的浏览量与发布时间按零值处理。
func OrderKeyOf(entry *db.Entry) OrderKey {
	key := OrderKey{
		ID:        entry.ID,
		MenuOrder: entry.MenuOrder,
		Title:     entry.Title,
		PageViews: entry.PageViews(),
	}
	if entry.PublishedAt != nil {
		key.PublishedAt = *entry.PublishedAt
	}
	return key
}

// Compare orders two keys by the sort chain, mirroring OrderClause.
func (a QueryArgs) Compare(x, y OrderKey) int {
	for _, term := range a.OrderBy {
		c := compareKey(term.Key, x, y)
		if term.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func compareKey(key SortKey, x, y OrderKey) int {
	switch key {
	case SortManualPartition:
		return cmp.Compare(manualPartition(x.MenuOrder), manualPartition(y.MenuOrder))
	case SortMenuOrder:
		return cmp.Compare(x.MenuOrder, y.MenuOrder)
	case SortPublishedAt:
		return x.PublishedAt.Compare(y.PublishedAt)
	case SortTitle:
		return strings.Compare(x.Title, y.Title)
	case SortViewCount:
		return cmp.Compare(x.PageViews, y.PageViews)
	default:
		return cmp.Compare(x.ID, y.ID)
	}
}

func manualPartition(menuOrder int) int {
	if menuOrder > 0 {
		return 0
	}
	return 1
}

// SortEntries sorts entries in place using the sort chain.
func (a QueryArgs) SortEntries(entries []db.Entry) {
	slices.SortStableFunc(entries, func(x, y db.Entry) int {
		return a.Compare(OrderKeyOf(&x), OrderKeyOf(&y))
	})
}
