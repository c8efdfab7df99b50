package db

import "time"

// EntryStatistic 汇总单篇内容的浏览数据。
type EntryStatistic struct {
	ID           uint   `gorm:"primaryKey"`
	EntryID      uint   `gorm:"uniqueIndex"`
	PageViews    uint64 `gorm:"default:0"`
	LastViewedAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName 指定自定义表名，避免自动复数化导致的歧义。
func (EntryStatistic) TableName() string {
	return "entry_statistics"
}
