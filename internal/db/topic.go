package db

import "gorm.io/gorm"

// Topic 定义了话题分类，与内容为多对多关系。
type Topic struct {
	gorm.Model
	Slug    string  `gorm:"size:120;uniqueIndex;not null"`
	Name    string  `gorm:"size:200;not null"`
	Entries []Entry `gorm:"many2many:entry_topics;"`
}
