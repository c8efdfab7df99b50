package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Models 列出需要自动迁移的全部模型，测试中也复用这份清单。
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Topic{},
		&Entry{},
		&EntryStatistic{},
		&SystemSetting{},
		&Subscriber{},
	}
}

// Init 初始化数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 longform.db。
func Init(databasePath string) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "longform.db"
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	gdb, err := Open(sqlite.Open(path), logger.Warn)
	if err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open 打开连接并完成迁移，不修改全局实例。
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(Models()...); err != nil {
		return nil, err
	}

	// 历史数据中缺失的排序值统一归零，保证手动排序的分区判断成立
	if err := gdb.Model(&Entry{}).
		Where("menu_order IS NULL OR menu_order < 0").
		Update("menu_order", 0).Error; err != nil {
		return nil, err
	}

	return gdb, nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
