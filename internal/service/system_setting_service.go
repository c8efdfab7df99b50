package service

import (
	"errors"
	"fmt"

	"github.com/longform/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrOrderModeInvalid 表示提交的默认排序不是合法模式。
var ErrOrderModeInvalid = errors.New("order mode is invalid")

// SystemSettingService 提供站点级设置的读取与更新能力。
type SystemSettingService struct {
	db                *gorm.DB
	fallbackEssayMode OrderMode
}

// NewSystemSettingService 构造 SystemSettingService，fallback 为配置文件中的默认排序。
func NewSystemSettingService(gdb *gorm.DB, fallback OrderMode) *SystemSettingService {
	return &SystemSettingService{db: gdb, fallbackEssayMode: NormalizeOrderMode(string(fallback))}
}

// EssayDefaultOrder 读取长文默认排序；未设置或值非法时回退到配置默认值。
func (s *SystemSettingService) EssayDefaultOrder() (OrderMode, error) {
	var record db.SystemSetting
	if err := s.db.Where("key = ?", db.SettingKeyEssayDefaultOrder).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.fallbackEssayMode, nil
		}
		return s.fallbackEssayMode, fmt.Errorf("load essay default order: %w", err)
	}

	if mode, ok := ParseOrderMode(record.Value); ok {
		return mode, nil
	}
	return s.fallbackEssayMode, nil
}

// SetEssayDefaultOrder 保存长文默认排序。
func (s *SystemSettingService) SetEssayDefaultOrder(raw string) (OrderMode, error) {
	mode, ok := ParseOrderMode(raw)
	if !ok {
		return "", ErrOrderModeInvalid
	}
	if err := upsertSetting(s.db, db.SettingKeyEssayDefaultOrder, string(mode)); err != nil {
		return "", err
	}
	return mode, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
