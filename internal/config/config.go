package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/longform/internal/service"
	"gopkg.in/yaml.v3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabasePath      string
	SessionSecret     string
	NonceSecret       string
	NonceTTL          time.Duration
	GinMode           string
	SiteBaseURL       string
	SiteName          string
	SubscribeNotify   string
	DebugMode         bool
	DebugLogPath      string
	EssayDefaultOrder service.OrderMode
	SuperRootUserName string
	SuperRootPassword string
	LogLevel          string
}

// fileConfig 对应 CONFIG_FILE 指向的 YAML 文件，只填充环境变量未提供的项。
type fileConfig struct {
	ListenAddr        string `yaml:"listen_addr"`
	Port              string `yaml:"port"`
	DatabasePath      string `yaml:"database_path"`
	SessionSecret     string `yaml:"session_secret"`
	NonceSecret       string `yaml:"nonce_secret"`
	NonceTTL          string `yaml:"nonce_ttl"`
	GinMode           string `yaml:"gin_mode"`
	SiteBaseURL       string `yaml:"site_base_url"`
	SiteName          string `yaml:"site_name"`
	SubscribeNotify   string `yaml:"subscribe_notify_email"`
	DebugMode         *bool  `yaml:"debug_mode"`
	DebugLogPath      string `yaml:"debug_log_path"`
	EssayDefaultOrder string `yaml:"essay_default_order"`
	SuperRootUserName string `yaml:"super_root_user_name"`
	SuperRootPassword string `yaml:"super_root_password"`
	LogLevel          string `yaml:"log_level"`
}

// Load 读取应用配置。优先级：环境变量 > CONFIG_FILE 指向的 YAML > 内置默认值。
// 当前目录下的 .env 会先被载入环境变量，文件不存在时忽略。
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load .env: %w", err)
	}

	file, err := readFile(strings.TrimSpace(os.Getenv("CONFIG_FILE")))
	if err != nil {
		return AppConfig{}, err
	}

	port := pick("PORT", file.Port, "8080")

	cfg := AppConfig{
		Port:              port,
		ListenAddr:        pick("LISTEN_ADDR", file.ListenAddr, ":"+port),
		DatabasePath:      pick("DATABASE_PATH", file.DatabasePath, "longform.db"),
		SessionSecret:     pick("SESSION_SECRET", file.SessionSecret, "longform-dev-secret"),
		GinMode:           pick("GIN_MODE", file.GinMode, "release"),
		SiteBaseURL:       strings.TrimRight(pick("SITE_BASE_URL", file.SiteBaseURL, "http://localhost:"+port), "/"),
		SiteName:          pick("SITE_NAME", file.SiteName, "Longform"),
		SubscribeNotify:   pick("SUBSCRIBE_NOTIFY_EMAIL", file.SubscribeNotify, ""),
		DebugLogPath:      pick("DEBUG_LOG_PATH", file.DebugLogPath, "debug.log"),
		SuperRootUserName: pick("SUPER_ROOT_USER_NAME", file.SuperRootUserName, ""),
		SuperRootPassword: pick("SUPER_ROOT_PASSWORD", file.SuperRootPassword, ""),
		LogLevel:          strings.ToLower(pick("LOG_LEVEL", file.LogLevel, "info")),
	}

	// nonce 密钥缺省时复用会话密钥
	cfg.NonceSecret = pick("NONCE_SECRET", file.NonceSecret, cfg.SessionSecret)
	cfg.EssayDefaultOrder = service.NormalizeOrderMode(pick("ESSAY_DEFAULT_ORDER", file.EssayDefaultOrder, string(service.OrderDate)))

	cfg.NonceTTL = 12 * time.Hour
	if ttl, err := time.ParseDuration(pick("NONCE_TTL", file.NonceTTL, "")); err == nil && ttl > 0 {
		cfg.NonceTTL = ttl
	}

	if file.DebugMode != nil {
		cfg.DebugMode = *file.DebugMode
	}
	if raw := strings.TrimSpace(os.Getenv("DEBUG_MODE")); raw != "" {
		if enabled, err := strconv.ParseBool(raw); err == nil {
			cfg.DebugMode = enabled
		}
	}

	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	var file fileConfig
	if path == "" {
		return file, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return file, nil
}

func pick(envKey, fileValue, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	if v := strings.TrimSpace(fileValue); v != "" {
		return v
	}
	return fallback
}
