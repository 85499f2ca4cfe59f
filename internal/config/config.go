package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Env            string
	AppSecret      string
	BackendURL     string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	Port           string
	SiteName       string
	SiteUrl        string
}

// Load 加载配置
func Load() *Config {
	// 会话标记与登录凭据统一 24 小时有效
	sessionHours, _ := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "24"))
	timeoutSeconds, _ := strconv.Atoi(getEnv("BACKEND_TIMEOUT_SECONDS", "15"))

	appSecret := getEnv("APP_SECRET", "your-secret-key-change-in-production")

	if getEnv("APP_ENV", "development") == "production" && appSecret == "your-secret-key-change-in-production" {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return &Config{
		Env:            getEnv("APP_ENV", "development"),
		AppSecret:      appSecret,
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8000/api"),
		SessionTTL:     time.Duration(sessionHours) * time.Hour,
		RequestTimeout: time.Duration(timeoutSeconds) * time.Second,
		Port:           getEnv("PORT", "5005"),
		SiteName:       getEnv("SITE_NAME", "CineBook"),
		SiteUrl:        getEnv("SITE_URL", "http://localhost:5005"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
