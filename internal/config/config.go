package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	Chat   ChatConfig
	Log    LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Chat: chat, Log: logCfg}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	origins := splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"))

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// ChatConfig 描述对话相关配置。
type ChatConfig struct {
	TypingDelayMin    time.Duration
	TypingDelayMax    time.Duration
	DefaultTopicCount int
	CorpusFile        string
	// RandomSeed 非空时话题抽样可复现。
	RandomSeed *uint64
}

func loadChatConfig() (ChatConfig, error) {
	minMS, err := parseIntEnv("CHAT_TYPING_DELAY_MIN_MS", 1000)
	if err != nil {
		return ChatConfig{}, err
	}
	maxMS, err := parseIntEnv("CHAT_TYPING_DELAY_MAX_MS", 2000)
	if err != nil {
		return ChatConfig{}, err
	}
	if minMS < 0 || maxMS < 0 {
		return ChatConfig{}, fmt.Errorf("typing delay must not be negative: min=%d max=%d", minMS, maxMS)
	}
	if minMS > maxMS {
		return ChatConfig{}, fmt.Errorf("CHAT_TYPING_DELAY_MIN_MS (%d) exceeds CHAT_TYPING_DELAY_MAX_MS (%d)", minMS, maxMS)
	}

	topicCount, err := parseIntEnv("CHAT_DEFAULT_TOPIC_COUNT", 8)
	if err != nil {
		return ChatConfig{}, err
	}
	if topicCount < 1 {
		return ChatConfig{}, fmt.Errorf("invalid CHAT_DEFAULT_TOPIC_COUNT value %d: must be at least 1", topicCount)
	}

	seed, err := parseOptionalUintEnv("RANDOM_SEED")
	if err != nil {
		return ChatConfig{}, err
	}

	return ChatConfig{
		TypingDelayMin:    time.Duration(minMS) * time.Millisecond,
		TypingDelayMax:    time.Duration(maxMS) * time.Millisecond,
		DefaultTopicCount: topicCount,
		CorpusFile:        strings.TrimSpace(os.Getenv("CORPUS_FILE")),
		RandomSeed:        seed,
	}, nil
}

// LogConfig 描述日志配置。
type LogConfig struct {
	Level       string
	Development bool
}

func loadLogConfig() (LogConfig, error) {
	dev, err := parseBoolEnv("LOG_DEVELOPMENT", false)
	if err != nil {
		return LogConfig{}, err
	}

	level := strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info"))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL value %q", level)
	}

	return LogConfig{Level: level, Development: dev}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	return *val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalUintEnv(key string) (*uint64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
