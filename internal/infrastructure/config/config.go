package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// 环境变量名
const (
	EnvHTTPPort          = "ENCUESTA_HTTP_PORT"
	EnvDBPath            = "ENCUESTA_DB_PATH"
	EnvCORSOrigins       = "ENCUESTA_CORS_ORIGINS"
	EnvLLMProvider       = "ENCUESTA_LLM_PROVIDER"
	EnvLLMBaseURL        = "ENCUESTA_LLM_BASE_URL"
	EnvLLMAPIKey         = "ENCUESTA_LLM_API_KEY"
	EnvLLMModel          = "ENCUESTA_LLM_MODEL"
	EnvLLMTimeoutMs      = "ENCUESTA_LLM_TIMEOUT_MS"
	EnvLLMMaxRetries     = "ENCUESTA_LLM_MAX_RETRIES"
	EnvPromptTokenBudget = "ENCUESTA_PROMPT_TOKEN_BUDGET"
	EnvWebhookURL        = "ENCUESTA_WEBHOOK_URL"
	EnvWebhookTimeoutMs  = "ENCUESTA_WEBHOOK_TIMEOUT_MS"
	EnvCatalogWatch      = "ENCUESTA_CATALOG_WATCH"
)

// 各提供商的历史环境变量（原 Node 服务使用）
const (
	EnvDeepSeekAPIKey  = "DEEPSEEK_API_KEY"
	EnvDeepSeekBaseURL = "DEEPSEEK_BASE_URL"
	EnvGoogleAPIKey    = "GOOGLE_GENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

// LLM 提供商标识
const (
	ProviderDeepSeek  = "deepseek"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// DefaultWebhookURL 线索推送的默认 n8n Webhook
const DefaultWebhookURL = "https://n8n.garrulero.xyz/webhook/encuesta-ia"

// Config 应用配置
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	WebSocket WebSocketConfig
	LLM       LLMConfig
	Webhook   WebhookConfig
	Catalog   CatalogConfig
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort string // 固定端口，用于单例锁
	// CORSOrigins 允许的跨域来源，"*" 表示全部
	CORSOrigins []string
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Path 为空时使用数据目录下的 encuesta.db
	Path string
}

// WebSocketConfig WebSocket 配置
type WebSocketConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
}

// TaskConfig 单个 LLM 任务的参数
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // 大于 0 时覆盖全局超时
}

// LLMConfig LLM 配置
type LLMConfig struct {
	Provider   string
	BaseURL    string
	APIKey     string
	Model      string
	TimeoutMs  int
	MaxRetries int
	// PromptTokenBudget 对话历史允许占用的最大 token 数
	PromptTokenBudget int
	Question          TaskConfig
	Report            TaskConfig
}

// WebhookConfig 线索推送配置
type WebhookConfig struct {
	// URL 为空表示禁用推送
	URL        string
	TimeoutMs  int
	MaxRetries int
}

// CatalogConfig 问卷目录配置
type CatalogConfig struct {
	// Path 覆盖文件路径，为空时使用数据目录下的 catalog.yaml
	Path string
	// Watch 是否监听覆盖文件变化并热加载
	Watch bool
}

// NewConfig 创建配置（默认值 + 环境变量覆盖）
func NewConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			HTTPPort:    ":3001",
			CORSOrigins: []string{"*"},
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		LLM: LLMConfig{
			Provider:          ProviderDeepSeek,
			TimeoutMs:         60000,
			MaxRetries:        1,
			PromptTokenBudget: 3000,
			Question:          TaskConfig{Temperature: 0.7, MaxTokens: 800, TimeoutMs: 30000},
			Report:            TaskConfig{Temperature: 0.7, MaxTokens: 2000, TimeoutMs: 90000},
		},
		Webhook: WebhookConfig{
			URL:        DefaultWebhookURL,
			TimeoutMs:  10000,
			MaxRetries: 2,
		},
		Catalog: CatalogConfig{
			Watch: true,
		},
	}

	cfg.applyEnv()
	cfg.applyProviderDefaults()
	return cfg
}

// applyEnv 读取环境变量覆盖默认值
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvHTTPPort); v != "" {
		if !strings.HasPrefix(v, ":") && !strings.Contains(v, ":") {
			v = ":" + v
		}
		c.Server.HTTPPort = v
	}
	if v := os.Getenv(EnvCORSOrigins); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLLMProvider); v != "" {
		c.LLM.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(EnvLLMBaseURL); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv(EnvLLMAPIKey); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(EnvLLMModel); v != "" {
		c.LLM.Model = v
	}
	if n, ok := envInt(EnvLLMTimeoutMs); ok && n > 0 {
		c.LLM.TimeoutMs = n
	}
	if n, ok := envInt(EnvLLMMaxRetries); ok && n >= 0 {
		c.LLM.MaxRetries = n
	}
	if n, ok := envInt(EnvPromptTokenBudget); ok && n > 0 {
		c.LLM.PromptTokenBudget = n
	}
	// 空字符串也是有效值（禁用推送），所以用 LookupEnv
	if v, ok := os.LookupEnv(EnvWebhookURL); ok {
		c.Webhook.URL = strings.TrimSpace(v)
	}
	if n, ok := envInt(EnvWebhookTimeoutMs); ok && n > 0 {
		c.Webhook.TimeoutMs = n
	}
	if v := os.Getenv(EnvCatalogWatch); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Catalog.Watch = b
		}
	}
}

// applyProviderDefaults 按提供商补全 base URL、模型和 API Key
func (c *Config) applyProviderDefaults() {
	switch c.LLM.Provider {
	case ProviderDeepSeek:
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = getEnvWithDefault(EnvDeepSeekBaseURL, "https://api.deepseek.com/v1")
		}
		if c.LLM.Model == "" {
			c.LLM.Model = "deepseek-chat"
		}
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = os.Getenv(EnvDeepSeekAPIKey)
		}
	case ProviderOpenAI:
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = "https://api.openai.com/v1"
		}
		if c.LLM.Model == "" {
			c.LLM.Model = "gpt-4o-mini"
		}
	case ProviderGemini:
		if c.LLM.Model == "" {
			c.LLM.Model = "gemini-2.5-flash"
		}
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = os.Getenv(EnvGoogleAPIKey)
		}
	case ProviderAnthropic:
		if c.LLM.Model == "" {
			c.LLM.Model = "claude-sonnet-4-20250514"
		}
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = os.Getenv(EnvAnthropicAPIKey)
		}
	}
}

// DBPath 返回数据库文件路径
func (c *Config) DBPath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(GetDataDir(), "encuesta.db")
}

// CatalogPath 返回问卷目录覆盖文件路径
func (c *Config) CatalogPath() string {
	if c.Catalog.Path != "" {
		return c.Catalog.Path
	}
	return filepath.Join(GetDataDir(), "catalog.yaml")
}

// NewDatabaseConfig 创建数据库配置
func NewDatabaseConfig(cfg *Config) *DatabaseConfig {
	return &cfg.Database
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewLLMConfig 创建 LLM 配置
func NewLLMConfig(cfg *Config) *LLMConfig {
	return &cfg.LLM
}

// NewWebhookConfig 创建 Webhook 配置
func NewWebhookConfig(cfg *Config) *WebhookConfig {
	return &cfg.Webhook
}

// NewWebSocketConfig 创建 WebSocket 配置
func NewWebSocketConfig(cfg *Config) *WebSocketConfig {
	return &cfg.WebSocket
}

func getEnvWithDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
