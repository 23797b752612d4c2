package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Neo4jConfig 定义了 Neo4j 图数据库的连接配置。
type Neo4jConfig struct {
	Uri            string `yaml:"uri"`            // Neo4j 数据库URI (例如: "bolt://localhost:7687")
	Username       string `yaml:"username"`       // 用户名
	Password       string `yaml:"password"`       // 密码
	Database       string `yaml:"database"`       // 数据库名称，为空时使用服务端默认库
	MaxPoolSize    int    `yaml:"maxPoolSize"`    // 连接池上限
	ConnectTimeout int    `yaml:"connectTimeout"` // 建连超时 (秒)
}

// SQLConfig 定义了关系库的连接配置。
type SQLConfig struct {
	Driver          string `yaml:"driver"`          // "postgres"、"mysql" 或 "sqlite"
	DSN             string `yaml:"dsn"`             // 完整连接串，优先于下面的分项配置
	Address         string `yaml:"address"`         // MySQL 服务器地址 (仅在 DSN 为空时使用)
	Username        string `yaml:"username"`        // 用户名
	Password        string `yaml:"password"`        // 密码
	Database        string `yaml:"database"`        // 数据库名称
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // 连接最大生命周期 (秒)
}

// RedisConfig 定义了 Redis 的连接配置，用于记录已处理的文章链接。
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")，为空表示不启用
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
	Prefix   string `yaml:"prefix"`   // 键前缀
}

// KafkaConfig 定义了 Kafka 消息队列的连接配置。
type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`      // Kafka Broker 地址列表，为空表示不启用
	ArticleTopic string   `yaml:"articleTopic"` // 文章输入主题
	TripleTopic  string   `yaml:"tripleTopic"`  // 三元组事件输出主题
	GroupID      string   `yaml:"groupID"`      // 消费者组
}

// DatabaseConfigs 包含所有存储的配置。
type DatabaseConfigs struct {
	SQL   SQLConfig   `yaml:"sql"`   // 关系库配置
	Neo4j Neo4jConfig `yaml:"neo4j"` // Neo4j 配置
	Redis RedisConfig `yaml:"redis"` // Redis 配置
	Kafka KafkaConfig `yaml:"kafka"` // Kafka 配置
}

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// LLMConfig 定义了文本补全服务的配置。
type LLMConfig struct {
	Provider string `yaml:"provider"` // "ollama"、"openai"、"huggingface" 或 "gemini"
	Model    string `yaml:"model"`    // 模型名称
	APIKey   string `yaml:"apiKey"`   // API 密钥 (ollama 不需要)
	BaseURL  string `yaml:"baseURL"`  // 服务地址，为空时使用各提供商的默认地址
}

// ExtractionConfig 定义了三元组抽取流水线的参数。
type ExtractionConfig struct {
	MaxNewTokens      int     `yaml:"maxNewTokens"`      // 单次补全的最大生成长度
	Temperature       float64 `yaml:"temperature"`       // 采样温度，抽取任务应保持较低
	MaxEntityWords    int     `yaml:"maxEntityWords"`    // 主语/宾语允许的最大词数
	CompletionTimeout string  `yaml:"completionTimeout"` // 例如: "120s"
	GraphTimeout      string  `yaml:"graphTimeout"`      // 单个图事务的超时
	SQLTimeout        string  `yaml:"sqlTimeout"`        // 单条关系库语句的超时
	Retention         string  `yaml:"retention"`         // 文章保留时长，例如: "24h"
}

// FeedConfig 定义了一个 RSS/Atom 订阅源。
type FeedConfig struct {
	Name string `yaml:"name"` // 写入 Article.Source 的来源名称
	URL  string `yaml:"url"`  // 订阅地址
}

// SourcesConfig 定义了文章的输入来源。
type SourcesConfig struct {
	Feeds        []FeedConfig `yaml:"feeds"`        // RSS/Atom 订阅源
	PollInterval string       `yaml:"pollInterval"` // 订阅源轮询间隔，例如: "15m"
	File         string       `yaml:"file"`         // JSON Lines 文件路径，"-" 表示标准输入
	QueueSize    int          `yaml:"queueSize"`    // 待处理文章队列长度
}

// ServerConfig 定义了管理接口的配置。
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"` // 例如: ":8080"
}

// RateLimiterConfig 定义了令牌桶限流器的配置。
type RateLimiterConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`        // 应用程序信息
	Logger     LoggerConfig     `yaml:"logger"`     // 日志记录器配置
	LLM        LLMConfig        `yaml:"llm"`        // 文本补全服务配置
	Extraction ExtractionConfig `yaml:"extraction"` // 抽取流水线配置
	Databases  DatabaseConfigs  `yaml:"databases"`  // 存储配置
	Sources    SourcesConfig    `yaml:"sources"`    // 文章来源配置
	Server     ServerConfig     `yaml:"server"`     // 管理接口配置
	Middleware MiddlewareConfig `yaml:"middleware"` // 中间件配置
}

// LoadConfig 从指定路径加载 YAML 配置，叠加环境变量并填充默认值。
// 文件不存在时不报错，以便只通过环境变量部署。
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	yamlFile, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
			return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}

	cfg.ApplyEnv(os.Getenv)
	cfg.applyDefaults()
	return &cfg, nil
}

// ApplyEnv 用环境变量覆盖配置中的连接信息和凭据。
func (c *AppConfig) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Databases.Neo4j.Uri, "NEO4J_URI")
	set(&c.Databases.Neo4j.Username, "NEO4J_USER")
	set(&c.Databases.Neo4j.Password, "NEO4J_PASS")
	set(&c.Databases.Neo4j.Database, "NEO4J_DATABASE")
	set(&c.Databases.SQL.DSN, "DB_CONNECTION_STRING")
	set(&c.Databases.SQL.Driver, "DB_DRIVER")
	set(&c.Databases.Redis.Address, "REDIS_ADDR")
	set(&c.Databases.Redis.Password, "REDIS_PASSWORD")
	set(&c.LLM.Provider, "LLM_PROVIDER")
	set(&c.LLM.Model, "LLM_MODEL")
	set(&c.LLM.APIKey, "LLM_API_KEY")
	set(&c.LLM.BaseURL, "LLM_BASE_URL")
	set(&c.Logger.Level, "LOG_LEVEL")
	if v := strings.TrimSpace(getenv("KAFKA_BROKERS")); v != "" {
		c.Databases.Kafka.Brokers = splitList(v)
	}
}

func (c *AppConfig) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "news_pipeline"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Databases.SQL.Driver == "" {
		c.Databases.SQL.Driver = "postgres"
	}
	if c.Databases.Neo4j.Username == "" {
		c.Databases.Neo4j.Username = "neo4j"
	}
	if c.Databases.Neo4j.MaxPoolSize <= 0 {
		c.Databases.Neo4j.MaxPoolSize = 10
	}
	if c.Databases.Neo4j.ConnectTimeout <= 0 {
		c.Databases.Neo4j.ConnectTimeout = 10
	}
	if c.Databases.Redis.Prefix == "" {
		c.Databases.Redis.Prefix = "newsgraph:seen:"
	}
	if c.Databases.Kafka.ArticleTopic == "" {
		c.Databases.Kafka.ArticleTopic = "news.articles"
	}
	if c.Databases.Kafka.TripleTopic == "" {
		c.Databases.Kafka.TripleTopic = "news.triples"
	}
	if c.Databases.Kafka.GroupID == "" {
		c.Databases.Kafka.GroupID = "news-pipeline"
	}
	if c.Extraction.MaxNewTokens <= 0 {
		c.Extraction.MaxNewTokens = 256
	}
	if c.Extraction.Temperature <= 0 {
		c.Extraction.Temperature = 0.2
	}
	if c.Extraction.MaxEntityWords <= 0 {
		c.Extraction.MaxEntityWords = 4
	}
	if c.Extraction.CompletionTimeout == "" {
		c.Extraction.CompletionTimeout = "120s"
	}
	if c.Extraction.GraphTimeout == "" {
		c.Extraction.GraphTimeout = "15s"
	}
	if c.Extraction.SQLTimeout == "" {
		c.Extraction.SQLTimeout = "10s"
	}
	if c.Extraction.Retention == "" {
		c.Extraction.Retention = "24h"
	}
	if c.Sources.PollInterval == "" {
		c.Sources.PollInterval = "15m"
	}
	if c.Sources.QueueSize <= 0 {
		c.Sources.QueueSize = 64
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Middleware.CircuitBreaker.FailureThreshold == 0 {
		c.Middleware.CircuitBreaker.FailureThreshold = 5
	}
	if c.Middleware.CircuitBreaker.SuccessThreshold == 0 {
		c.Middleware.CircuitBreaker.SuccessThreshold = 1
	}
	if c.Middleware.CircuitBreaker.Timeout == "" {
		c.Middleware.CircuitBreaker.Timeout = "60s"
	}
	if c.Middleware.RateLimiter.Rate <= 0 {
		c.Middleware.RateLimiter.Rate = 5
	}
	if c.Middleware.RateLimiter.Capacity <= 0 {
		c.Middleware.RateLimiter.Capacity = 20
	}
}

// Validate 检查启动所必需的配置项。存储和补全服务缺一不可。
func (c *AppConfig) Validate() error {
	var problems []string
	if c.Databases.Neo4j.Uri == "" {
		problems = append(problems, "缺少 Neo4j URI (NEO4J_URI)")
	}
	if c.Databases.SQL.DSN == "" && c.Databases.SQL.Address == "" {
		problems = append(problems, "缺少关系库连接串 (DB_CONNECTION_STRING)")
	}
	switch c.Databases.SQL.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("不支持的关系库驱动: %q", c.Databases.SQL.Driver))
	}
	switch c.LLM.Provider {
	case "ollama", "openai", "huggingface", "gemini":
	default:
		problems = append(problems, fmt.Sprintf("不支持的 LLM 提供商: %q", c.LLM.Provider))
	}
	for _, d := range []string{
		c.Extraction.CompletionTimeout, c.Extraction.GraphTimeout, c.Extraction.SQLTimeout,
		c.Extraction.Retention, c.Sources.PollInterval, c.Middleware.CircuitBreaker.Timeout,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			problems = append(problems, fmt.Sprintf("无效的时长 %q", d))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("配置无效: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Duration 解析时长配置，解析失败时返回 fallback。
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
