package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Addr string `yaml:"-"` // 不从配置文件读取，而是在加载后计算
	} `yaml:"server"`
	OpenRouter struct {
		APIKey       string `yaml:"api_key"`
		Model        string `yaml:"model"`
		BaseURL      string `yaml:"base_url"`
		MaxTokens    int    `yaml:"max_tokens"`
		MaxTextChars int    `yaml:"max_text_chars"` // 发送给LLM的文本最大字符数，超出部分截断
		Referer      string `yaml:"referer"`        // OpenRouter要求的HTTP-Referer头
		Title        string `yaml:"title"`          // X-Title头，标识调用方
		RetryCount   int    `yaml:"retry_count"`
		RetryDelay   int    `yaml:"retry_delay"` // 重试间隔（秒）
		TimeoutSec   int    `yaml:"timeout_sec"` // 请求超时时间，单位：秒
	} `yaml:"openrouter"`
	Log struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Output   string `yaml:"output"`
		FilePath string `yaml:"file_path"`
	} `yaml:"log"`

	DB struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Username        string `yaml:"username"`
		Password        string `yaml:"password"`
		Database        string `yaml:"database"`
		Charset         string `yaml:"charset"`
		ParseTime       bool   `yaml:"parse_time"`
		DSN             string `yaml:"-"`                 // 不从配置文件读取，而是在加载后计算
		MaxOpenConns    int    `yaml:"max_open_conns"`    // 最大打开连接数
		MaxIdleConns    int    `yaml:"max_idle_conns"`    // 最大空闲连接数
		ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // 连接最大生命周期（分钟）
		MigrationsPath  string `yaml:"migrations_path"`   // 迁移文件目录
	} `yaml:"database"`
	Upload struct {
		Dir         string   `yaml:"dir"`          // 上传文件保存目录
		MaxSizeMB   int      `yaml:"max_size_mb"`  // 上传文件大小上限（MB）
		AllowedExts []string `yaml:"allowed_exts"` // 允许的文件扩展名
	} `yaml:"upload"`
	Highlight struct {
		MinKeywordLength int  `yaml:"min_keyword_length"` // 参与高亮的关键词最小长度，长度不超过该值的关键词被过滤
		WholeWord        bool `yaml:"whole_word"`         // 是否要求整词匹配
	} `yaml:"highlight"`
	Web struct {
		TemplatesDir string `yaml:"templates_dir"` // HTML模板目录
	} `yaml:"web"`
	LLM struct {
		MaxConcurrency int `yaml:"max_concurrency"` // LLM并发请求数
	} `yaml:"llm"`
	Scheduler struct {
		CheckIntervalSec int `yaml:"check_interval_sec"` // 调度器检查间隔（秒）
		CleanupHour      int `yaml:"cleanup_hour"`       // 每天清理任务的小时（0-23）
		CleanupMin       int `yaml:"cleanup_min"`        // 每天清理任务的分钟（0-59）
		RetentionDays    int `yaml:"retention_days"`     // 分析记录和上传文件的保留天数
	} `yaml:"scheduler"`
	Debug struct {
		Enabled        bool `yaml:"enabled"`          // 是否启用debug模式
		CleanupFreqSec int  `yaml:"cleanup_freq_sec"` // debug模式下清理任务频率，单位：秒
	} `yaml:"debug"`
}

func Load() *Config {
	// 首先尝试加载.env文件中的环境变量
	_ = godotenv.Load() // 忽略错误，如果.env文件不存在，继续使用系统环境变量

	var cfg Config

	// 尝试从config.yaml文件加载配置
	if data, err := os.ReadFile("config.yaml"); err == nil {
		err = yaml.Unmarshal(data, &cfg)
		if err != nil {
			log.Printf("Error loading config.yaml: %v, falling back to environment variables", err)
			return loadFromEnv()
		}
		log.Println("Loading configuration from config.yaml")

		applyEnvOverrides(&cfg)
		applyDefaults(&cfg)

		// 计算 Server.Addr 字段
		cfg.Server.Addr = fmt.Sprintf(":%d", cfg.Server.Port)

		// 计算 DB.DSN 字段
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = buildDSN(&cfg)
		}

		return &cfg
	}

	// 如果config.yaml不存在，则完全从环境变量加载配置
	return loadFromEnv()
}

// applyEnvOverrides 从环境变量中加载敏感信息，覆盖配置文件中的值
func applyEnvOverrides(cfg *Config) {
	// 数据库用户名和密码
	if envUsername := os.Getenv("DATABASE_USERNAME"); envUsername != "" {
		cfg.DB.Username = envUsername
	}
	if envPassword := os.Getenv("DATABASE_PASSWORD"); envPassword != "" {
		cfg.DB.Password = envPassword
	}

	// OpenRouter API密钥
	if envAPIKey := os.Getenv("OPENROUTER_API_KEY"); envAPIKey != "" {
		cfg.OpenRouter.APIKey = envAPIKey
	}
}

// applyDefaults 为缺失的配置项填充默认值
func applyDefaults(cfg *Config) {
	if cfg.DB.Charset == "" {
		cfg.DB.Charset = "utf8mb4"
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "file://migrations"
	}
	if cfg.OpenRouter.BaseURL == "" {
		cfg.OpenRouter.BaseURL = "https://openrouter.ai/api"
	}
	if cfg.OpenRouter.Model == "" {
		cfg.OpenRouter.Model = "mistralai/mistral-7b-instruct:free"
	}
	if cfg.OpenRouter.MaxTokens <= 0 {
		cfg.OpenRouter.MaxTokens = 2000
	}
	if cfg.OpenRouter.MaxTextChars <= 0 {
		cfg.OpenRouter.MaxTextChars = 12000
	}
	if cfg.OpenRouter.TimeoutSec <= 0 {
		cfg.OpenRouter.TimeoutSec = 60
	}
	if cfg.OpenRouter.RetryCount <= 0 {
		cfg.OpenRouter.RetryCount = 3
	}
	if cfg.OpenRouter.RetryDelay <= 0 {
		cfg.OpenRouter.RetryDelay = 2
	}
	if cfg.Upload.Dir == "" {
		cfg.Upload.Dir = "/tmp/uploads"
	}
	if cfg.Upload.MaxSizeMB <= 0 {
		cfg.Upload.MaxSizeMB = 5
	}
	if len(cfg.Upload.AllowedExts) == 0 {
		cfg.Upload.AllowedExts = []string{".pdf", ".docx", ".txt"}
	}
	if cfg.LLM.MaxConcurrency <= 0 {
		cfg.LLM.MaxConcurrency = 2
	}
	if cfg.Highlight.MinKeywordLength <= 0 {
		cfg.Highlight.MinKeywordLength = 3
	}
	if cfg.Web.TemplatesDir == "" {
		cfg.Web.TemplatesDir = "web/templates"
	}
	if cfg.Scheduler.RetentionDays <= 0 {
		cfg.Scheduler.RetentionDays = 30
	}
}

// buildDSN 根据数据库配置构建MySQL DSN
func buildDSN(cfg *Config) string {
	parseTime := ""
	if cfg.DB.ParseTime {
		parseTime = "&parseTime=true"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s%s",
		cfg.DB.Username,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.Database,
		cfg.DB.Charset,
		parseTime)
}

func loadFromEnv() *Config {
	// 当config.yaml加载失败时，创建一个最小配置
	var cfg Config

	// 设置服务器地址
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	cfg.Server.Addr = fmt.Sprintf(":%d", cfg.Server.Port)

	// 只从环境变量中加载敏感信息
	// 数据库配置
	if username := os.Getenv("DATABASE_USERNAME"); username != "" {
		cfg.DB.Username = username
	}
	if password := os.Getenv("DATABASE_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		cfg.DB.DSN = dsn
	} else if cfg.DB.Host != "" {
		// 只有在没有直接提供DSN且有主机信息时才构建DSN
		cfg.DB.DSN = buildDSN(&cfg)
	}

	// OpenRouter API密钥
	if apiKey := os.Getenv("OPENROUTER_API_KEY"); apiKey != "" {
		cfg.OpenRouter.APIKey = apiKey
	}

	applyDefaults(&cfg)

	log.Println("配置从环境变量加载，部分配置可能缺失")
	return &cfg
}
