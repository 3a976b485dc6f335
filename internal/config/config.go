package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"readTimeout"`
		WriteTimeout time.Duration `yaml:"writeTimeout"`
		IdleTimeout  time.Duration `yaml:"idleTimeout"`
		UploadDir    string        `yaml:"uploadDir"`
		MaxUploadMB  int           `yaml:"maxUploadMB"`
		StaticDir    string        `yaml:"staticDir"`
		CORSOrigins  []string      `yaml:"corsOrigins"`
		RateLimit    struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // sqlite | mysql | postgres
		Path     string `yaml:"path"`   // sqlite only
		DSN      string `yaml:"dsn"`    // overrides host/port/... when set
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	LLM struct {
		Provider        string  `yaml:"provider"` // gemini | openai | ollama
		Model           string  `yaml:"model"`
		APIKey          string  `yaml:"apiKey"`
		BaseURL         string  `yaml:"baseURL"`
		Temperature     float32 `yaml:"temperature"`
		ToolTemperature float32 `yaml:"toolTemperature"`
		MaxTokens       int     `yaml:"maxTokens"`
	} `yaml:"llm"`

	Redis struct {
		URL       string        `yaml:"url"`
		Queue     string        `yaml:"queue"`
		StatusTTL time.Duration `yaml:"statusTTL"`
	} `yaml:"redis"`

	Storage struct {
		Backend  string `yaml:"backend"` // local | minio
		LocalDir string `yaml:"localDir"`
	} `yaml:"storage"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Auth struct {
		// APIKeys maps a user id to its key.
		APIKeys   map[string]string `yaml:"apiKeys"`
		JWTSecret string            `yaml:"jwtSecret"`
	} `yaml:"auth"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | console
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.Server.Port = 8000
	c.Server.ReadTimeout = 30 * time.Second
	c.Server.WriteTimeout = 5 * time.Minute
	c.Server.IdleTimeout = 60 * time.Second
	c.Server.UploadDir = "output"
	c.Server.MaxUploadMB = 20
	c.Server.RateLimit.RPS = 2
	c.Server.RateLimit.Burst = 10

	c.Database.Driver = "sqlite"
	c.Database.Path = "output/analysis.db"
	c.Database.SSLMode = "disable"

	c.LLM.Provider = "gemini"
	c.LLM.Model = "gemini-2.0-flash"
	c.LLM.Temperature = 0.7
	c.LLM.ToolTemperature = 0.3
	c.LLM.MaxTokens = 4096

	c.Redis.URL = "redis://localhost:6379/0"
	c.Redis.Queue = "default"
	c.Redis.StatusTTL = 24 * time.Hour

	c.Storage.Backend = "local"
	c.Storage.LocalDir = "output/uploads"

	c.Log.Level = "info"
	c.Log.Format = "json"
	return &c
}

// PathFromEnv returns CONFIG_PATH, or config.yaml.
func PathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "config.yaml"
}

// Load baca .env, file config.yaml, lalu override dari environment.
// A missing config file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "gemini":
			c.LLM.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		case "openai":
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if c.LLM.Provider == "ollama" && c.LLM.BaseURL == "" {
		c.LLM.BaseURL = os.Getenv("OLLAMA_HOST")
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks the settings that would otherwise fail late at wiring time.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	switch c.LLM.Provider {
	case "gemini", "openai", "ollama":
	default:
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}
	switch c.Storage.Backend {
	case "local", "minio":
	default:
		return fmt.Errorf("unsupported storage backend: %q", c.Storage.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.maxUploadMB must be positive")
	}
	if c.Redis.Queue == "" {
		return fmt.Errorf("redis.queue must not be empty")
	}
	return nil
}

// MaxUploadBytes returns the multipart body limit.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) * 1024 * 1024
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection URL.
func (c *Config) PostgresDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + c.Database.SSLMode,
	}
	return u.String()
}

// SQLitePath returns the sqlite database file, honouring DATABASE_DSN.
func (c *Config) SQLitePath() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return c.Database.Path
}
