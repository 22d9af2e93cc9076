package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"deja-vocab/log"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type App struct {
	LogLevel             string   `toml:"log_level"`
	Proxy                string   `toml:"proxy"`
	ParsedProxy          *url.URL `toml:"-"`
	ResaveParallelNum    int      `toml:"resave_parallel_num"`
	ContextSubtitleLimit int      `toml:"context_subtitle_limit"`
}

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type Storage struct {
	Dsn string `toml:"dsn"`
}

type Redis struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	Db         int    `toml:"db"`
	TtlMinutes int    `toml:"ttl_minutes"`
}

type Youtube struct {
	BaseUrl string `toml:"base_url"`
}

type Llm struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// MergeProfile holds the thresholds of the subtitle merge hard gate.
type MergeProfile struct {
	MaxGap      float64 `toml:"max_gap"`
	MaxDuration float64 `toml:"max_duration"`
	MaxChars    int     `toml:"max_chars"`
}

// Merge 每个入口使用各自的合并阈值
type Merge struct {
	Default MergeProfile `toml:"default"`
	Direct  MergeProfile `toml:"direct"`
	Auto    MergeProfile `toml:"auto"`
}

type Config struct {
	App     App     `toml:"app"`
	Server  Server  `toml:"server"`
	Storage Storage `toml:"storage"`
	Redis   Redis   `toml:"redis"`
	Youtube Youtube `toml:"youtube"`
	Llm     Llm     `toml:"llm"`
	Merge   Merge   `toml:"merge"`
}

var Conf = DefaultConfig()

var configPath = "./config/config.toml"

func DefaultConfig() Config {
	return Config{
		App: App{
			LogLevel:             "info",
			ResaveParallelNum:    4,
			ContextSubtitleLimit: 200,
		},
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Storage: Storage{
			Dsn: "./data/deja-vocab.db",
		},
		Redis: Redis{
			TtlMinutes: 30,
		},
		Youtube: Youtube{
			BaseUrl: "https://www.youtube.com",
		},
		Llm: Llm{
			Model: "gpt-4o-mini",
		},
		Merge: Merge{
			Default: MergeProfile{MaxGap: 1.0, MaxDuration: 10.0, MaxChars: 200},
			Direct:  MergeProfile{MaxGap: 0.8, MaxDuration: 8.0, MaxChars: 160},
			Auto:    MergeProfile{MaxGap: 2.0, MaxDuration: 10.0, MaxChars: 300},
		},
	}
}

func validateMergeProfile(name string, p MergeProfile) error {
	if p.MaxGap < 0 {
		return fmt.Errorf("merge.%s.max_gap must be >= 0", name)
	}
	if p.MaxDuration <= 0 {
		return fmt.Errorf("merge.%s.max_duration must be > 0", name)
	}
	if p.MaxChars <= 0 {
		return fmt.Errorf("merge.%s.max_chars must be > 0", name)
	}
	return nil
}

func validateConfig(c *Config) error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.App.ResaveParallelNum <= 0 {
		return errors.New("app.resave_parallel_num must be > 0")
	}
	if c.Storage.Dsn == "" {
		return errors.New("storage.dsn is required")
	}
	if err := validateMergeProfile("default", c.Merge.Default); err != nil {
		return err
	}
	if err := validateMergeProfile("direct", c.Merge.Direct); err != nil {
		return err
	}
	if err := validateMergeProfile("auto", c.Merge.Auto); err != nil {
		return err
	}
	if c.App.Proxy != "" {
		parsed, err := url.Parse(c.App.Proxy)
		if err != nil {
			return fmt.Errorf("app.proxy invalid: %w", err)
		}
		c.App.ParsedProxy = parsed
	}
	return nil
}

// applyEnv 环境变量优先于配置文件，主要用于密钥
func applyEnv(c *Config) {
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.Llm.ApiKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.Llm.BaseUrl = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("APP_PROXY"); v != "" {
		c.App.Proxy = v
	}
}

// LoadConfig reads ./config/config.toml when present, falls back to defaults otherwise,
// then applies .env and environment overrides.
func LoadConfig() error {
	return LoadConfigFrom(configPath)
}

func LoadConfigFrom(path string) error {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.GetLogger().Info("未找到配置文件，使用默认配置", zap.String("path", path))
	} else {
		log.GetLogger().Info("已找到配置文件，从配置文件中加载配置", zap.String("path", filepath.Clean(path)))
		if _, err = toml.DecodeFile(path, &cfg); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	Conf = cfg
	return nil
}
