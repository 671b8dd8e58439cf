package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "Asia/Seoul"
	defaultConfigPath = "config/config.yaml"

	configPathEnv = "EDU_NEWS_CONFIG"
	mongoURIEnv   = "MONGO_URI"
	xaiKeyEnv     = "XAI_API_KEY"
	openAIKeyEnv  = "OPENAI_API_KEY"
	redisAddrEnv  = "REDIS_ADDR"
	natsURLEnv    = "NATS_URL"
	logLevelEnv   = "LOG_LEVEL"
)

type Config struct {
	Timezone  string          `yaml:"timezone"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Store     StoreConfig     `yaml:"store"`
	Crawler   CrawlerConfig   `yaml:"crawler"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	LLM       LLMConfig       `yaml:"llm"`
	Redis     RedisConfig     `yaml:"redis"`
	NATS      NATSConfig      `yaml:"nats"`

	location *time.Location
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type StoreConfig struct {
	Driver string       `yaml:"driver"` // mongo | badger
	Mongo  MongoConfig  `yaml:"mongo"`
	Badger BadgerConfig `yaml:"badger"`
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Host       string `yaml:"host"`
	DBName     string `yaml:"dbname"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	AuthSource string `yaml:"authSource"`
}

type BadgerConfig struct {
	Path string `yaml:"path"` // empty = in-memory
}

type CrawlerConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	UserAgent   string        `yaml:"userAgent"`
}

type SchedulerConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Anchors    []int         `yaml:"anchors"` // local hours
	MaxRetries int           `yaml:"maxRetries"`
	RetryDelay time.Duration `yaml:"retryDelay"`
}

type LLMConfig struct {
	Primary     ProviderConfig `yaml:"primary"`
	Fallback    ProviderConfig `yaml:"fallback"`
	Temperature float64        `yaml:"temperature"`
	MaxTokens   int            `yaml:"maxTokens"`
	Timeout     time.Duration  `yaml:"timeout"`
}

// ProviderConfig is an OpenAI-compatible chat completions endpoint.
// Prices are USD per million tokens and only feed the cost log line.
type ProviderConfig struct {
	Name        string  `yaml:"name"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"apiKey"`
	InputPrice  float64 `yaml:"inputPrice"`
	OutputPrice float64 `yaml:"outputPrice"`
}

func (p ProviderConfig) Enabled() bool {
	return p.APIKey != "" && p.BaseURL != ""
}

type RedisConfig struct {
	Addr     string `yaml:"addr"` // empty disables the selection queue
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type NATSConfig struct {
	URL     string `yaml:"url"` // empty disables events
	Subject string `yaml:"subject"`
}

// Location is the bound timezone, valid after Load.
func (c *Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.FixedZone("KST", 9*3600)
	}
	return loc
}

// Load reads the config file over the defaults and applies environment
// overrides. The file is path when set, else $EDU_NEWS_CONFIG, else
// config/config.yaml. Only the last may be missing.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path == "" {
		path, explicit = defaultConfigPath, false
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.bindTimezone(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(mongoURIEnv); v != "" {
		c.Store.Mongo.URI = v
	}
	if v := os.Getenv(xaiKeyEnv); v != "" {
		c.LLM.Primary.APIKey = v
	}
	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.LLM.Fallback.APIKey = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv(natsURLEnv); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) bindTimezone() error {
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	c.location = loc
	return nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "mongo", "badger":
	default:
		return fmt.Errorf("store.driver must be mongo or badger, got %q", c.Store.Driver)
	}
	if c.Crawler.Concurrency <= 0 {
		c.Crawler.Concurrency = 1
	}
	for _, h := range c.Scheduler.Anchors {
		if h < 0 || h > 23 {
			return fmt.Errorf("scheduler anchor %d out of range", h)
		}
	}
	return nil
}

func Default() *Config {
	return &Config{
		Timezone: defaultTimezone,
		Log:      LogConfig{Level: "info"},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Store: StoreConfig{
			Driver: "mongo",
			Mongo: MongoConfig{
				Host:       "localhost:27017",
				DBName:     "edu_news",
				AuthSource: "admin",
			},
			Badger: BadgerConfig{Path: "data/badger"},
		},
		Crawler: CrawlerConfig{
			Timeout:     10 * time.Second,
			Concurrency: 4,
			UserAgent:   "edu-news-crawler/1.0",
		},
		Scheduler: SchedulerConfig{
			Enabled:    true,
			Anchors:    []int{0, 3, 6, 9, 12, 15, 18, 21},
			MaxRetries: 4,
			RetryDelay: 15 * time.Second,
		},
		LLM: LLMConfig{
			Primary: ProviderConfig{
				Name:        "grok",
				BaseURL:     "https://api.x.ai/v1",
				Model:       "grok-beta",
				InputPrice:  5,
				OutputPrice: 15,
			},
			Fallback: ProviderConfig{
				Name:        "openai",
				BaseURL:     "https://api.openai.com/v1",
				Model:       "gpt-4-turbo-preview",
				InputPrice:  10,
				OutputPrice: 30,
			},
			Temperature: 0.8,
			MaxTokens:   2000,
			Timeout:     60 * time.Second,
		},
		Redis: RedisConfig{Key: "queue:feynman"},
		NATS:  NATSConfig{Subject: "news.crawl.completed"},
	}
}
