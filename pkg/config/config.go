package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. NEWSSIGNAL_BACKEND.
const EnvPrefix = "NEWSSIGNAL"

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"oneof=development staging production test"`

	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"500ms"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`

	Metrics struct {
		Path string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	Model struct {
		Vectorizer  string        `yaml:"vectorizer" default:"models/vectorizer.json" validate:"required"`
		Classifier  string        `yaml:"classifier" default:"models/classifier.json" validate:"required"`
		UpClass     *int          `yaml:"up_class" default:"1"`
		LoadTimeout time.Duration `yaml:"load_timeout" default:"30s"`
		HTTPRetries int           `yaml:"http_retries" default:"2" validate:"gte=0,lte=10"`
	} `yaml:"model"`

	Text struct {
		StopwordsPath string `yaml:"stopwords_path"`
		Stemmer       string `yaml:"stemmer" default:"nltk" validate:"oneof=nltk original porter2"`
	} `yaml:"text"`

	Backend struct {
		Type string `yaml:"type" default:"none" validate:"oneof=kafka clickhouse sqlite none"`
	} `yaml:"backend"`

	Pipeline struct {
		MaxRPS      int           `yaml:"max_rps" default:"20" validate:"gte=1"`
		BufferSize  int           `yaml:"buffer_size" default:"1000" validate:"gte=1"`
		DedupWindow time.Duration `yaml:"dedup_window" default:"24h"`
	} `yaml:"pipeline"`

	Kafka struct {
		Brokers          []string      `yaml:"brokers"`
		PredictionsTopic string        `yaml:"predictions_topic" default:"newssignal.predictions"`
		HeadlinesTopic   string        `yaml:"headlines_topic" default:"newssignal.headlines"`
		ConsumeHeadlines bool          `yaml:"consume_headlines"`
		RequiredAcks     int           `yaml:"required_acks" default:"-1"`
		Compression      string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		MaxAttempts      int           `yaml:"max_attempts" default:"3"`
		BatchSize        int           `yaml:"batch_size" default:"100"`
		BatchTimeout     time.Duration `yaml:"batch_timeout" default:"200ms"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		Consumer         struct {
			GroupID     string        `yaml:"group_id" default:"newssignal"`
			StartOffset string        `yaml:"start_offset" default:"earliest" validate:"oneof=earliest latest"`
			Workers     int           `yaml:"workers" default:"4" validate:"gte=1"`
			BufferSize  int           `yaml:"buffer_size" default:"64"`
			RetryMax    int           `yaml:"retry_max" default:"3"`
			BackoffMin  time.Duration `yaml:"backoff_min" default:"50ms"`
			BackoffMax  time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic    string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`

	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"default"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		Table        string        `yaml:"table" default:"predictions"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert"`
		WaitForAsync bool          `yaml:"wait_for_async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"clickhouse"`

	SQLite struct {
		Path  string `yaml:"path" default:"newssignal.db"`
		Table string `yaml:"table" default:"predictions"`
	} `yaml:"sqlite"`

	Finnhub struct {
		Enabled        bool          `yaml:"enabled"`
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url" default:"wss://ws.finnhub.io"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
	} `yaml:"finnhub"`

	RSS struct {
		Feeds    []string      `yaml:"feeds"`
		Schedule string        `yaml:"schedule" default:"0 */5 * * * *"`
		Timeout  time.Duration `yaml:"timeout" default:"15s"`
	} `yaml:"rss"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Cache struct {
		TTL        time.Duration `yaml:"ttl" default:"10m"`
		MaxEntries int           `yaml:"max_entries" default:"10000"`
		Prefix     string        `yaml:"prefix" default:"newssignal:"`
	} `yaml:"cache"`

	RateLimit struct {
		Capacity     float64 `yaml:"capacity" default:"20" validate:"gt=0"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"5" validate:"gt=0"`
	} `yaml:"ratelimit"`

	Language struct {
		MinConfidence float64 `yaml:"min_confidence" default:"0.5" validate:"gte=0,lte=1"`
	} `yaml:"language"`

	Logging struct {
		Level              string        `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format             string        `yaml:"format" default:"json" validate:"oneof=json console"`
		Output             string        `yaml:"output" default:"stdout"`
		CollectorTopic     string        `yaml:"collector_topic"`
		CollectorInterval  time.Duration `yaml:"collector_interval" default:"30s"`
		CollectorThreshold int           `yaml:"collector_threshold" default:"100"`
	} `yaml:"logging"`
}

// envOverrides lists the settings that may come from the environment. It is
// kept apart from Config so envconfig never touches values it was not given.
type envOverrides struct {
	Environment       string   `envconfig:"ENVIRONMENT"`
	ServerPort        int      `envconfig:"SERVER_PORT"`
	Backend           string   `envconfig:"BACKEND"`
	ModelVectorizer   string   `envconfig:"MODEL_VECTORIZER"`
	ModelClassifier   string   `envconfig:"MODEL_CLASSIFIER"`
	Stemmer           string   `envconfig:"TEXT_STEMMER"`
	KafkaBrokers      []string `envconfig:"KAFKA_BROKERS"`
	ClickHouseHost    string   `envconfig:"CLICKHOUSE_HOST"`
	ClickHousePass    string   `envconfig:"CLICKHOUSE_PASSWORD"`
	SQLitePath        string   `envconfig:"SQLITE_PATH"`
	FinnhubAPIKey     string   `envconfig:"FINNHUB_API_KEY"`
	FinnhubSymbols    []string `envconfig:"FINNHUB_SYMBOLS"`
	RSSFeeds          []string `envconfig:"RSS_FEEDS"`
	RedisAddr         string   `envconfig:"REDIS_ADDR"`
	RedisPassword     string   `envconfig:"REDIS_PASSWORD"`
	LogLevel          string   `envconfig:"LOG_LEVEL"`
	LogFormat         string   `envconfig:"LOG_FORMAT"`
	LogCollectorTopic string   `envconfig:"LOG_COLLECTOR_TOPIC"`
}

var validate = validator.New()

// Load reads a YAML file, fills defaults and validates. An empty path yields
// a defaults-only config.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads .env files when present, then the YAML file, then
// applies NEWSSIGNAL_* overrides and validates again.
func LoadWithEnv(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	c.apply(env)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) apply(env envOverrides) {
	setString(&c.Environment, env.Environment)
	if env.ServerPort > 0 {
		c.Server.Port = env.ServerPort
	}
	setString(&c.Backend.Type, env.Backend)
	setString(&c.Model.Vectorizer, env.ModelVectorizer)
	setString(&c.Model.Classifier, env.ModelClassifier)
	setString(&c.Text.Stemmer, env.Stemmer)
	setList(&c.Kafka.Brokers, env.KafkaBrokers)
	setString(&c.ClickHouse.Host, env.ClickHouseHost)
	setString(&c.ClickHouse.Password, env.ClickHousePass)
	setString(&c.SQLite.Path, env.SQLitePath)
	setString(&c.Finnhub.APIKey, env.FinnhubAPIKey)
	setList(&c.Finnhub.Symbols, env.FinnhubSymbols)
	setList(&c.RSS.Feeds, env.RSSFeeds)
	setString(&c.Redis.Addr, env.RedisAddr)
	setString(&c.Redis.Password, env.RedisPassword)
	setString(&c.Logging.Level, env.LogLevel)
	setString(&c.Logging.Format, env.LogFormat)
	setString(&c.Logging.CollectorTopic, env.LogCollectorTopic)
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, v []string) {
	out := make([]string, 0, len(v))
	for _, s := range v {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}

// UpClassValue returns the classifier label that maps to UP.
func (c *Config) UpClassValue() int {
	if c.Model.UpClass == nil {
		return 1
	}
	return *c.Model.UpClass
}

// Validate checks field rules and the settings each enabled component needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	switch c.Backend.Type {
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("backend kafka requires kafka.brokers")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("backend clickhouse requires clickhouse.host")
		}
	case "sqlite":
		if c.SQLite.Path == "" {
			return fmt.Errorf("backend sqlite requires sqlite.path")
		}
	}
	if c.Kafka.ConsumeHeadlines && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.consume_headlines requires kafka.brokers")
	}
	if c.Logging.CollectorTopic != "" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("logging.collector_topic requires kafka.brokers")
	}
	if c.Finnhub.Enabled {
		if c.Finnhub.APIKey == "" {
			return fmt.Errorf("finnhub.api_key is required when finnhub is enabled")
		}
		if len(c.Finnhub.Symbols) == 0 {
			return fmt.Errorf("finnhub.symbols cannot be empty when finnhub is enabled")
		}
	}
	return nil
}
