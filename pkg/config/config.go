package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string          `yaml:"environment" default:"development"`
	Server      ServerConfig    `yaml:"server"`
	Logger      LoggerConfig    `yaml:"logger"`
	Metrics     MetricsConfig   `yaml:"metrics"`
	Artifacts   ArtifactsConfig `yaml:"artifacts"`
	Ledger      LedgerConfig    `yaml:"ledger"`
	ClickHouse  ClickHouse      `yaml:"clickhouse"`
	Postgres    Postgres        `yaml:"postgres"`
	Cache       CacheConfig     `yaml:"cache"`
	Alerts      AlertsConfig    `yaml:"alerts"`
	RateLimit   RateLimit       `yaml:"ratelimit"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"5000"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	CORS            bool          `yaml:"cors" default:"true"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" default:"500ms"`
}

type LoggerConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"console"`
	Output string `yaml:"output" default:"stdout"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

type ArtifactsConfig struct {
	Source         string        `yaml:"source" default:"file"`
	Dir            string        `yaml:"dir" default:"artifacts"`
	EquipmentTypes []string      `yaml:"equipment_types" default:"[\"Bulldozer\",\"Crane\",\"DumpTruck\",\"Excavator\",\"Loader\"]"`
	LoadTimeout    time.Duration `yaml:"load_timeout" default:"30s"`
	S3             struct {
		Bucket string `yaml:"bucket"`
		Prefix string `yaml:"prefix"`
		Region string `yaml:"region" default:"us-east-1"`
	} `yaml:"s3"`
	Remote struct {
		URL      string        `yaml:"url"`
		Timeout  time.Duration `yaml:"timeout" default:"3s"`
		Attempts int           `yaml:"attempts" default:"1"`
	} `yaml:"remote"`
}

type LedgerConfig struct {
	Source  string `yaml:"source" default:"csv"`
	CSVPath string `yaml:"csv_path" default:"data/cleaned_rental_data.csv"`
	Table   string `yaml:"table" default:"rental_events"`
}

type ClickHouse struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"smartrental"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
}

type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns" default:"5"`
	MaxIdleConns    int           `yaml:"max_idle_conns" default:"2"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" default:"5m"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled" default:"true"`
	TTL     time.Duration `yaml:"ttl" default:"60s"`
	Redis   struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"smartrental:"`
	} `yaml:"redis"`
}

type AlertsConfig struct {
	Backend string        `yaml:"backend" default:"none"`
	Timeout time.Duration `yaml:"timeout" default:"2s"`
	Kafka   struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"fleet.risk_alerts"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	MQTT struct {
		Broker   string `yaml:"broker"`
		ClientID string `yaml:"client_id" default:"smartrental-api"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Topic    string `yaml:"topic" default:"fleet/alerts/{kind}"`
		QoS      int    `yaml:"qos" default:"1"`
	} `yaml:"mqtt"`
}

type RateLimit struct {
	Enabled      bool    `yaml:"enabled" default:"true"`
	Capacity     float64 `yaml:"capacity" default:"20"`
	RefillPerSec float64 `yaml:"refill_per_sec" default:"10"`
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := read(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	setString(&c.Environment, "APP_ENV")
	setInt(&c.Server.Port, "PORT")
	setString(&c.Logger.Level, "LOG_LEVEL")
	setString(&c.Logger.Format, "LOG_FORMAT")

	setString(&c.Artifacts.Source, "ARTIFACTS_SOURCE")
	setString(&c.Artifacts.Dir, "ARTIFACTS_DIR")
	setList(&c.Artifacts.EquipmentTypes, "EQUIPMENT_TYPES")
	setString(&c.Artifacts.S3.Bucket, "ARTIFACTS_S3_BUCKET")
	setString(&c.Artifacts.S3.Prefix, "ARTIFACTS_S3_PREFIX")
	setString(&c.Artifacts.S3.Region, "AWS_REGION")
	setString(&c.Artifacts.Remote.URL, "MODEL_SERVICE_URL")

	setString(&c.Ledger.Source, "LEDGER_SOURCE")
	setString(&c.Ledger.CSVPath, "LEDGER_CSV_PATH")
	setString(&c.ClickHouse.Host, "CLICKHOUSE_HOST")
	setString(&c.ClickHouse.Password, "CLICKHOUSE_PASSWORD")
	setString(&c.Postgres.DSN, "DB_DSN")

	setString(&c.Cache.Redis.Addr, "REDIS_ADDR")
	setString(&c.Cache.Redis.Password, "REDIS_PASSWORD")

	setString(&c.Alerts.Backend, "ALERTS_BACKEND")
	setList(&c.Alerts.Kafka.Brokers, "KAFKA_BROKERS")
	setString(&c.Alerts.Kafka.Topic, "KAFKA_TOPIC")
	setString(&c.Alerts.MQTT.Broker, "MQTT_BROKER")
	setString(&c.Alerts.MQTT.Username, "MQTT_USERNAME")
	setString(&c.Alerts.MQTT.Password, "MQTT_PASSWORD")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Artifacts.Source {
	case "file":
		if c.Artifacts.Dir == "" {
			return fmt.Errorf("artifacts.dir is required for source 'file'")
		}
	case "s3":
		if c.Artifacts.S3.Bucket == "" {
			return fmt.Errorf("artifacts.s3.bucket is required for source 's3'")
		}
	default:
		return fmt.Errorf("artifacts.source must be 'file' or 's3', got '%s'", c.Artifacts.Source)
	}
	switch c.Ledger.Source {
	case "csv":
		if c.Ledger.CSVPath == "" {
			return fmt.Errorf("ledger.csv_path is required for source 'csv'")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for ledger source 'clickhouse'")
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for ledger source 'postgres'")
		}
	default:
		return fmt.Errorf("ledger.source must be 'csv', 'clickhouse' or 'postgres', got '%s'", c.Ledger.Source)
	}
	switch c.Alerts.Backend {
	case "none":
	case "kafka":
		if len(c.Alerts.Kafka.Brokers) == 0 {
			return fmt.Errorf("alerts.kafka.brokers cannot be empty")
		}
	case "mqtt":
		if c.Alerts.MQTT.Broker == "" {
			return fmt.Errorf("alerts.mqtt.broker is required")
		}
	default:
		return fmt.Errorf("alerts.backend must be 'none', 'kafka' or 'mqtt', got '%s'", c.Alerts.Backend)
	}
	if c.Alerts.MQTT.QoS < 0 || c.Alerts.MQTT.QoS > 2 {
		return fmt.Errorf("alerts.mqtt.qos must be 0, 1 or 2")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Capacity < 1 || c.RateLimit.RefillPerSec <= 0) {
		return fmt.Errorf("ratelimit requires capacity >= 1 and refill_per_sec > 0")
	}
	return nil
}
