package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

// Storage backends accepted in storage.type.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMongo    = "mongo"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
	Tasks   TasksConfig   `yaml:"tasks"`
	Worker  WorkerConfig  `yaml:"worker"`
	HTTP    HTTPConfig    `yaml:"http"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type StorageConfig struct {
	Type     string         `yaml:"type"`
	File     FileConfig     `yaml:"file"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Mongo    MongoConfig    `yaml:"mongo"`
}

type FileConfig struct {
	Path string `yaml:"path"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int32         `yaml:"max_connections"`
	MinConnections int32         `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	Migrate        bool          `yaml:"migrate"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type TasksConfig struct {
	IDStrategy         string `yaml:"id_strategy"`
	RejectPastDueDates bool   `yaml:"reject_past_due_dates"`
}

type WorkerConfig struct {
	FlushInterval time.Duration `yaml:"flush_interval"`
}

type HTTPConfig struct {
	RateLimitRPM   int           `yaml:"rate_limit_rpm"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Host:            "localhost",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Type:   StorageFile,
			File:   FileConfig{Path: "data/tasks.json"},
			SQLite: SQLiteConfig{Path: "data/tasks.db"},
			Postgres: PostgresConfig{
				MaxConnections: 10,
				MinConnections: 2,
				IdleTimeout:    5 * time.Minute,
				Migrate:        true,
			},
			Redis: RedisConfig{Addr: "localhost:6379", Key: "planner:tasks"},
			Mongo: MongoConfig{URI: "mongodb://localhost:27017", Database: "school_planner", Collection: "planner"},
		},
		Tasks:  TasksConfig{IDStrategy: "sequence"},
		Worker: WorkerConfig{FlushInterval: 30 * time.Second},
		HTTP: HTTPConfig{
			RateLimitRPM:   120,
			AllowedOrigins: []string{"*"},
			RequestTimeout: 15 * time.Second,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies PLANNER_*
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	default:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads .env style files into the process environment.
// Files that do not exist are skipped; variables already set win.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("PLANNER_SERVER_HOST", &c.Server.Host)
	str("PLANNER_SERVER_PORT", &c.Server.Port)
	str("PLANNER_STORAGE_TYPE", &c.Storage.Type)
	str("PLANNER_FILE_PATH", &c.Storage.File.Path)
	str("PLANNER_SQLITE_PATH", &c.Storage.SQLite.Path)
	str("PLANNER_DATABASE_URL", &c.Storage.Postgres.URL)
	str("PLANNER_REDIS_ADDR", &c.Storage.Redis.Addr)
	str("PLANNER_REDIS_PASSWORD", &c.Storage.Redis.Password)
	str("PLANNER_MONGO_URI", &c.Storage.Mongo.URI)
	str("PLANNER_ID_STRATEGY", &c.Tasks.IDStrategy)

	if v, ok := lookup("PLANNER_LOG_DEVELOPMENT"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PLANNER_LOG_DEVELOPMENT: %w", err)
		}
		c.Logging.Development = b
	}
	if v, ok := lookup("PLANNER_RATE_LIMIT_RPM"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PLANNER_RATE_LIMIT_RPM: %w", err)
		}
		c.HTTP.RateLimitRPM = n
	}
	if v, ok := lookup("PLANNER_ALLOWED_ORIGINS"); ok && v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		c.HTTP.AllowedOrigins = origins
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}

	c.Storage.Type = strings.ToLower(strings.TrimSpace(c.Storage.Type))
	switch c.Storage.Type {
	case StorageMemory:
	case StorageFile:
		if c.Storage.File.Path == "" {
			errs = append(errs, errors.New("storage.file.path is required"))
		}
	case StorageSQLite:
		if c.Storage.SQLite.Path == "" {
			errs = append(errs, errors.New("storage.sqlite.path is required"))
		}
	case StoragePostgres:
		if c.Storage.Postgres.URL == "" {
			errs = append(errs, errors.New("storage.postgres.url is required"))
		}
	case StorageRedis:
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, errors.New("storage.redis.addr is required"))
		}
	case StorageMongo:
		if c.Storage.Mongo.URI == "" {
			errs = append(errs, errors.New("storage.mongo.uri is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.type %q", c.Storage.Type))
	}

	switch c.Tasks.IDStrategy {
	case "", "sequence", "nanoid":
	default:
		errs = append(errs, fmt.Errorf("unknown tasks.id_strategy %q", c.Tasks.IDStrategy))
	}

	if c.Worker.FlushInterval < 0 {
		errs = append(errs, errors.New("worker.flush_interval must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
