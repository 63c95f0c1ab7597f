// Package config loads service settings from the environment (optionally
// seeded by a .env file) and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Match    MatchConfig    `mapstructure:"match"`
}

type AppConfig struct {
	AppName         string        `mapstructure:"name"`
	Environment     string        `mapstructure:"env"`
	HTTPPort        string        `mapstructure:"http-port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	URL        string `mapstructure:"url"`
	DBHost     string `mapstructure:"host"`
	DBPort     string `mapstructure:"port"`
	DBName     string `mapstructure:"name"`
	DBUser     string `mapstructure:"user"`
	DBPassword string `mapstructure:"password"`
	DBSSLMode  string `mapstructure:"ssl-mode"`

	ConnectTimeout      time.Duration `mapstructure:"connect-timeout"`
	PoolMaxConns        int32         `mapstructure:"pool-max-conns"`
	PoolMinConns        int32         `mapstructure:"pool-min-conns"`
	PoolMaxConnLifetime time.Duration `mapstructure:"pool-max-conn-lifetime"`
	PoolMaxConnIdleTime time.Duration `mapstructure:"pool-max-conn-idle-time"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`
	MaxPoolSize    uint64        `mapstructure:"max-pool-size"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	LockTTL  time.Duration `mapstructure:"lock-ttl"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	Leeway time.Duration `mapstructure:"leeway"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// MatchConfig tunes recommendation listings, not the scorer itself.
type MatchConfig struct {
	DefaultLimit    int     `mapstructure:"default-limit"`
	MaxLimit        int     `mapstructure:"max-limit"`
	DefaultMinScore float64 `mapstructure:"default-min-score"`
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

type setting struct {
	key string
	env string
	def any
}

var settings = []setting{
	{"app.name", "APP_NAME", ""},
	{"app.env", "APP_ENV", ""},
	{"app.http-port", "HTTP_PORT", ""},
	{"app.shutdown-timeout", "SHUTDOWN_TIMEOUT", "10s"},

	{"store.driver", "STORE_DRIVER", StoreMemory},

	{"database.url", "DATABASE_URL", ""},
	{"database.host", "DB_HOST", ""},
	{"database.port", "DB_PORT", ""},
	{"database.name", "DB_NAME", ""},
	{"database.user", "DB_USER", ""},
	{"database.password", "DB_PASSWORD", ""},
	{"database.ssl-mode", "DB_SSL_MODE", "disable"},
	{"database.connect-timeout", "DB_CONNECT_TIMEOUT", "5s"},
	{"database.pool-max-conns", "DB_POOL_MAX_CONNS", 10},
	{"database.pool-min-conns", "DB_POOL_MIN_CONNS", 0},
	{"database.pool-max-conn-lifetime", "DB_POOL_MAX_CONN_LIFETIME", "1h"},
	{"database.pool-max-conn-idle-time", "DB_POOL_MAX_CONN_IDLE_TIME", "30m"},

	{"mongo.uri", "MONGO_URI", ""},
	{"mongo.database", "MONGO_DATABASE", "jobmatch"},
	{"mongo.connect-timeout", "MONGO_CONNECT_TIMEOUT", "10s"},
	{"mongo.max-pool-size", "MONGO_MAX_POOL_SIZE", 0},

	{"redis.enabled", "REDIS_ENABLED", true},
	{"redis.host", "REDIS_HOST", "localhost"},
	{"redis.port", "REDIS_PORT", "6379"},
	{"redis.password", "REDIS_PASSWORD", ""},
	{"redis.db", "REDIS_DB", 0},
	{"redis.ttl", "REDIS_TTL", "10m"},
	{"redis.lock-ttl", "REDIS_LOCK_TTL", "30s"},

	{"jwt.secret", "JWT_SECRET", ""},
	{"jwt.issuer", "JWT_ISSUER", ""},
	{"jwt.leeway", "JWT_LEEWAY", "30s"},

	{"log.json", "LOG_JSON", false},
	{"log.debug", "LOG_DEBUG", false},

	{"match.default-limit", "MATCH_DEFAULT_LIMIT", 20},
	{"match.max-limit", "MATCH_MAX_LIMIT", 100},
	{"match.default-min-score", "MATCH_DEFAULT_MIN_SCORE", 0.0},
}

// Load reads .env (when present), the environment and, if configFile is
// non-empty, a config file. Environment variables win over the file.
func Load(configFile string) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	cfg, err := read(configFile, func(string) bool { return true })
	if err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDatabase loads only the postgres section, for the migrate command.
func LoadDatabase(configFile string) (DatabaseConfig, error) {
	if err := loadDotEnv(); err != nil {
		return DatabaseConfig{}, err
	}
	cfg, err := read(configFile, func(key string) bool { return strings.HasPrefix(key, "database.") })
	if err != nil {
		return DatabaseConfig{}, err
	}
	db := cfg.Database
	if db.URL == "" && (strings.TrimSpace(db.DBHost) == "" || strings.TrimSpace(db.DBName) == "") {
		return DatabaseConfig{}, fmt.Errorf("%w: DATABASE_URL or DB_HOST, DB_NAME", errMissingRequiredEnv)
	}
	return db, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func read(configFile string, keep func(key string) bool) (Config, error) {
	v := viper.New()
	for _, s := range settings {
		if !keep(s.key) {
			continue
		}
		v.SetDefault(s.key, s.def)
		if err := v.BindEnv(s.key, s.env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", s.env, err)
		}
	}

	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.trim()
	return cfg, nil
}

func (c *Config) trim() {
	c.App.AppName = strings.TrimSpace(c.App.AppName)
	c.App.Environment = strings.TrimSpace(c.App.Environment)
	c.App.HTTPPort = strings.TrimSpace(c.App.HTTPPort)
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Database.URL = strings.TrimSpace(c.Database.URL)
	c.Mongo.URI = strings.TrimSpace(c.Mongo.URI)
	c.JWT.Secret = strings.TrimSpace(c.JWT.Secret)
}

func (c Config) validate() error {
	var missing []string
	req := func(env, v string) {
		if v == "" {
			missing = append(missing, env)
		}
	}

	req("APP_NAME", c.App.AppName)
	req("APP_ENV", c.App.Environment)
	req("HTTP_PORT", c.App.HTTPPort)
	req("JWT_SECRET", c.JWT.Secret)

	switch c.Store.Driver {
	case StoreMemory:
	case StorePostgres:
		if c.Database.URL == "" {
			req("DB_HOST", c.Database.DBHost)
			req("DB_PORT", c.Database.DBPort)
			req("DB_NAME", c.Database.DBName)
			req("DB_USER", c.Database.DBUser)
		}
	case StoreMongo:
		req("MONGO_URI", c.Mongo.URI)
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if c.Match.DefaultLimit <= 0 || c.Match.MaxLimit < c.Match.DefaultLimit {
		return fmt.Errorf("invalid match limits: default=%d max=%d", c.Match.DefaultLimit, c.Match.MaxLimit)
	}
	return nil
}
