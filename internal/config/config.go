package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Guard    GuardConfig    `mapstructure:"guard"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Log      LogConfig      `mapstructure:"log"`
}

type AppConfig struct {
	AppName     string `mapstructure:"name"`
	Environment string `mapstructure:"env"`
	HTTPPort    string `mapstructure:"http_port"`
}

type DatabaseConfig struct {
	DBHost     string `mapstructure:"host"`
	DBPort     string `mapstructure:"port"`
	DBName     string `mapstructure:"name"`
	DBUser     string `mapstructure:"user"`
	DBPassword string `mapstructure:"password"`
	DBSSLMode  string `mapstructure:"ssl_mode"`

	ConnectTimeout        time.Duration `mapstructure:"connect_timeout"`
	PoolMaxConns          int32         `mapstructure:"pool_max_conns"`
	PoolMinConns          int32         `mapstructure:"pool_min_conns"`
	PoolMaxConnLifetime   time.Duration `mapstructure:"pool_max_conn_lifetime"`
	PoolMaxConnIdleTime   time.Duration `mapstructure:"pool_max_conn_idle_time"`
	PoolHealthCheckPeriod time.Duration `mapstructure:"pool_health_check_period"`
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	GuardLocal = "local"
	GuardRedis = "redis"
)

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type GuardConfig struct {
	Backend       string        `mapstructure:"backend"`
	LockTimeout   time.Duration `mapstructure:"lock_timeout"`
	LeaseTTL      time.Duration `mapstructure:"lease_ttl"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	Issuer    string        `mapstructure:"issuer"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
}

type ScoringConfig struct {
	SkillWeight        float64 `mapstructure:"skill_weight"`
	CompensationWeight float64 `mapstructure:"compensation_weight"`
	LocationWeight     float64 `mapstructure:"location_weight"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

var (
	errMissingRequiredEnv = errors.New("missing required configuration")
	errInvalidConfig      = errors.New("invalid configuration")
)

var required = []string{"app.name", "app.env", "app.http_port", "jwt.secret"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "")
	v.SetDefault("app.env", "")
	v.SetDefault("app.http_port", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "hire_match")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.connect_timeout", 5*time.Second)
	v.SetDefault("database.pool_max_conns", 10)
	v.SetDefault("database.pool_min_conns", 0)
	v.SetDefault("database.pool_max_conn_lifetime", time.Hour)
	v.SetDefault("database.pool_max_conn_idle_time", 30*time.Minute)
	v.SetDefault("database.pool_health_check_period", time.Minute)

	v.SetDefault("storage.driver", StoragePostgres)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("guard.backend", GuardLocal)
	v.SetDefault("guard.lock_timeout", 5*time.Second)
	v.SetDefault("guard.lease_ttl", 30*time.Second)
	v.SetDefault("guard.retry_interval", 25*time.Millisecond)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "hire-match")
	v.SetDefault("jwt.expires_in", 24*time.Hour)

	v.SetDefault("scoring.skill_weight", 0.6)
	v.SetDefault("scoring.compensation_weight", 0.25)
	v.SetDefault("scoring.location_weight", 0.15)

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// Load reads .env (if present), the optional config file and the environment.
// Environment keys are the upper-cased dotted paths: app.http_port is
// APP_HTTP_PORT.
func Load(file string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(file) != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var missing []string
	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.App.AppName = strings.TrimSpace(c.App.AppName)
	c.App.Environment = strings.TrimSpace(c.App.Environment)
	c.App.HTTPPort = strings.TrimSpace(c.App.HTTPPort)
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Guard.Backend = strings.ToLower(strings.TrimSpace(c.Guard.Backend))
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("%w: storage.driver %q", errInvalidConfig, c.Storage.Driver)
	}
	switch c.Guard.Backend {
	case GuardLocal, GuardRedis:
	default:
		return fmt.Errorf("%w: guard.backend %q", errInvalidConfig, c.Guard.Backend)
	}
	if c.Guard.LockTimeout <= 0 {
		return fmt.Errorf("%w: guard.lock_timeout must be positive", errInvalidConfig)
	}
	s := c.Scoring
	if s.SkillWeight < 0 || s.CompensationWeight < 0 || s.LocationWeight < 0 {
		return fmt.Errorf("%w: scoring weights must be non-negative", errInvalidConfig)
	}
	if s.SkillWeight+s.CompensationWeight+s.LocationWeight <= 0 {
		return fmt.Errorf("%w: scoring weights must not all be zero", errInvalidConfig)
	}
	return nil
}
