package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Redis  RedisConfig  `yaml:"redis"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
	Cache  CacheConfig  `yaml:"cache"`
	Mirror MirrorConfig `yaml:"mirror"`
	Sync   SyncConfig   `yaml:"sync"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTKey   string        `yaml:"jwtKey"`
	TokenTTL time.Duration `yaml:"tokenTTL"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type MirrorConfig struct {
	Driver      string   `yaml:"driver"`
	BatchSize   int      `yaml:"batchSize"`
	Concurrency int      `yaml:"concurrency"`
	RedisPrefix string   `yaml:"redisPrefix"`
	S3          S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	Prefix          string `yaml:"prefix"`
	PathStyle       bool   `yaml:"pathStyle"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
}

type SyncConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// Development reports whether error details may be shown to clients.
func (c Config) Development() bool {
	return strings.EqualFold(c.Server.Env, "development")
}

func defaults() Config {
	return Config{
		Server: ServerConfig{Port: "8080", Env: "production"},
		Mongo:  MongoConfig{Database: "properties"},
		Auth:   AuthConfig{TokenTTL: 15 * time.Minute},
		Log:    LogConfig{Level: "info"},
		Cache:  CacheConfig{TTL: 10 * time.Minute},
		Mirror: MirrorConfig{Driver: "redis", BatchSize: 500, Concurrency: 8},
		Sync:   SyncConfig{Enabled: true, Schedule: "35 12 * * *"},
	}
}

// Load reads configuration from an optional YAML file (APP_CONFIG_PATH) and
// then the environment.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("APP_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"PORT":                        &cfg.Server.Port,
		"APP_ENV":                     &cfg.Server.Env,
		"MONGOURI":                    &cfg.Mongo.URI,
		"DB":                          &cfg.Mongo.Database,
		"REDIS_ADD":                   &cfg.Redis.Addr,
		"REDIS_PASS":                  &cfg.Redis.Password,
		"JWT_KEY":                     &cfg.Auth.JWTKey,
		"LOG_LEVEL":                   &cfg.Log.Level,
		"MIRROR_DRIVER":               &cfg.Mirror.Driver,
		"MIRROR_REDIS_PREFIX":         &cfg.Mirror.RedisPrefix,
		"MIRROR_S3_BUCKET":            &cfg.Mirror.S3.Bucket,
		"MIRROR_S3_REGION":            &cfg.Mirror.S3.Region,
		"MIRROR_S3_ENDPOINT":          &cfg.Mirror.S3.Endpoint,
		"MIRROR_S3_PREFIX":            &cfg.Mirror.S3.Prefix,
		"MIRROR_S3_ACCESS_KEY_ID":     &cfg.Mirror.S3.AccessKeyID,
		"MIRROR_S3_SECRET_ACCESS_KEY": &cfg.Mirror.S3.SecretAccessKey,
		"SYNC_SCHEDULE":               &cfg.Sync.Schedule,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"REDIS_DB":           &cfg.Redis.DB,
		"MIRROR_BATCH_SIZE":  &cfg.Mirror.BatchSize,
		"MIRROR_CONCURRENCY": &cfg.Mirror.Concurrency,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"LOG_PRETTY":           &cfg.Log.Pretty,
		"SYNC_ENABLED":         &cfg.Sync.Enabled,
		"MIRROR_S3_PATH_STYLE": &cfg.Mirror.S3.PathStyle,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = b
		}
	}

	durations := map[string]*time.Duration{
		"CACHE_TTL": &cfg.Cache.TTL,
		"TOKEN_TTL": &cfg.Auth.TokenTTL,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}

func (c Config) validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGOURI not set in environment")
	}
	if c.Auth.JWTKey == "" {
		return fmt.Errorf("JWT_KEY not set in environment")
	}
	switch c.Mirror.Driver {
	case "redis":
	case "s3":
		if c.Mirror.S3.Bucket == "" {
			return fmt.Errorf("MIRROR_S3_BUCKET required for the s3 mirror driver")
		}
	default:
		return fmt.Errorf("unknown mirror driver %q", c.Mirror.Driver)
	}
	if c.Mirror.BatchSize <= 0 || c.Mirror.Concurrency <= 0 {
		return fmt.Errorf("mirror batch size and concurrency must be positive")
	}
	return nil
}
