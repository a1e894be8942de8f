package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	RealtimeLocal = "local"
	RealtimeRedis = "redis"
)

type Config struct {
	Port        string
	BindAddress string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	JWTSecret string

	LogLevel  string
	LogFormat string

	RateLimitRPS   float64
	RateLimitBurst int

	// RealtimeBackend is "local" for a single instance or "redis" to fan
	// events out through Redis pub/sub.
	RealtimeBackend string
	EventQueueSize  int
	PinMaxAttempts  int
	AutoMigrate     bool

	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory (or the one named by envFile) is loaded first when present.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrapf(err, "config.godotenv(%s)", envFile)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "config.stat(%s)", envFile)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("PORT", "8080")
	v.SetDefault("BIND_ADDRESS", "localhost")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "quizzit")
	v.SetDefault("DB_PASSWORD", "quizzit123")
	v.SetDefault("DB_NAME", "quizzit")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("RATE_LIMIT_RPS", 5.0)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("REALTIME_BACKEND", "redis")
	v.SetDefault("EVENT_QUEUE_SIZE", 256)
	v.SetDefault("PIN_MAX_ATTEMPTS", 20)
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.AutomaticEnv()

	cfg := &Config{
		Port:            v.GetString("PORT"),
		BindAddress:     v.GetString("BIND_ADDRESS"),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBUser:          v.GetString("DB_USER"),
		DBPassword:      v.GetString("DB_PASSWORD"),
		DBName:          v.GetString("DB_NAME"),
		RedisHost:       v.GetString("REDIS_HOST"),
		RedisPort:       v.GetString("REDIS_PORT"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		RateLimitRPS:    v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:  v.GetInt("RATE_LIMIT_BURST"),
		RealtimeBackend: v.GetString("REALTIME_BACKEND"),
		EventQueueSize:  v.GetInt("EVENT_QUEUE_SIZE"),
		PinMaxAttempts:  v.GetInt("PIN_MAX_ATTEMPTS"),
		AutoMigrate:     v.GetBool("AUTO_MIGRATE"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must not be empty")
	}
	if cfg.RealtimeBackend != RealtimeLocal && cfg.RealtimeBackend != RealtimeRedis {
		return nil, errors.Errorf("REALTIME_BACKEND must be %q or %q, got %q", RealtimeLocal, RealtimeRedis, cfg.RealtimeBackend)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return c.BindAddress + ":" + c.Port
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	return db, nil
}

func InitRedis(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})
}
