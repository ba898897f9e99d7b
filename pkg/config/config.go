package config

import (
	"log"
	"os"
	"time"

	"suraksha/pkg/logger"
	"suraksha/pkg/util"
)

type Config struct {
	Addr          string `env:"ADDR"`
	Mode          string `env:"MODE"`
	DBDriver      string `env:"DB_DRIVER"`
	DSN           string `env:"DSN"`
	SessionSecret string `env:"SESSION_SECRET"`
	JWTSecret     string `env:"JWT_SECRET"`
	APIPrefix     string `env:"API_PREFIX"`

	Log logger.LogConfig

	StorageType   string `env:"STORAGE_TYPE"` // "minio" or "local"
	LocalDataPath string `env:"LOCAL_DATA_PATH"`

	CacheType     string `env:"CACHE_TYPE"` // "local", "gocache" or "redis"
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	SMSEnabled      bool   `env:"SMS_ENABLED"`
	SMSAccessKey    string `env:"SMS_ACCESS_KEY"`
	SMSTemplateCode string `env:"SMS_TEMPLATE_CODE"`

	BackupSchedule string `env:"BACKUP_SCHEDULE"` // cron expression
	BackupPath     string `env:"BACKUP_PATH"`
	BackupKeep     int    `env:"BACKUP_KEEP"`

	// Emergency tunables. Zero values fall back to the defaults below.
	HoldDuration    time.Duration `env:"SOS_HOLD_SECONDS"`
	AudioClipLength time.Duration `env:"SOS_AUDIO_SECONDS"`
	StaleSessionAge time.Duration `env:"SOS_STALE_HOURS"`
}

var GlobalConfig *Config

func Load() error {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	GlobalConfig = &Config{
		Addr:          util.GetEnvDefault("ADDR", ":8080"),
		Mode:          util.GetEnvDefault("MODE", "debug"),
		DBDriver:      util.GetEnv("DB_DRIVER"),
		DSN:           util.GetEnv("DSN"),
		SessionSecret: util.GetEnvDefault("SESSION_SECRET", "suraksha-dev-secret"),
		JWTSecret:     util.GetEnvDefault("JWT_SECRET", "suraksha-dev-secret"),
		APIPrefix:     util.GetEnvDefault("API_PREFIX", "/api"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		StorageType:     util.GetEnvDefault("STORAGE_TYPE", "local"),
		LocalDataPath:   util.GetEnvDefault("LOCAL_DATA_PATH", "data"),
		CacheType:       util.GetEnvDefault("CACHE_TYPE", "gocache"),
		RedisAddr:       util.GetEnv("REDIS_ADDR"),
		RedisPassword:   util.GetEnv("REDIS_PASSWORD"),
		SMSEnabled:      util.GetBoolEnv("SMS_ENABLED"),
		SMSAccessKey:    util.GetEnv("SMS_ACCESS_KEY"),
		SMSTemplateCode: util.GetEnv("SMS_TEMPLATE_CODE"),
		BackupSchedule:  util.GetEnvDefault("BACKUP_SCHEDULE", "30 3 * * *"),
		BackupPath:      util.GetEnvDefault("BACKUP_PATH", "backups"),
		BackupKeep:      int(util.GetIntEnv("BACKUP_KEEP")),
		HoldDuration:    time.Duration(util.GetIntEnv("SOS_HOLD_SECONDS")) * time.Second,
		AudioClipLength: time.Duration(util.GetIntEnv("SOS_AUDIO_SECONDS")) * time.Second,
		StaleSessionAge: time.Duration(util.GetIntEnv("SOS_STALE_HOURS")) * time.Hour,
	}
	if GlobalConfig.HoldDuration <= 0 {
		GlobalConfig.HoldDuration = 3 * time.Second
	}
	if GlobalConfig.AudioClipLength <= 0 {
		GlobalConfig.AudioClipLength = 30 * time.Second
	}
	if GlobalConfig.StaleSessionAge <= 0 {
		GlobalConfig.StaleSessionAge = 24 * time.Hour
	}
	if GlobalConfig.BackupKeep <= 0 {
		GlobalConfig.BackupKeep = 7
	}
	return nil
}
