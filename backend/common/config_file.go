package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// configKeys lists every key understood in the ini file and the environment.
var configKeys = []string{
	"PORT",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_DATABASE", "MONGO_URI", "SQLITE_PATH", "SQL_DSN",
	"REDIS_CONN_STRING",
	"STORAGE_DRIVER", "FOLDER_PATH",
	"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_SECURE",
	"MAIL_ENABLED", "SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "MAIL_SENDER",
	"WORKER_CONCURRENCY", "JOB_MAX_RETRY", "JOB_TIMEOUT",
	"REQUEST_TIMEOUT", "SHUTDOWN_TIMEOUT", "RATE_LIMIT_PER_MINUTE",
	"LOG_LEVEL", "GIN_MODE",
}

// LoadConfig builds the configuration from defaults, the optional ini file at
// configPath and the environment, in that order of precedence (lowest first).
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	configMap := make(map[string]string)
	if configPath != "" {
		fileMap, err := parseIniConfig(configPath)
		if err != nil {
			return nil, err
		}
		configMap = fileMap
	}
	for key, value := range envConfigMap() {
		configMap[key] = value
	}

	if err := applyConfigMap(cfg, configMap); err != nil {
		if configPath != "" {
			return nil, fmt.Errorf("apply config file %s: %w", configPath, err)
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DBDriverMongo, DBDriverSQLite, DBDriverMySQL:
	default:
		return fmt.Errorf("invalid value for DB_DRIVER: %q", c.DBDriver)
	}
	if c.DBDriver == DBDriverMySQL && c.SQLDSN == "" {
		return errors.New("SQL_DSN is required when DB_DRIVER is mysql")
	}
	switch c.StorageDriver {
	case StorageDriverLocal:
		if c.FolderPath == "" {
			return errors.New("FOLDER_PATH must not be empty")
		}
	case StorageDriverMinIO:
		if c.MinIOEndpoint == "" || c.MinIOBucket == "" {
			return errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required when STORAGE_DRIVER is minio")
		}
	default:
		return fmt.Errorf("invalid value for STORAGE_DRIVER: %q", c.StorageDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid value for PORT: %d", c.Port)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid value for GIN_MODE: %q", c.GinMode)
	}
	if c.WorkerConcurrency <= 0 {
		return errors.New("WORKER_CONCURRENCY must be positive")
	}
	if c.JobMaxRetry < 0 {
		return errors.New("JOB_MAX_RETRY must not be negative")
	}
	return nil
}

func parseIniConfig(path string) (map[string]string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parse ini config %s: %w", path, err)
	}

	configMap := make(map[string]string)
	for _, section := range cfg.Sections() {
		for _, key := range section.Keys() {
			configKey := strings.ToUpper(strings.TrimSpace(key.Name()))
			if configKey == "" {
				continue
			}
			configMap[configKey] = strings.TrimSpace(key.Value())
		}
	}

	return configMap, nil
}

func envConfigMap() map[string]string {
	configMap := make(map[string]string)
	for _, key := range configKeys {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			configMap[key] = strings.TrimSpace(value)
		}
	}
	return configMap
}

func applyConfigMap(cfg *Config, configMap map[string]string) error {
	strs := map[string]*string{
		"DB_DRIVER":         &cfg.DBDriver,
		"DB_HOST":           &cfg.DBHost,
		"DB_DATABASE":       &cfg.DBDatabase,
		"MONGO_URI":         &cfg.MongoURI,
		"SQLITE_PATH":       &cfg.SQLitePath,
		"SQL_DSN":           &cfg.SQLDSN,
		"REDIS_CONN_STRING": &cfg.RedisConnString,
		"STORAGE_DRIVER":    &cfg.StorageDriver,
		"FOLDER_PATH":       &cfg.FolderPath,
		"MINIO_ENDPOINT":    &cfg.MinIOEndpoint,
		"MINIO_ACCESS_KEY":  &cfg.MinIOAccessKey,
		"MINIO_SECRET_KEY":  &cfg.MinIOSecretKey,
		"MINIO_BUCKET":      &cfg.MinIOBucket,
		"SMTP_HOST":         &cfg.SMTPHost,
		"SMTP_USER":         &cfg.SMTPUser,
		"SMTP_PASSWORD":     &cfg.SMTPPassword,
		"MAIL_SENDER":       &cfg.MailSender,
		"LOG_LEVEL":         &cfg.LogLevel,
		"GIN_MODE":          &cfg.GinMode,
	}
	ints := map[string]*int{
		"PORT":                  &cfg.Port,
		"DB_PORT":               &cfg.DBPort,
		"SMTP_PORT":             &cfg.SMTPPort,
		"WORKER_CONCURRENCY":    &cfg.WorkerConcurrency,
		"JOB_MAX_RETRY":         &cfg.JobMaxRetry,
		"RATE_LIMIT_PER_MINUTE": &cfg.RateLimitPerMinute,
	}
	bools := map[string]*bool{
		"MINIO_SECURE": &cfg.MinIOSecure,
		"MAIL_ENABLED": &cfg.MailEnabled,
	}
	durations := map[string]*time.Duration{
		"JOB_TIMEOUT":      &cfg.JobTimeout,
		"REQUEST_TIMEOUT":  &cfg.RequestTimeout,
		"SHUTDOWN_TIMEOUT": &cfg.ShutdownTimeout,
	}

	for key, configValue := range configMap {
		if configValue == "" {
			continue
		}
		if target, ok := strs[key]; ok {
			*target = configValue
			continue
		}
		if target, ok := ints[key]; ok {
			v, err := strconv.Atoi(configValue)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			*target = v
			continue
		}
		if target, ok := bools[key]; ok {
			v, err := strconv.ParseBool(configValue)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			*target = v
			continue
		}
		if target, ok := durations[key]; ok {
			v, err := time.ParseDuration(configValue)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			*target = v
		}
	}

	return nil
}
