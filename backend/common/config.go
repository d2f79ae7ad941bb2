package common

import (
	"strconv"
	"time"
)

var Version = "v0.0.0"

// Storage and database driver names accepted in the configuration.
const (
	DBDriverMongo  = "mongo"
	DBDriverSQLite = "sqlite"
	DBDriverMySQL  = "mysql"

	StorageDriverLocal = "local"
	StorageDriverMinIO = "minio"
)

// Config holds every setting of the server and the worker. It is built once at
// startup by LoadConfig and passed down explicitly.
type Config struct {
	Port int

	DBDriver   string
	DBHost     string
	DBPort     int
	DBDatabase string
	MongoURI   string
	SQLitePath string
	SQLDSN     string

	RedisConnString string

	StorageDriver  string
	FolderPath     string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOSecure    bool

	MailEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailSender   string

	WorkerConcurrency int
	JobMaxRetry       int
	JobTimeout        time.Duration

	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	RateLimitPerMinute int

	LogLevel string
	GinMode  string
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Port:               5000,
		DBDriver:           DBDriverMongo,
		DBHost:             "localhost",
		DBPort:             27017,
		DBDatabase:         "files_manager",
		SQLitePath:         "data/files_manager.db",
		RedisConnString:    "redis://localhost:6379/0",
		StorageDriver:      StorageDriverLocal,
		FolderPath:         "/tmp/files_manager",
		MinIOBucket:        "files-manager",
		SMTPPort:           587,
		WorkerConcurrency:  4,
		JobMaxRetry:        5,
		JobTimeout:         time.Minute,
		RequestTimeout:     5 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		RateLimitPerMinute: 30,
		LogLevel:           "info",
		GinMode:            "release",
	}
}

// MongoConnURI returns MONGO_URI when set, otherwise builds one from the
// DB_HOST / DB_PORT / DB_DATABASE triple.
func (c *Config) MongoConnURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	return "mongodb://" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBDatabase
}
