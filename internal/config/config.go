// Package config loads and validates the settings shared by the ledger binaries.
// Values are layered: defaults, then an optional .env file, then the environment.
package config

import (
	"errors"
	"strings"
	"time"
)

// Storage backends understood by STORAGE_BACKEND
const (
	BackendInMemory = "in_memory"
	BackendPostgres = "postgres"
	BackendMongoDB  = "mongodb"
)

// Config holds the complete application configuration. Sections for optional
// infrastructure (Postgres, MongoDB, Kafka) are only validated when in use.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Storage     StorageConfig
	Ledger      LedgerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or text
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// StorageConfig selects the ledger repository implementation
type StorageConfig struct {
	Backend string
}

// LedgerConfig contains the transaction rules
type LedgerConfig struct {
	TxnIDPrefix     string
	DuplicatePolicy string // overwrite or reject
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Enabled           bool
	Brokers           string
	TransactionTopic  string // Inbound transaction requests
	EventsTopic       string // Outbound transaction recorded events
	NumPartitions     int    // Number of partitions for topics
	ReplicationFactor int    // Replication factor for topics
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for Dead Letter Queue
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// validate collects every problem instead of stopping at the first one
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Ledger config
	if c.Ledger.TxnIDPrefix == "" {
		validationErrors = append(validationErrors, "LEDGER_TXN_ID_PREFIX is required")
	}
	switch strings.ToLower(c.Ledger.DuplicatePolicy) {
	case "overwrite", "reject":
	default:
		validationErrors = append(validationErrors, "LEDGER_DUPLICATE_POLICY must be one of overwrite, reject")
	}

	switch c.Storage.Backend {
	case BackendInMemory:
	case BackendPostgres:
		validationErrors = append(validationErrors, c.Postgres.validate()...)
	case BackendMongoDB:
		validationErrors = append(validationErrors, c.MongoDB.validate()...)
	default:
		validationErrors = append(validationErrors, "STORAGE_BACKEND must be one of in_memory, postgres, mongodb")
	}

	if c.Kafka.Enabled {
		validationErrors = append(validationErrors, c.Kafka.validate()...)
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}

func (k KafkaConfig) validate() []string {
	var errs []string
	if k.Brokers == "" {
		errs = append(errs, "KAFKA_BROKERS is required")
	}
	if k.TransactionTopic == "" {
		errs = append(errs, "KAFKA_TRANSACTION_TOPIC is required")
	}
	if k.EventsTopic == "" {
		errs = append(errs, "KAFKA_EVENTS_TOPIC is required")
	}
	if k.ConsumerGroup == "" {
		errs = append(errs, "KAFKA_CONSUMER_GROUP is required")
	}
	if k.MinBytes <= 0 {
		errs = append(errs, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if k.MaxBytes <= 0 {
		errs = append(errs, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if k.MaxWait <= 0 {
		errs = append(errs, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if k.DLQTopic == "" {
		errs = append(errs, "KAFKA_DLQ_TOPIC is required")
	}
	return errs
}

func (p PostgresConfig) validate() []string {
	var errs []string
	if p.URL == "" {
		errs = append(errs, "POSTGRES_URL is required")
	}
	if p.MaxConns <= 0 {
		errs = append(errs, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if p.MinConns <= 0 {
		errs = append(errs, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if p.ConnMaxLifetime <= 0 {
		errs = append(errs, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if p.ConnMaxIdleTime <= 0 {
		errs = append(errs, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	return errs
}

func (m MongoDBConfig) validate() []string {
	var errs []string
	if m.URI == "" {
		errs = append(errs, "MONGO_URI is required")
	}
	if m.Database == "" {
		errs = append(errs, "MONGO_DATABASE is required")
	}
	if m.Timeout <= 0 {
		errs = append(errs, "MONGO_TIMEOUT must be greater than 0")
	}
	if m.MaxPoolSize <= 0 {
		errs = append(errs, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if m.MaxConnIdleTime <= 0 {
		errs = append(errs, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	return errs
}
