package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Export   ExportConfig   `yaml:"export"`
	CORS     CORSConfig     `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Editor-Id,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// EditorHeader names the header an upstream auth proxy uses to forward
	// the editor id.
	EditorHeader string `yaml:"editor_header" env:"SERVER_EDITOR_HEADER" env-default:"X-Editor-Id"`
	// WriteRateLimit caps entry writes per editor per minute. 0 disables it.
	WriteRateLimit int `yaml:"write_rate_limit" env:"SERVER_WRITE_RATE_LIMIT" env-default:"120"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN              string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns         int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns         int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	StatementTimeout time.Duration `yaml:"statement_timeout"  env:"DATABASE_STATEMENT_TIMEOUT"  env-default:"30s"`
	MigrationsDir    string        `yaml:"migrations_dir"     env:"DATABASE_MIGRATIONS_DIR"     env-default:"migrations"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// IngestConfig holds batch pipeline settings.
type IngestConfig struct {
	SourceDir string `yaml:"source_dir" env:"INGEST_SOURCE_DIR" env-default:"data/src"`
	Workers   int    `yaml:"workers"    env:"INGEST_WORKERS"    env-default:"4"`
	// AssumeCompleteRaw is a comma-separated list of document names whose
	// entries are recorded as complete.
	AssumeCompleteRaw string `yaml:"assume_complete" env:"INGEST_ASSUME_COMPLETE" env-default:"dictionary.yaml"`
	BatchSize         int    `yaml:"batch_size"      env:"INGEST_BATCH_SIZE"      env-default:"500"`
	DryRun            bool   `yaml:"dry_run"         env:"INGEST_DRY_RUN"         env-default:"false"`
	Load              bool   `yaml:"load"            env:"INGEST_LOAD"            env-default:"false"`

	// AssumeComplete is parsed from AssumeCompleteRaw during validation.
	AssumeComplete []string `yaml:"-" env:"-"`
}

// ExportConfig holds bulk export settings.
type ExportConfig struct {
	OutDir           string `yaml:"out_dir"            env:"EXPORT_OUT_DIR"            env-default:"data/out"`
	ChunkDir         string `yaml:"chunk_dir"          env:"EXPORT_CHUNK_DIR"`
	MaxChunkBytes    int    `yaml:"max_chunk_bytes"    env:"EXPORT_MAX_CHUNK_BYTES"    env-default:"90000"`
	RowsPerStatement int    `yaml:"rows_per_statement" env:"EXPORT_ROWS_PER_STATEMENT" env-default:"50"`
}
