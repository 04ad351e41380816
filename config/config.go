package config

import (
	"time"
)

// Config is the complete tool configuration.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Merge   MergeConfig   `koanf:"merge"`
	Store   StoreConfig   `koanf:"store"`
	S3      S3Config      `koanf:"s3"`
	MinIO   MinIOConfig   `koanf:"minio"`
	Redis   RedisConfig   `koanf:"redis"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// MergeConfig tunes the merger.
type MergeConfig struct {
	// Workers bounds parallelism. 0 means GOMAXPROCS.
	Workers   int `koanf:"workers" validate:"gte=0"`
	ChunkSize int `koanf:"chunk_size" validate:"gte=1"`
	// MinOverlap fails a merge whose shared-id fraction is below it. 0 disables the check.
	MinOverlap       float64 `koanf:"min_overlap" validate:"gte=0,lte=1"`
	MemoryLimitBytes int64   `koanf:"memory_limit_bytes" validate:"gte=0"`
}

// StoreConfig selects the output format and IO throttling.
type StoreConfig struct {
	Format             string `koanf:"format" validate:"oneof=binary json"`
	Compression        string `koanf:"compression" validate:"oneof=none lz4 zstd"`
	IOLimitBytesPerSec int64  `koanf:"io_limit_bytes_per_sec" validate:"gte=0"`
}

// S3Config configures s3:// locations.
type S3Config struct {
	Region          string `koanf:"region"`
	Endpoint        string `koanf:"endpoint" validate:"omitempty,url"`
	UsePathStyle    bool   `koanf:"use_path_style"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key" validate:"required_with=AccessKeyID"`
	SessionToken    string `koanf:"session_token"`
	PartSize        int64  `koanf:"part_size" validate:"gte=5242880"`
	Concurrency     int    `koanf:"concurrency" validate:"gte=1"`
	Checksum        bool   `koanf:"checksum"`
}

// MinIOConfig configures minio:// locations.
type MinIOConfig struct {
	Endpoint        string `koanf:"endpoint" validate:"omitempty,hostname_port"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key" validate:"required_with=AccessKeyID"`
	Region          string `koanf:"region"`
	Secure          bool   `koanf:"secure"`
}

// RedisConfig configures redis:// locations.
type RedisConfig struct {
	Addr     string        `koanf:"addr" validate:"omitempty,hostname_port"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db" validate:"gte=0"`
	TTL      time.Duration `koanf:"ttl" validate:"gte=0"`
}

// MetricsConfig controls metric export.
type MetricsConfig struct {
	// Textfile, if set, receives the Prometheus text exposition after a run.
	Textfile string `koanf:"textfile"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Merge: MergeConfig{
			Workers:   0,
			ChunkSize: 1024,
		},
		Store: StoreConfig{
			Format:      "binary",
			Compression: "zstd",
		},
		S3: S3Config{
			PartSize:    8 << 20,
			Concurrency: 5,
			Checksum:    true,
		},
		MinIO: MinIOConfig{
			Secure: true,
		},
	}
}

// CodecName returns the codec registry name for the store settings.
func (c StoreConfig) CodecName() string {
	if c.Format == "json" {
		return "json"
	}
	if c.Compression == "" || c.Compression == "none" {
		return "binary"
	}
	return "binary+" + c.Compression
}
