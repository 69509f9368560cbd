package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7/pkg/s3utils"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	StorageBackendLocal  = "local"
	StorageBackendRemote = "remote"
	// StorageBackendOSS is accepted as an alias of StorageBackendRemote.
	StorageBackendOSS = "oss"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// LocalStorageConfig configures the filesystem backend.
type LocalStorageConfig struct {
	Root string
	// BaseURL prefixes every URL handed out for a local object, e.g. "/uploads" or "https://cdn.example/uploads".
	BaseURL string
}

// RemoteStorageConfig configures the signed-HTTP object store backend.
type RemoteStorageConfig struct {
	AccessKeyID     string
	AccessKeySecret string
	Endpoint        string
	Bucket          string
	Region          string
	STSRoleARN      string
	STSEndpoint     string
	// STSSessionDurationSec is clamped into the STS bounds by the backend.
	STSSessionDurationSec int
	KeyPrefix             string
	SignedURLExpirySec    int
	RequestTimeoutSec     int
}

// StorageConfig selects and parametrizes exactly one storage backend.
type StorageConfig struct {
	Backend string
	Local   LocalStorageConfig
	Remote  RemoteStorageConfig
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string
	Pretty bool
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Disabled    bool
	ServiceName string
	// Protocol is "grpc" or "http/protobuf".
	Protocol   string
	Endpoint   string
	Sampler    string
	SamplerArg string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables once at startup and treated as read-only afterwards.
type AppConfig struct {
	AppHost   string
	Port      string
	JWTSecret string
	Database  DatabaseConfig
	Storage   StorageConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:   getEnv("APP_HOST", "localhost:8080"),
		Port:      getEnv("PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", ""),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageBackendLocal)),
			Local: LocalStorageConfig{
				Root:    getEnv("STORAGE_LOCAL_ROOT", "./uploads"),
				BaseURL: getEnv("STORAGE_LOCAL_BASE_URL", "/uploads"),
			},
			Remote: RemoteStorageConfig{
				AccessKeyID:           getEnv("OSS_ACCESS_KEY_ID", ""),
				AccessKeySecret:       getEnv("OSS_ACCESS_KEY_SECRET", ""),
				Endpoint:              getEnv("OSS_ENDPOINT", ""),
				Bucket:                getEnv("OSS_BUCKET", ""),
				Region:                getEnv("OSS_REGION", ""),
				STSRoleARN:            getEnv("OSS_STS_ROLE_ARN", ""),
				STSEndpoint:           getEnv("OSS_STS_ENDPOINT", "https://sts.aliyuncs.com/"),
				STSSessionDurationSec: getEnvInt("OSS_STS_SESSION_DURATION", 900),
				KeyPrefix:             getEnv("OSS_KEY_PREFIX", ""),
				SignedURLExpirySec:    getEnvInt("OSS_SIGNED_URL_EXPIRY", 600),
				RequestTimeoutSec:     getEnvInt("OSS_REQUEST_TIMEOUT_SEC", 30),
			},
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
		Telemetry: TelemetryConfig{
			Disabled:    getEnvBool("OTEL_SDK_DISABLED", false),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "shareapi"),
			Protocol:    getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "")),
			Sampler:     getEnv("OTEL_TRACES_SAMPLER", "parentbased_traceidratio"),
			SamplerArg:  getEnv("OTEL_TRACES_SAMPLER_ARG", "1.0"),
		},
	}
}

// IsRemote reports whether the remote object store is selected.
func (c StorageConfig) IsRemote() bool {
	return c.Backend == StorageBackendRemote || c.Backend == StorageBackendOSS
}

// Validate checks that the selected backend has everything it needs.
// Every missing remote setting is reported at once.
func (c StorageConfig) Validate() error {
	switch {
	case c.Backend == StorageBackendLocal:
		if strings.TrimSpace(c.Local.Root) == "" {
			return errors.New("storage: STORAGE_LOCAL_ROOT is required for the local backend")
		}
		return nil
	case c.IsRemote():
		var errs []error
		r := c.Remote
		if strings.TrimSpace(r.AccessKeyID) == "" {
			errs = append(errs, errors.New("OSS_ACCESS_KEY_ID is required"))
		}
		if strings.TrimSpace(r.AccessKeySecret) == "" {
			errs = append(errs, errors.New("OSS_ACCESS_KEY_SECRET is required"))
		}
		if strings.TrimSpace(r.Endpoint) == "" {
			errs = append(errs, errors.New("OSS_ENDPOINT is required"))
		}
		if bucket := strings.TrimSpace(r.Bucket); bucket == "" {
			errs = append(errs, errors.New("OSS_BUCKET is required"))
		} else if err := s3utils.CheckValidBucketNameStrict(bucket); err != nil {
			errs = append(errs, fmt.Errorf("OSS_BUCKET: %w", err))
		}
		if len(errs) > 0 {
			return fmt.Errorf("storage: invalid remote config: %w", errors.Join(errs...))
		}
		return nil
	default:
		return fmt.Errorf("storage: unsupported backend %q", c.Backend)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
