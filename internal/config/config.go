package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"go-media-backend/internal/util"
)

type Config struct {
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	RequestTimeout     time.Duration
	UploadTimeout      time.Duration

	DatabaseURL      string
	DatabaseMaxConns int32
	DatabaseMinConns int32

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	CookieSecure       bool

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int
	RedisAddr        string
	RedisPassword    string
	RedisDB          int

	LogFormat      string
	LogLevel       string
	MetricsEnabled bool

	MaxUploadSize     int64
	UploadTempDir     string
	AllowedVideoTypes []string
	AllowedImageTypes []string
	ImageMaxDimension int
	FFProbePath       string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3PublicBaseURL string
	S3UsePathStyle  bool
}

// Load reads configuration from the environment. Files in envFiles are loaded
// first and must exist; without them a local .env is loaded when present.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 5*time.Minute),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		UploadTimeout:      getDuration("UPLOAD_TIMEOUT", 5*time.Minute),

		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DatabaseMaxConns: int32(getInt("DATABASE_MAX_CONNS", 20)),
		DatabaseMinConns: int32(getInt("DATABASE_MIN_CONNS", 2)),

		AccessTokenSecret:  strings.TrimSpace(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshTokenSecret: strings.TrimSpace(os.Getenv("REFRESH_TOKEN_SECRET")),
		AccessTokenTTL:     getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:    getDuration("REFRESH_TOKEN_TTL", 240*time.Hour),
		CookieSecure:       getBool("COOKIE_SECURE", true),

		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		RateLimitRPM:     getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM: getInt("AUTH_RATE_LIMIT_RPM", 10),
		RedisAddr:        strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getInt("REDIS_DB", 0),

		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "pretty")),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		MetricsEnabled: getBool("METRICS_ENABLED", true),

		MaxUploadSize:     getInt64("MAX_UPLOAD_SIZE", 512<<20),
		UploadTempDir:     getEnv("UPLOAD_TEMP_DIR", os.TempDir()),
		AllowedVideoTypes: splitCSV(getEnv("ALLOWED_VIDEO_TYPES", "video/mp4,video/webm,video/quicktime,video/x-matroska")),
		AllowedImageTypes: splitCSV(getEnv("ALLOWED_IMAGE_TYPES", "image/jpeg,image/png,image/gif,image/webp,image/bmp")),
		ImageMaxDimension: getInt("IMAGE_MAX_DIMENSION", 1920),
		FFProbePath:       getEnv("FFPROBE_PATH", "ffprobe"),

		S3Bucket:        strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3PublicBaseURL: strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
		S3UsePathStyle:  getBool("S3_USE_PATH_STYLE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.DatabaseMaxConns <= 0 || c.DatabaseMinConns < 0 || c.DatabaseMinConns > c.DatabaseMaxConns {
		return fmt.Errorf("DATABASE_MIN_CONNS/DATABASE_MAX_CONNS are out of range")
	}

	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}

	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= c.AccessTokenTTL {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be longer than a positive ACCESS_TOKEN_TTL")
	}

	if c.RequestTimeout <= 0 || c.UploadTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT and UPLOAD_TIMEOUT must be positive")
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	if c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}

	for _, t := range c.AllowedVideoTypes {
		if !util.IsVideoMIME(t) {
			return fmt.Errorf("ALLOWED_VIDEO_TYPES entry %q is not a video type", t)
		}
	}

	for _, t := range c.AllowedImageTypes {
		if !util.IsImageMIME(t) {
			return fmt.Errorf("ALLOWED_IMAGE_TYPES entry %q is not an image type", t)
		}
	}

	switch c.LogFormat {
	case "pretty", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be pretty or json")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
