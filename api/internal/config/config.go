package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EngineVision = "vision"
	EngineGemini = "gemini"
)

type Config struct {
	Host   string
	Port   string
	AppEnv string

	LogLevel string

	Engine string
	Vision VisionConfig
	Gemini GeminiConfig
	Upload UploadConfig

	CORSAllowedOrigins []string
}

type VisionConfig struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration

	RetryAttempts int
	RetryBackoff  time.Duration

	MaxLabels  int
	MaxObjects int
	MaxText    int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64

	S3Bucket    string
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
}

// UseS3 reports whether uploads go to an S3-compatible bucket instead of the local dir.
func (u UploadConfig) UseS3() bool { return strings.TrimSpace(u.S3Bucket) != "" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "8000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("ANNOTATION_ENGINE", EngineVision)

	v.SetDefault("GOOGLE_VISION_API_KEY", "")
	v.SetDefault("VISION_ENDPOINT", "https://vision.googleapis.com/v1/images:annotate")
	v.SetDefault("VISION_TIMEOUT", 30*time.Second)
	v.SetDefault("VISION_RETRY_ATTEMPTS", 1)
	v.SetDefault("VISION_RETRY_BACKOFF", 300*time.Millisecond)
	v.SetDefault("VISION_MAX_LABELS", 10)
	v.SetDefault("VISION_MAX_OBJECTS", 10)
	v.SetDefault("VISION_MAX_TEXT", 1)

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")

	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 32<<20)
	v.SetDefault("UPLOAD_S3_BUCKET", "")
	v.SetDefault("UPLOAD_S3_ENDPOINT", "")
	v.SetDefault("UPLOAD_S3_REGION", "auto")
	v.SetDefault("UPLOAD_S3_ACCESS_KEY", "")
	v.SetDefault("UPLOAD_S3_SECRET_KEY", "")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// Load reads configuration from the environment (and .env outside production).
// A missing vision key is not an error here: the engine reports it per request.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Host:     strings.TrimSpace(v.GetString("HOST")),
		Port:     strings.TrimSpace(v.GetString("PORT")),
		AppEnv:   v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),

		Engine: strings.ToLower(strings.TrimSpace(v.GetString("ANNOTATION_ENGINE"))),
		Vision: VisionConfig{
			APIKey:        strings.TrimSpace(v.GetString("GOOGLE_VISION_API_KEY")),
			Endpoint:      strings.TrimSpace(v.GetString("VISION_ENDPOINT")),
			Timeout:       getDuration(v, "VISION_TIMEOUT", time.Second),
			RetryAttempts: v.GetInt("VISION_RETRY_ATTEMPTS"),
			RetryBackoff:  getDuration(v, "VISION_RETRY_BACKOFF", time.Millisecond),
			MaxLabels:     v.GetInt("VISION_MAX_LABELS"),
			MaxObjects:    v.GetInt("VISION_MAX_OBJECTS"),
			MaxText:       v.GetInt("VISION_MAX_TEXT"),
		},
		Gemini: GeminiConfig{
			APIKey: strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
			Model:  strings.TrimSpace(v.GetString("GEMINI_MODEL")),
		},
		Upload: UploadConfig{
			Dir:         v.GetString("UPLOAD_DIR"),
			MaxBytes:    v.GetInt64("UPLOAD_MAX_BYTES"),
			S3Bucket:    v.GetString("UPLOAD_S3_BUCKET"),
			S3Endpoint:  v.GetString("UPLOAD_S3_ENDPOINT"),
			S3Region:    v.GetString("UPLOAD_S3_REGION"),
			S3AccessKey: v.GetString("UPLOAD_S3_ACCESS_KEY"),
			S3SecretKey: v.GetString("UPLOAD_S3_SECRET_KEY"),
		},
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}
}

// getDuration reads a Go duration ("30s", "250ms"). A bare number is taken
// in unit, so VISION_TIMEOUT=30 means 30 seconds rather than 30ns.
func getDuration(v *viper.Viper, key string, unit time.Duration) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(n) * unit
	}
	return v.GetDuration(key)
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is empty")
	}
	switch c.Engine {
	case EngineVision, EngineGemini:
	default:
		return fmt.Errorf("unknown ANNOTATION_ENGINE %q", c.Engine)
	}
	if c.Vision.Endpoint == "" {
		return fmt.Errorf("VISION_ENDPOINT is empty")
	}
	if c.Vision.Timeout < time.Millisecond {
		return fmt.Errorf("VISION_TIMEOUT must be at least 1ms, got %s", c.Vision.Timeout)
	}
	if c.Vision.RetryAttempts < 1 {
		return fmt.Errorf("VISION_RETRY_ATTEMPTS must be >= 1, got %d", c.Vision.RetryAttempts)
	}
	if c.Vision.RetryBackoff < 0 {
		return fmt.Errorf("VISION_RETRY_BACKOFF must not be negative")
	}
	if c.Vision.MaxLabels < 1 || c.Vision.MaxObjects < 1 || c.Vision.MaxText < 1 {
		return fmt.Errorf("VISION_MAX_* values must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if !c.Upload.UseS3() && strings.TrimSpace(c.Upload.Dir) == "" {
		return fmt.Errorf("UPLOAD_DIR is empty and no UPLOAD_S3_BUCKET is set")
	}
	return nil
}

func (c *Config) Addr() string { return c.Host + ":" + c.Port }

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
