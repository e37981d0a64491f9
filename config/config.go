package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// MongoDB
	MongoURI string
	DBName   string

	// Roboflow hosted inference
	RoboflowAPIKey     string
	RoboflowWorkspace  string
	RoboflowProject    string
	RoboflowVersion    int
	RoboflowConfidence int // percent, 0-100
	RoboflowTimeout    time.Duration

	// Google Cloud Storage (annotated image hosting)
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used

	// JWT
	JWTAccessSecret    string
	TokenExpireMinutes int

	// Redis (report list cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ (report lifecycle events)
	RabbitMQURL         string
	RabbitMQReportQueue string

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Upload handling
	TmpDir                 string
	AnnotatedDir           string
	MaxConcurrentInference int

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "textile-quality-checker"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "release"),

		MongoURI: getenv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:   getenv("DB_NAME", "textile_db"),

		RoboflowAPIKey:     getenv("ROBOFLOW_API_KEY", ""),
		RoboflowWorkspace:  getenv("ROBOFLOW_WORKSPACE", "projects-5kp6j"),
		RoboflowProject:    getenv("ROBOFLOW_PROJECT", "fabric-defect-x4mc4-qiwir"),
		RoboflowVersion:    getint("ROBOFLOW_VERSION", 1),
		RoboflowConfidence: getint("ROBOFLOW_CONFIDENCE", 50),
		RoboflowTimeout:    getdur("ROBOFLOW_TIMEOUT", 60*time.Second),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		JWTAccessSecret:    getenv("JWT_ACCESS_SECRET", "devaccesssecret"),
		TokenExpireMinutes: getint("TOKEN_EXPIRE_MINUTES", 60),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		RabbitMQURL:         getenv("RABBITMQ_URL", ""),
		RabbitMQReportQueue: getenv("RABBITMQ_REPORT_QUEUE", "report_events"),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"),

		TmpDir:                 getenv("TMP_DIR", "tmp_uploads"),
		AnnotatedDir:           getenv("ANNOTATED_DIR", "predicted_outputs"),
		MaxConcurrentInference: getint("MAX_CONCURRENT_INFERENCE", 4),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// AccessTTL returns the session token lifetime.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.TokenExpireMinutes) * time.Minute
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
