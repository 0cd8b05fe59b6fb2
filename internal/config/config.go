package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	MongoURI  string
	MongoDB   string
	RedisAddr string
	HTTPPort  string

	JWTSecret     string
	AdminUsername string
	AdminPassword string

	// Wazo calld integration for post-call IVR transfers
	CalldURL      string
	SurveyContext string
	SurveyExten   string
	SurveyTimeout int

	// Outbound webhook target
	WebhookURL    string
	WebhookSecret string

	// Optional external sentiment scorer; empty disables scoring
	SentimentAPIURL string

	// Eligibility defaults
	MaxSurveysPerCaller  int
	DefaultCooldownHours int

	// Extra complaint keywords appended to the built-in list
	AlertKeywords []string

	LogLevel string
}

// Load reads configuration from .env (if present) and the environment.
func Load() *Config {
	godotenv.Load()

	return &Config{
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "callpulse"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:  getEnv("HTTP_PORT", "8080"),

		JWTSecret:     getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "password123"),

		CalldURL:      getEnv("CALLD_URL", "http://127.0.0.1:9486/api/calld/1.0"),
		SurveyContext: getEnv("SURVEY_CONTEXT", "xivo-extrafeatures"),
		SurveyExten:   getEnv("SURVEY_EXTEN", "8899"),
		SurveyTimeout: getEnvInt("SURVEY_TIMEOUT", 15),

		WebhookURL:    getEnv("WEBHOOK_URL", ""),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		SentimentAPIURL: getEnv("SENTIMENT_API_URL", ""),

		MaxSurveysPerCaller:  getEnvInt("MAX_SURVEYS_PER_CALLER", 10),
		DefaultCooldownHours: getEnvInt("DEFAULT_COOLDOWN_HOURS", 24),

		AlertKeywords: getEnvList("ALERT_KEYWORDS"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
