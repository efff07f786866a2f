package config

import (
	"errors"
	"io/fs"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	defaultMentalThreshold   = 50.0
	defaultFallbackThreshold = 70.0
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	APIKey    string

	CORS       CORSConfig
	Log        LogConfig
	Analysis   AnalysisConfig
	Alerts     AlertConfig
	History    HistoryConfig
	Roster     RosterConfig
	Therapist  TherapistConfig
	Classifier ClassifierConfig

	// Warnings collects non-fatal problems found while parsing so they can be
	// logged once the logger exists.
	Warnings []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AnalysisConfig tunes the risk scoring engine.
type AnalysisConfig struct {
	MinResponseWords          int
	MultiLabel                bool
	ActiveThreshold           float64
	SuicidalFallbackThreshold float64
	SegmentMinChars           int
}

// AlertConfig controls sealing of high-risk submissions.
type AlertConfig struct {
	EncryptionEnabled bool
	Dir               string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
}

// HistoryConfig bounds the in-memory analysis history.
type HistoryConfig struct {
	Limit int
}

// RosterConfig points at the student ledger file.
type RosterConfig struct {
	Path string
}

// TherapistConfig configures the staff credential store and session cookie.
type TherapistConfig struct {
	CredentialsPath string
	CookieName      string
	CookieSecure    bool
}

// ClassifierConfig configures the remote inference adapter.
type ClassifierConfig struct {
	BaseURL      string
	Timeout      time.Duration
	StressModel  string
	MentalModel  string
	EmotionModel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.APIKey = strings.TrimSpace(v.GetString("API_KEY"))

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	threshold, warn := parsePercent(v.GetString("MENTAL_THRESHOLD"), defaultMentalThreshold, "MENTAL_THRESHOLD")
	if warn != "" {
		cfg.Warnings = append(cfg.Warnings, warn)
	}
	fallback, warn := parsePercent(v.GetString("SUICIDAL_FALLBACK_THRESHOLD"), defaultFallbackThreshold, "SUICIDAL_FALLBACK_THRESHOLD")
	if warn != "" {
		cfg.Warnings = append(cfg.Warnings, warn)
	}
	minWords := v.GetInt("MIN_RESPONSE_WORDS")
	if minWords < 0 {
		minWords = 0
	}
	cfg.Analysis = AnalysisConfig{
		MinResponseWords:          minWords,
		MultiLabel:                v.GetBool("MENTAL_MULTI_LABEL"),
		ActiveThreshold:           threshold,
		SuicidalFallbackThreshold: fallback,
		SegmentMinChars:           v.GetInt("SEGMENT_MIN_CHARS"),
	}

	cfg.Alerts = AlertConfig{
		EncryptionEnabled: v.GetBool("ALERT_ENCRYPTION_ENABLED"),
		Dir:               v.GetString("ALERT_DIR"),
		SignedURLSecret:   v.GetString("ALERT_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("ALERT_SIGNED_URL_TTL"), 15*time.Minute),
	}

	limit := v.GetInt("HISTORY_LIMIT")
	if limit <= 0 {
		limit = 50
	}
	cfg.History = HistoryConfig{Limit: limit}

	cfg.Roster = RosterConfig{Path: v.GetString("STUDENT_ROSTER_PATH")}

	cfg.Therapist = TherapistConfig{
		CredentialsPath: v.GetString("THERAPIST_CSV_PATH"),
		CookieName:      v.GetString("SESSION_COOKIE_NAME"),
		CookieSecure:    v.GetBool("SESSION_COOKIE_SECURE"),
	}

	cfg.Classifier = ClassifierConfig{
		BaseURL:      strings.TrimRight(v.GetString("CLASSIFIER_BASE_URL"), "/"),
		Timeout:      parseDuration(v.GetString("CLASSIFIER_TIMEOUT"), 10*time.Second),
		StressModel:  v.GetString("CLASSIFIER_STRESS_MODEL"),
		MentalModel:  v.GetString("CLASSIFIER_MENTAL_MODEL"),
		EmotionModel: v.GetString("CLASSIFIER_EMOTION_MODEL"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("API_KEY", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MIN_RESPONSE_WORDS", 50)
	v.SetDefault("MENTAL_MULTI_LABEL", true)
	v.SetDefault("MENTAL_THRESHOLD", "50")
	v.SetDefault("SUICIDAL_FALLBACK_THRESHOLD", "70")
	v.SetDefault("SEGMENT_MIN_CHARS", 20)

	v.SetDefault("ALERT_ENCRYPTION_ENABLED", true)
	v.SetDefault("ALERT_DIR", "./alerts")
	v.SetDefault("ALERT_SIGNED_URL_SECRET", "dev_alerts_secret")
	v.SetDefault("ALERT_SIGNED_URL_TTL", "15m")

	v.SetDefault("HISTORY_LIMIT", 50)

	v.SetDefault("STUDENT_ROSTER_PATH", "data/student_roster.csv")
	v.SetDefault("THERAPIST_CSV_PATH", "data/therapists.csv")
	v.SetDefault("SESSION_COOKIE_NAME", "therapist_session")
	v.SetDefault("SESSION_COOKIE_SECURE", false)

	v.SetDefault("CLASSIFIER_BASE_URL", "")
	v.SetDefault("CLASSIFIER_TIMEOUT", "10s")
	v.SetDefault("CLASSIFIER_STRESS_MODEL", "models/stress-model")
	v.SetDefault("CLASSIFIER_MENTAL_MODEL", "models/mental-health-model")
	v.SetDefault("CLASSIFIER_EMOTION_MODEL", "j-hartmann/emotion-english-distilroberta-base")
}

// parsePercent reads a percentage and clamps it to [0,100]. Unparsable input
// falls back to the default and yields a warning message.
func parsePercent(raw string, fallback float64, key string) (float64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, ""
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) {
		return fallback, "invalid " + key + "=" + raw + ", using " + strconv.FormatFloat(fallback, 'f', 1, 64)
	}
	return ClampPercent(value), ""
}

// ClampPercent bounds a percentage to [0,100].
func ClampPercent(value float64) float64 {
	if math.IsNaN(value) {
		return 100
	}
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
