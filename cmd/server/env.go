package main

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Environment struct {
	Environment   string
	ServerAddress string
	LogLevel      string

	ConfigDir     string
	SchedulesPath string
	HistoryPath   string
	LogsDir       string

	RsyncPath  string
	RunTimeout time.Duration

	SMTPServer     string
	SMTPPort       int
	SenderEmail    string
	SenderPassword string

	HistoryRetention time.Duration
}

// LoadEnvironment reads env vars, with a .env file as fallback when
// one is present.
func LoadEnvironment() Environment {
	_ = godotenv.Load()

	env := Environment{
		Environment:   os.Getenv("APP_ENV"),
		ServerAddress: getenv("SERVER_ADDRESS", ":5000"),
		LogLevel:      getenv("LOG_LEVEL", "info"),

		ConfigDir: getenv("CONFIG_DIR", "/etc/nereus"),
		RsyncPath: getenv("RSYNC_PATH", "rsync"),

		SMTPServer:     getenv("SMTP_SERVER", "smtp.gmail.com"),
		SenderEmail:    os.Getenv("SENDER_EMAIL"),
		SenderPassword: os.Getenv("SENDER_PASSWORD"),
	}

	env.SchedulesPath = filepath.Join(env.ConfigDir, "schedules.json")
	env.HistoryPath = filepath.Join(env.ConfigDir, "history.db")
	env.LogsDir = filepath.Join(env.ConfigDir, "logs")

	env.SMTPPort = getenvInt("SMTP_PORT", 587)
	env.RunTimeout = getenvDuration("RUN_TIMEOUT", time.Hour)
	env.HistoryRetention = time.Duration(getenvInt("HISTORY_RETENTION_DAYS", 90)) * 24 * time.Hour

	return env
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer in environment, using default")
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration in environment, using default")
		return fallback
	}
	return d
}
