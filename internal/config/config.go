package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment. A .env file in the
// working directory is loaded first if present.
type Config struct {
	Addr      string
	DBPath    string
	LogLevel  string
	LogFormat string

	SweepInterval    time.Duration
	ReminderCooldown time.Duration

	NtfyBaseURL     string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:            getenv("CHOREWHEEL_ADDR", ":8080"),
		DBPath:          getenv("CHOREWHEEL_DB_PATH", "chorewheel.db"),
		LogLevel:        getenv("CHOREWHEEL_LOG_LEVEL", "info"),
		LogFormat:       getenv("CHOREWHEEL_LOG_FORMAT", "text"),
		NtfyBaseURL:     getenv("CHOREWHEEL_NTFY_URL", ""),
		VAPIDPublicKey:  getenv("CHOREWHEEL_VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: getenv("CHOREWHEEL_VAPID_PRIVATE_KEY", ""),
		VAPIDSubscriber: getenv("CHOREWHEEL_VAPID_SUBSCRIBER", "mailto:noreply@chorewheel.local"),
	}

	var err error
	cfg.SweepInterval, err = getduration("CHOREWHEEL_SWEEP_INTERVAL", 3*time.Minute)
	if err != nil {
		return Config{}, err
	}
	cfg.ReminderCooldown, err = getduration("CHOREWHEEL_REMINDER_COOLDOWN", time.Hour)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getduration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
