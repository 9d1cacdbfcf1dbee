package config

import (
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	TelnyxAPIKey  string   `envconfig:"TELNYX_LET_FOOD_INTO_CIVIC_KEY"`
	TelnyxNumber  string   `envconfig:"TELNYX_PHONE_NUMBER"`
	NotifyNumbers []string `envconfig:"NOTIFY_NUMBERS"` // comma-separated, any formatting

	UnlockDigit   string        `envconfig:"UNLOCK_DIGIT" default:"5"`
	Iterations    int           `envconfig:"ITERATIONS" default:"6"`
	PauseDuration time.Duration `envconfig:"PAUSE_DURATION" default:"500ms"`
	DTMFAudioURL  string        `envconfig:"DTMF_AUDIO_URL" default:"https://let-food-into-civic.contrived.com/static/dtmf5-2sec.wav"`

	DataDir  string `envconfig:"DATA_DIR" default:"./data"`
	DBPath   string `envconfig:"DB_PATH"` // defaults to <DATA_DIR>/gate.db
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "gate.db")
	}
	return cfg, nil
}

// SnoozePath is the canonical location of the snooze state file.
func (c Config) SnoozePath() string {
	return filepath.Join(c.DataDir, "snooze.json")
}
