package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	ScriptModeTemplate = "template"
	ScriptModeLLM      = "llm"
)

var validate = validator.New()

// AppConfig is built once at process start and handed to every component.
type AppConfig struct {
	// Telegram bot credentials and the only chat allowed to trigger runs.
	TelegramToken string `validate:"required"`
	ChatID        string `validate:"required"`
	ChatIDNum     int64

	// Visual Crossing timeline API.
	VisualCrossingKey string
	Location          string
	TZName            string `validate:"required"`
	Timezone          *time.Location
	UnitGroup         string `validate:"oneof=us metric uk base"`
	Lang              string `validate:"required"`

	// Script rendering. GeminiAPIKey is only needed in llm mode.
	ScriptMode   string `validate:"oneof=template llm"`
	GeminiAPIKey string `validate:"required_if=ScriptMode llm"`
	GeminiModel  string `validate:"required"`

	TTSLang string `validate:"required"`

	OutDir     string `validate:"required"`
	CursorFile string `validate:"required"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	HTTPTimeout   time.Duration `validate:"gt=0"`
	UploadTimeout time.Duration `validate:"gt=0"`

	// Serve mode only.
	PollInterval     time.Duration `validate:"gt=0"`
	BriefingCron     string
	Port             string
	RunHistoryMax    int           // max number of run records kept (0 = unlimited)
	RunHistoryMaxAge time.Duration // max age of run records (0 = unlimited)
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}
	cfg := &AppConfig{}

	cfg.TelegramToken = getenvTrim("TG_BOT_TOKEN")
	cfg.ChatID = getenvTrim("TG_CHAT_ID")

	cfg.VisualCrossingKey = getenvTrim("VISUAL_CROSSING_API_KEY")
	cfg.Location = getenvTrim("LOCATION")
	cfg.TZName = getenvDefault("TZ_NAME", "America/New_York")
	cfg.UnitGroup = getenvDefault("UNIT_GROUP", "us")
	cfg.Lang = getenvDefault("VC_LANG", "zh")

	cfg.GeminiAPIKey = getenvTrim("GEMINI_API_KEY")
	cfg.GeminiModel = getenvDefault("GEMINI_MODEL", "gemini-3-flash-preview")

	// Script mode defaults to llm only when a key is available.
	defMode := ScriptModeTemplate
	if cfg.GeminiAPIKey != "" {
		defMode = ScriptModeLLM
	}
	cfg.ScriptMode = strings.ToLower(getenvDefault("SCRIPT_MODE", defMode))

	cfg.TTSLang = getenvDefault("TTS_LANG", "zh-CN")
	cfg.OutDir = getenvDefault("OUT_DIR", "out")
	cfg.CursorFile = getenvDefault("CURSOR_FILE", "state/telegram_offset.txt")
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "text"))

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.UploadTimeout, err = getenvDuration("UPLOAD_TIMEOUT", "90s"); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = getenvDuration("POLL_INTERVAL", "1m"); err != nil {
		return nil, err
	}
	if cfg.RunHistoryMaxAge, err = getenvDuration("RUN_HISTORY_MAX_AGE", "168h"); err != nil {
		return nil, err
	}
	cfg.RunHistoryMax = getenvInt("RUN_HISTORY_MAX", 50)
	cfg.BriefingCron = getenvDefault("BRIEFING_CRON", "0 7 * * *")
	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.ChatIDNum, err = strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TG_CHAT_ID %q: %w", cfg.ChatID, err)
	}

	cfg.Timezone, err = time.LoadLocation(cfg.TZName)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ_NAME %q: %w", cfg.TZName, err)
	}

	if _, err := cron.ParseStandard(cfg.BriefingCron); err != nil {
		return nil, fmt.Errorf("invalid BRIEFING_CRON %q: %w", cfg.BriefingCron, err)
	}

	return cfg, nil
}

// RequireBriefing reports the settings the briefing runner cannot do without.
// The dispatcher only needs Telegram, so these are checked lazily.
func (c *AppConfig) RequireBriefing() error {
	if err := validate.Var(c.VisualCrossingKey, "required"); err != nil {
		return errors.New("VISUAL_CROSSING_API_KEY is required")
	}
	if err := validate.Var(c.Location, "required"); err != nil {
		return errors.New("LOCATION is required")
	}
	return nil
}

func getenvTrim(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getenvDefault(key, def string) string {
	if v := getenvTrim(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := getenvTrim(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
