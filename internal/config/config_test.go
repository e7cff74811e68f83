package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TG_BOT_TOKEN", "123:abc")
	t.Setenv("TG_CHAT_ID", "-100200300")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SCRIPT_MODE", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", cfg.TZName)
	assert.Equal(t, "us", cfg.UnitGroup)
	assert.Equal(t, "zh", cfg.Lang)
	assert.Equal(t, ScriptModeTemplate, cfg.ScriptMode)
	assert.Equal(t, int64(-100200300), cfg.ChatIDNum)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 90*time.Second, cfg.UploadTimeout)
	assert.Equal(t, "state/telegram_offset.txt", cfg.CursorFile)
	require.NotNil(t, cfg.Timezone)
	assert.Equal(t, "America/New_York", cfg.Timezone.String())
}

func TestLoadPicksLLMModeWhenKeyPresent(t *testing.T) {
	setRequired(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ScriptModeLLM, cfg.ScriptMode)
}

func TestLoadRejectsLLMModeWithoutKey(t *testing.T) {
	setRequired(t)
	t.Setenv("SCRIPT_MODE", "llm")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"UNIT_GROUP":    "imperial",
		"TZ_NAME":       "Mars/Olympus",
		"HTTP_TIMEOUT":  "soon",
		"BRIEFING_CRON": "every morning",
		"TG_CHAT_ID":    "@mychannel",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, val)

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadRequiresTelegram(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "")
	t.Setenv("TG_CHAT_ID", "42")

	_, err := Load()
	require.Error(t, err)
}

func TestRequireBriefing(t *testing.T) {
	setRequired(t)
	t.Setenv("VISUAL_CROSSING_API_KEY", "")
	t.Setenv("LOCATION", "40.8448,-73.8648")

	cfg, err := Load()
	require.NoError(t, err)
	require.Error(t, cfg.RequireBriefing())

	cfg.VisualCrossingKey = "vc"
	require.NoError(t, cfg.RequireBriefing())
}
