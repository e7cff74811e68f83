package main

import (
	"fmt"
	"log/slog"

	"github.com/i474232898/weather-voice/internal/briefing"
	"github.com/i474232898/weather-voice/internal/config"
	"github.com/i474232898/weather-voice/internal/cursor"
	"github.com/i474232898/weather-voice/internal/dispatch"
	"github.com/i474232898/weather-voice/internal/logging"
	"github.com/i474232898/weather-voice/internal/metrics"
	"github.com/i474232898/weather-voice/internal/script"
	"github.com/i474232898/weather-voice/internal/speech"
	"github.com/i474232898/weather-voice/internal/telegram"
	"github.com/i474232898/weather-voice/internal/tts"
	"github.com/i474232898/weather-voice/internal/weather/providers"
)

// app holds what every subcommand needs.
type app struct {
	cfg      *config.AppConfig
	logger   *slog.Logger
	closeLog func() error
	lex      speech.Lexicon
}

// setup loads configuration and the logger. Briefing settings are checked
// only when needBriefing is set.
func setup(needBriefing bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if needBriefing {
		if err := cfg.RequireBriefing(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Dir:    cfg.OutDir,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		closeLog: closeLog,
		lex:      speech.LexiconFor(cfg.Lang),
	}, nil
}

func (a *app) close() {
	_ = a.closeLog()
}

func (a *app) telegram() (*telegram.Client, error) {
	return telegram.New(telegram.Options{
		Token:         a.cfg.TelegramToken,
		ChatID:        a.cfg.ChatIDNum,
		Timeout:       a.cfg.HTTPTimeout,
		UploadTimeout: a.cfg.UploadTimeout,
	})
}

// runner wires the briefing pipeline.
func (a *app) runner(sender briefing.Sender, m *metrics.Metrics, recorder briefing.Recorder) (*briefing.Runner, error) {
	cfg := a.cfg

	tmpl, err := script.NewTemplateRenderer(a.lex)
	if err != nil {
		return nil, err
	}
	var renderer script.Renderer = tmpl
	if cfg.ScriptMode == config.ScriptModeLLM {
		renderer = script.NewGeminiRenderer(script.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: 2 * cfg.HTTPTimeout,
		})
	}

	synth, err := tts.NewGoogle(tts.GoogleOptions{Lang: cfg.TTSLang, Timeout: cfg.HTTPTimeout})
	if err != nil {
		return nil, err
	}

	provider := providers.NewVisualCrossingProvider(providers.VisualCrossingOptions{
		APIKey:    cfg.VisualCrossingKey,
		UnitGroup: cfg.UnitGroup,
		Lang:      cfg.Lang,
		Timeout:   cfg.HTTPTimeout,
	})

	return briefing.NewRunner(provider, renderer, synth, sender, briefing.NewArtifacts(cfg.OutDir), a.logger, briefing.Options{
		Location:  cfg.Location,
		UnitGroup: cfg.UnitGroup,
		Timezone:  cfg.Timezone,
		Lexicon:   a.lex,
		Fallback:  tmpl,
		Metrics:   m,
		Recorder:  recorder,
	}), nil
}

func (a *app) dispatcher(tg *telegram.Client, invoker dispatch.TaskInvoker, m *metrics.Metrics) *dispatch.Dispatcher {
	return dispatch.New(tg, cursor.NewFileStore(a.cfg.CursorFile), invoker, a.logger, dispatch.Options{
		AuthorizedChat: a.cfg.ChatID,
		AckText:        a.lex.Ack,
		Metrics:        m,
	})
}
