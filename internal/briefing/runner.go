// Package briefing runs one weather voice briefing: fetch the forecast,
// write a script, synthesize it and deliver the audio to the chat.
//
// Any failure is reported to the chat as a best-effort text alert and then
// returned to the caller.
package briefing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-voice/internal/metrics"
	"github.com/i474232898/weather-voice/internal/script"
	"github.com/i474232898/weather-voice/internal/speech"
	"github.com/i474232898/weather-voice/internal/store"
	"github.com/i474232898/weather-voice/internal/tts"
	"github.com/i474232898/weather-voice/internal/weather"
)

const stampLayout = "20060102_150405"

// Sender delivers to the authorized chat.
type Sender interface {
	SendAudio(path, caption string) error
	SendText(text string) error
}

// Recorder keeps run records.
type Recorder interface {
	Save(rec store.RunRecord)
}

// Result describes a finished run.
type Result struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Renderer   string
	Script     string
	Caption    string
	AudioPath  string
	Artifacts  []string
}

// Options configures NewRunner.
type Options struct {
	Location  string
	UnitGroup string
	Timezone  *time.Location
	Lexicon   speech.Lexicon

	// Fallback replaces a generated script whose numbers do not match the data.
	Fallback script.Renderer

	Metrics  *metrics.Metrics
	Recorder Recorder
	Now      func() time.Time
}

// Runner executes briefings. Runs are serialized and each gets a distinct
// artifact stamp.
type Runner struct {
	mu        sync.Mutex
	lastStamp time.Time

	provider  weather.Provider
	renderer  script.Renderer
	fallback  script.Renderer
	synth     tts.Synthesizer
	sender    Sender
	artifacts *Artifacts
	logger    *slog.Logger

	location  string
	unitGroup string
	tz        *time.Location
	lex       speech.Lexicon
	metrics   *metrics.Metrics
	recorder  Recorder
	now       func() time.Time
}

// NewRunner wires a Runner.
func NewRunner(
	provider weather.Provider,
	renderer script.Renderer,
	synth tts.Synthesizer,
	sender Sender,
	artifacts *Artifacts,
	logger *slog.Logger,
	opts Options,
) *Runner {
	tz := opts.Timezone
	if tz == nil {
		tz = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	lex := opts.Lexicon
	if lex.Unknown == "" {
		lex = speech.English
	}
	return &Runner{
		provider:  provider,
		renderer:  renderer,
		fallback:  opts.Fallback,
		synth:     synth,
		sender:    sender,
		artifacts: artifacts,
		logger:    logger,
		location:  opts.Location,
		unitGroup: opts.UnitGroup,
		tz:        tz,
		lex:       lex,
		metrics:   opts.Metrics,
		recorder:  opts.Recorder,
		now:       now,
	}
}

// Run executes one briefing. On failure the chat gets a text alert and the
// error is returned.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := &Result{ID: uuid.NewString(), StartedAt: r.now()}
	logger := r.logger.With("run_id", res.ID)
	logger.Info("briefing started", "location", r.location, "renderer", r.renderer.Name())

	err := r.run(ctx, logger, res)
	res.FinishedAt = r.now()
	r.metrics.BriefingRun(err, res.FinishedAt.Sub(res.StartedAt))

	if err != nil {
		kind := Kind(err)
		logger.Error("briefing failed", "kind", kind, "error", err)
		if sendErr := r.sender.SendText(fmt.Sprintf(r.lex.Failure, kind, err.Error())); sendErr != nil {
			logger.Warn("failure alert not delivered", "error", sendErr)
		}
	} else {
		logger.Info("briefing delivered",
			"audio", res.AudioPath,
			"caption", res.Caption,
			"duration", res.FinishedAt.Sub(res.StartedAt))
	}

	r.record(res, err)
	return res, err
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, res *Result) error {
	now := res.StartedAt.In(r.tz)
	stamp := r.nextStamp(now)

	rep, err := r.provider.Fetch(ctx, r.location)
	if err != nil {
		return fmt.Errorf("fetch weather: %w", err)
	}
	if err := r.write(res, fmt.Sprintf("weather_raw_%s.json", stamp), rep.Raw); err != nil {
		return err
	}

	today := weather.SelectToday(&rep.Timeline, now, r.tz)
	if today.Datetime != now.Format(weather.DateLayout) {
		logger.Warn("no daily record for today, using first day", "today", now.Format(weather.DateLayout), "day", today.Datetime)
	}
	facts := script.NewFacts(&rep.Timeline, today, r.lex, r.unitGroup, r.location, r.tz.String())

	text, err := r.render(ctx, logger, facts, stamp, res)
	if err != nil {
		return err
	}
	res.Script = text
	if err := r.write(res, fmt.Sprintf("script_%s.txt", stamp), []byte(text+"\n")); err != nil {
		return err
	}

	audio := r.artifacts.Path(fmt.Sprintf("weather_%s.mp3", stamp))
	if err := r.synth.Synthesize(ctx, text, audio); err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}
	res.AudioPath = audio
	res.Artifacts = append(res.Artifacts, audio)

	res.Caption = Caption(facts)
	if err := r.sender.SendAudio(audio, res.Caption); err != nil {
		return fmt.Errorf("send audio: %w", err)
	}
	return nil
}

// render produces the script. A generated script whose numbers drift from
// the data is replaced by the fallback renderer's output.
func (r *Runner) render(ctx context.Context, logger *slog.Logger, facts script.Facts, stamp string, res *Result) (string, error) {
	p, generated := r.renderer.(script.Prompter)
	if generated {
		if err := r.write(res, fmt.Sprintf("prompt_%s.txt", stamp), []byte(p.Prompt(facts)+"\n")); err != nil {
			return "", err
		}
	}

	res.Renderer = r.renderer.Name()
	text, err := r.renderer.Render(ctx, facts)
	if err != nil {
		return "", fmt.Errorf("render script with %s: %w", r.renderer.Name(), err)
	}

	if !generated || r.fallback == nil {
		return text, nil
	}
	if err := script.CheckNumbers(text, facts); err != nil {
		if !errors.Is(err, script.ErrNumericDrift) {
			return "", err
		}
		logger.Warn("generated script rejected, falling back", "renderer", r.fallback.Name(), "error", err)
		res.Renderer = r.fallback.Name()
		text, err = r.fallback.Render(ctx, facts)
		if err != nil {
			return "", fmt.Errorf("render script with %s: %w", r.fallback.Name(), err)
		}
	}
	return text, nil
}

// nextStamp formats t, moved forward a second at a time past the previous
// run's stamp. Callers hold r.mu.
func (r *Runner) nextStamp(t time.Time) string {
	t = t.Truncate(time.Second)
	if !r.lastStamp.IsZero() && !t.After(r.lastStamp) {
		t = r.lastStamp.Add(time.Second)
	}
	r.lastStamp = t
	return t.Format(stampLayout)
}

func (r *Runner) write(res *Result, name string, data []byte) error {
	path, err := r.artifacts.Write(name, data)
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	res.Artifacts = append(res.Artifacts, path)
	return nil
}

func (r *Runner) record(res *Result, err error) {
	if r.recorder == nil {
		return
	}
	rec := store.RunRecord{
		ID:         res.ID,
		Kind:       store.KindBriefing,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Outcome:    "delivered",
		Artifacts:  res.Artifacts,
	}
	if err != nil {
		rec.Outcome = "failed"
		rec.Error = err.Error()
	}
	r.recorder.Save(rec)
}

// Caption is the one-line summary sent with the audio. Missing values use
// the lexicon's unknown sentinel.
func Caption(f script.Facts) string {
	n := speech.NewFormatter(f.Lex)
	return fmt.Sprintf("%s | now %s° | hi/lo %s/%s | rain %s%%",
		f.Place,
		n.Number(f.Current.Temp),
		n.Number(f.Today.TempMax),
		n.Number(f.Today.TempMin),
		n.Number(f.Today.PrecipProb))
}
