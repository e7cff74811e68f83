// Package dispatch turns "weather" commands sent to the bot into briefing runs.
//
// One Cycle is: reset webhook, fetch updates since the saved cursor, persist
// max(update_id)+1, and, if any update in the batch was a recognized command
// from the authorized chat, acknowledge it and invoke the briefing once.
// The cursor is saved before the briefing runs so a crash cannot replay it.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/i474232898/weather-voice/internal/cursor"
	"github.com/i474232898/weather-voice/internal/metrics"
	"github.com/i474232898/weather-voice/internal/telegram"
)

// Messenger is the subset of the Telegram client the dispatcher uses.
type Messenger interface {
	ResetWebhook() error
	FetchUpdates(offset int64) ([]telegram.Update, error)
	SendText(text string) error
}

// CursorStore persists the update offset.
type CursorStore interface {
	LoadOrZero(logger *slog.Logger) int64
	Save(v int64) error
	Lock() (func(), error)
}

// Result summarizes one dispatch cycle.
type Result struct {
	Skipped        bool // another dispatcher held the cursor lock
	Fetched        int
	PreviousCursor int64
	Cursor         int64
	Triggered      bool
	ExitCode       int
}

// Outcome is a short label for logs and metrics.
func (r Result) Outcome() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Fetched == 0:
		return "empty"
	case r.Triggered:
		return "triggered"
	default:
		return "advanced"
	}
}

// Dispatcher is the trigger state machine.
type Dispatcher struct {
	messenger      Messenger
	cursor         CursorStore
	invoker        TaskInvoker
	authorizedChat string
	ackText        string
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

// Options configures New.
type Options struct {
	AuthorizedChat string
	AckText        string
	Metrics        *metrics.Metrics
}

// New creates a Dispatcher.
func New(messenger Messenger, store CursorStore, invoker TaskInvoker, logger *slog.Logger, opts Options) *Dispatcher {
	return &Dispatcher{
		messenger:      messenger,
		cursor:         store,
		invoker:        invoker,
		authorizedChat: opts.AuthorizedChat,
		ackText:        opts.AckText,
		logger:         logger,
		metrics:        opts.Metrics,
	}
}

// Cycle runs one IDLE → POLLING → ... → IDLE pass.
// It returns an error only when the cursor could not be persisted, in which
// case no briefing is triggered.
func (d *Dispatcher) Cycle(ctx context.Context) (Result, error) {
	var res Result

	unlock, err := d.cursor.Lock()
	if err != nil {
		if errors.Is(err, cursor.ErrLocked) {
			d.logger.Info("another dispatcher holds the cursor; skipping cycle")
			res.Skipped = true
			d.metrics.PollCycle(res.Outcome(), 0, 0, false)
			return res, nil
		}
		return res, err
	}
	defer unlock()

	if err := d.messenger.ResetWebhook(); err != nil {
		d.logger.Warn("webhook reset failed; polling anyway", "error", err)
	}

	res.PreviousCursor = d.cursor.LoadOrZero(d.logger)
	res.Cursor = res.PreviousCursor

	updates, err := d.messenger.FetchUpdates(res.PreviousCursor)
	if err != nil {
		d.logger.Warn("fetching updates failed; treating as empty", "offset", res.PreviousCursor, "error", err)
		updates = nil
	}
	if len(updates) == 0 {
		d.logger.Debug("no pending updates", "offset", res.PreviousCursor)
		d.metrics.PollCycle(res.Outcome(), 0, res.Cursor, false)
		return res, nil
	}
	res.Fetched = len(updates)

	maxID := updates[0].ID
	for _, u := range updates {
		if u.ID > maxID {
			maxID = u.ID
		}
		if IsTrigger(u, d.authorizedChat) {
			res.Triggered = true
			d.logger.Info("trigger detected", "update_id", u.ID)
		} else {
			d.logger.Debug("ignoring update", "update_id", u.ID, "chat_id", u.ChatID)
		}
	}

	next := maxID + 1
	if next < res.PreviousCursor {
		// The provider never returns ids below the offset; keep the cursor monotonic regardless.
		next = res.PreviousCursor
	}
	if err := d.cursor.Save(next); err != nil {
		d.metrics.PollCycle("save_failed", res.Fetched, res.Cursor, false)
		return res, fmt.Errorf("failed to persist cursor %d: %w", next, err)
	}
	res.Cursor = next
	d.logger.Info("cursor advanced", "from", res.PreviousCursor, "to", next, "fetched", res.Fetched)

	if res.Triggered {
		if d.ackText != "" {
			if err := d.messenger.SendText(d.ackText); err != nil {
				d.logger.Warn("acknowledgement failed", "error", err)
			}
		}

		code, err := d.invoker.Invoke(ctx)
		res.ExitCode = code
		if err != nil {
			d.logger.Error("briefing could not be started", "error", err)
		} else {
			d.logger.Info("briefing finished", "exit_code", code)
		}
	}

	d.metrics.PollCycle(res.Outcome(), res.Fetched, res.Cursor, res.Triggered)
	return res, nil
}
