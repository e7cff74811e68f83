package briefing

import (
	"context"
	"errors"

	"github.com/i474232898/weather-voice/internal/script"
	"github.com/i474232898/weather-voice/internal/upstream"
)

// Kind names the class of a run failure for the chat alert.
func Kind(err error) string {
	var upErr *upstream.Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &upErr), errors.Is(err, upstream.ErrCircuitOpen):
		return "UpstreamError"
	case errors.Is(err, script.ErrEmptyScript):
		return "EmptyScriptError"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "TimeoutError"
	default:
		return "Error"
	}
}
