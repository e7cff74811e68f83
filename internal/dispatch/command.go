package dispatch

import (
	"strings"

	"github.com/samber/lo"

	"github.com/i474232898/weather-voice/internal/telegram"
)

// Commands are the exact normalized texts that trigger a briefing.
var Commands = []string{"weather", "w"}

// NormalizeCommand trims, lowercases and strips one leading "/".
func NormalizeCommand(text string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(text)), "/")
}

// IsTrigger reports whether u is a recognized command from the authorized chat.
// Updates without a chat never match.
func IsTrigger(u telegram.Update, authorizedChat string) bool {
	if u.ChatID == "" || u.ChatID != authorizedChat {
		return false
	}
	return lo.Contains(Commands, NormalizeCommand(u.Text))
}
