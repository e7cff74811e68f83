// Package telegram wraps the Bot API calls the briefing pipeline needs:
// webhook reset, zero-wait update polling, text messages and audio uploads.
package telegram

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DefaultEndpoint is the Bot API URL template (token, method).
const DefaultEndpoint = tgbotapi.APIEndpoint

// Update is the part of an inbound update the dispatcher inspects.
// ChatID is empty when the update carries no message or no chat.
type Update struct {
	ID     int64
	ChatID string
	Text   string
}

// Options configures New.
type Options struct {
	Token         string
	ChatID        int64
	Endpoint      string // defaults to DefaultEndpoint
	Timeout       time.Duration
	UploadTimeout time.Duration
}

// Client talks to one bot and one destination chat.
type Client struct {
	bot    *tgbotapi.BotAPI
	upload *tgbotapi.BotAPI
	chatID int64
}

// New connects to the Bot API. The token is verified with getMe.
func New(opts Options) (*Client, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(opts.Token, endpoint, &http.Client{Timeout: opts.Timeout})
	if err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", err)
	}

	// Same bot, longer deadline for multipart uploads.
	upload := *bot
	upload.Client = &http.Client{Timeout: opts.UploadTimeout}

	return &Client{
		bot:    bot,
		upload: &upload,
		chatID: opts.ChatID,
	}, nil
}

// ResetWebhook removes any push registration so getUpdates is not starved.
// Pending updates are kept.
func (c *Client) ResetWebhook() error {
	if _, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false}); err != nil {
		return fmt.Errorf("telegram deleteWebhook: %w", err)
	}
	return nil
}

// FetchUpdates returns every pending update with id >= offset, oldest first,
// without waiting on the server side.
func (c *Client) FetchUpdates(offset int64) ([]Update, error) {
	cfg := tgbotapi.NewUpdate(int(offset))
	cfg.Timeout = 0

	raw, err := c.bot.GetUpdates(cfg)
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates: %w", err)
	}

	updates := make([]Update, 0, len(raw))
	for _, u := range raw {
		updates = append(updates, convertUpdate(u))
	}
	return updates, nil
}

// SendText posts a plain text message to the configured chat.
func (c *Client) SendText(text string) error {
	if _, err := c.bot.Send(tgbotapi.NewMessage(c.chatID, text)); err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	return nil
}

// SendAudio uploads an audio file with a caption to the configured chat.
func (c *Client) SendAudio(path, caption string) error {
	audio := tgbotapi.NewAudio(c.chatID, tgbotapi.FilePath(path))
	audio.Caption = caption
	if _, err := c.upload.Send(audio); err != nil {
		return fmt.Errorf("telegram sendAudio: %w", err)
	}
	return nil
}

func convertUpdate(u tgbotapi.Update) Update {
	out := Update{ID: int64(u.UpdateID)}
	if u.Message == nil {
		return out
	}
	out.Text = u.Message.Text
	if u.Message.Chat != nil {
		out.ChatID = strconv.FormatInt(u.Message.Chat.ID, 10)
	}
	return out
}
