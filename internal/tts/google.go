// Package tts synthesizes speech with the Google Translate TTS endpoint.
package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-voice/internal/upstream"
)

const (
	// Legacy translate_tts GET endpoint with client=tw-ob, not the
	// batchexecute RPC.
	googleTTSURL = "https://translate.google.com/translate_tts"
	// MaxChunk is the longest text, in runes, the endpoint accepts per request.
	MaxChunk = 100
)

// Synthesizer renders text to an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, path string) error
}

// GoogleOptions configures NewGoogle.
type GoogleOptions struct {
	Lang    string // BCP 47 tag, e.g. zh-CN
	Timeout time.Duration
	BaseURL string
}

// Google is a Synthesizer backed by translate_tts. Long text is sent in
// chunks and the MP3 responses are concatenated.
type Google struct {
	lang    string
	baseURL string
	client  *upstream.Client
}

// NewGoogle validates the language tag and returns a synthesizer.
func NewGoogle(opts GoogleOptions) (*Google, error) {
	tag, err := language.Parse(opts.Lang)
	if err != nil {
		return nil, fmt.Errorf("tts language %q: %w", opts.Lang, err)
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = googleTTSURL
	}
	return &Google{
		lang:    tag.String(),
		baseURL: baseURL,
		client:  upstream.New("tts", opts.Timeout),
	}, nil
}

// Lang returns the canonical language tag sent upstream.
func (g *Google) Lang() string {
	return g.lang
}

// Synthesize writes the MP3 for text to path. The file is written only when
// every chunk succeeded.
func (g *Google) Synthesize(ctx context.Context, text, path string) error {
	chunks := SplitText(text, MaxChunk)
	if len(chunks) == 0 {
		return fmt.Errorf("tts: nothing to synthesize")
	}

	var audio []byte
	for i, chunk := range chunks {
		resp, err := g.client.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
			return req.
				SetQueryParams(map[string]string{
					"ie":      "UTF-8",
					"q":       chunk,
					"tl":      g.lang,
					"client":  "tw-ob",
					"total":   strconv.Itoa(len(chunks)),
					"idx":     strconv.Itoa(i),
					"textlen": strconv.Itoa(utf8.RuneCountInString(chunk)),
				}).
				Get(g.baseURL)
		})
		if err != nil {
			return fmt.Errorf("tts chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if len(resp.Body()) == 0 {
			return fmt.Errorf("tts chunk %d/%d: empty audio", i+1, len(chunks))
		}
		audio = append(audio, resp.Body()...)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("tts: create output dir: %w", err)
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return fmt.Errorf("tts: write %s: %w", path, err)
	}
	return nil
}

// SplitText cuts text into chunks of at most limit runes, preferring to cut
// after sentence punctuation, then after any other punctuation or space.
// Runes are never split, a decimal point or digit separator never ends a
// chunk, and chunks are trimmed; empty chunks are dropped.
func SplitText(text string, limit int) []string {
	runes := []rune(strings.TrimSpace(text))
	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = appendChunk(chunks, runes)
			break
		}
		cut := breakPoint(runes, limit)
		chunks = appendChunk(chunks, runes[:cut])
		runes = runes[cut:]
	}
	return chunks
}

func appendChunk(chunks []string, r []rune) []string {
	if s := strings.TrimSpace(string(r)); s != "" {
		return append(chunks, s)
	}
	return chunks
}

// breakPoint returns the index just past the best break in runes[:limit],
// or limit when there is none. runes must be longer than limit.
func breakPoint(runes []rune, limit int) int {
	weak := -1
	for i := limit - 1; i > 0; i-- {
		r := runes[i]
		if inNumber(runes, i) {
			continue
		}
		if (strings.ContainsRune(".!?;", r) && unicode.IsSpace(runes[i+1])) ||
			strings.ContainsRune("。！？；\n", r) {
			return i + 1
		}
		if weak < 0 && (unicode.IsSpace(r) || unicode.IsPunct(r)) {
			weak = i + 1
		}
	}
	if weak > 0 {
		return weak
	}
	return limit
}

// inNumber reports whether runes[i] is a '.' or ',' between two digits.
func inNumber(runes []rune, i int) bool {
	if runes[i] != '.' && runes[i] != ',' {
		return false
	}
	return i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1])
}
