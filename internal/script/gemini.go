package script

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/i474232898/weather-voice/internal/speech"
	"github.com/i474232898/weather-voice/internal/upstream"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// Endpoint format: /models/{model}:generateContent
	generateContentPath = "/models/%s:generateContent"
)

// GeminiOptions configures NewGeminiRenderer.
type GeminiOptions struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	BaseURL string // defaults to the public v1beta endpoint
}

// GeminiRenderer rewrites the weather facts into a broadcast script with
// Gemini generateContent.
type GeminiRenderer struct {
	apiKey  string
	model   string
	baseURL string
	client  *upstream.Client
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

func NewGeminiRenderer(opts GeminiOptions) *GeminiRenderer {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = geminiBaseURL
	}
	return &GeminiRenderer{
		apiKey:  opts.APIKey,
		model:   opts.Model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  upstream.New("gemini", opts.Timeout),
	}
}

func (r *GeminiRenderer) Name() string {
	return "gemini"
}

// Prompt builds the broadcast prompt for f.
func (r *GeminiRenderer) Prompt(f Facts) string {
	return BuildPrompt(f)
}

// Render sends the prompt and returns the trimmed text of the first candidate.
func (r *GeminiRenderer) Render(ctx context.Context, f Facts) (string, error) {
	if r.apiKey == "" {
		return "", fmt.Errorf("gemini api key is not configured")
	}

	body := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: BuildPrompt(f)}}}},
	}
	endpoint := r.baseURL + fmt.Sprintf(generateContentPath, r.model)

	resp, err := r.client.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetHeader("x-goog-api-key", r.apiKey).
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			Post(endpoint)
	})
	if err != nil {
		return "", err
	}

	var out generateContentResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}

	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyScript
	}
	return text, nil
}

// BuildPrompt writes the facts into a prompt that asks for a plain spoken
// script. Units are stated so the model never has to guess them.
func BuildPrompt(f Facts) string {
	n := speech.NewFormatter(f.Lex)
	c, d := f.Current, f.Today
	cond := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return f.Lex.Unknown
		}
		return s
	}

	var sb strings.Builder
	if f.Lex.Base() == "zh" {
		sb.WriteString("你是天气语音播报编辑。只输出“播报正文”，不要标题、不要列表、不要markdown、不要解释。\n")
		sb.WriteString("长度：45~70秒中文口播。风格：电台主播，句子短，有节奏。\n")
		sb.WriteString("所有数字必须与下面的数据完全一致，不要换算，不要四舍五入。\n\n")
		fmt.Fprintf(&sb, "地点：%s\n", f.Place)
		fmt.Fprintf(&sb, "时区：%s\n", f.Timezone)
		sb.WriteString(f.unitHint() + "\n")
		if len(f.Alerts) > 0 {
			fmt.Fprintf(&sb, "预警：%s。\n", strings.Join(f.Alerts, "；"))
		}
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "当前：%s，%s°，体感%s°，风速%s，阵风%s。\n",
			cond(c.Conditions), n.Number(c.Temp), n.Number(c.FeelsLike), n.Number(c.WindSpeed), n.Number(c.WindGust))
		fmt.Fprintf(&sb, "今天：%s，最高%s°，最低%s°。\n", cond(d.Conditions), n.Number(d.TempMax), n.Number(d.TempMin))
		fmt.Fprintf(&sb, "降水概率%s%%；预计降水量%s；降雪%s；紫外线指数%s。\n",
			n.Number(d.PrecipProb), n.Number(d.Precip), n.Number(d.Snow), n.Number(d.UVIndex))
		fmt.Fprintf(&sb, "今天风速%s，阵风%s。\n\n", n.Number(d.WindSpeed), n.Number(d.WindGust))
		sb.WriteString("要求：必须包含（今天概况/最高最低/降水概率/风/出行建议）。如果有预警，必须在前半段提到。负数气温请读作“零下”。")
		return sb.String()
	}

	sb.WriteString("You are a weather radio editor. Output only the spoken script: no title, no lists, no markdown, no explanations.\n")
	sb.WriteString("Length: 45 to 70 seconds when read aloud. Style: radio host, short sentences, good rhythm.\n")
	sb.WriteString("Every number must match the data below exactly. Do not convert or round.\n\n")
	fmt.Fprintf(&sb, "Location: %s\n", f.Place)
	fmt.Fprintf(&sb, "Timezone: %s\n", f.Timezone)
	sb.WriteString(f.unitHint() + "\n")
	if len(f.Alerts) > 0 {
		fmt.Fprintf(&sb, "Alerts: %s.\n", strings.Join(f.Alerts, "; "))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Now: %s, %s°, feels like %s°, wind %s, gusts %s.\n",
		cond(c.Conditions), n.Number(c.Temp), n.Number(c.FeelsLike), n.Number(c.WindSpeed), n.Number(c.WindGust))
	fmt.Fprintf(&sb, "Today: %s, high %s°, low %s°.\n", cond(d.Conditions), n.Number(d.TempMax), n.Number(d.TempMin))
	fmt.Fprintf(&sb, "Precipitation probability %s%%; precipitation %s; snow %s; UV index %s.\n",
		n.Number(d.PrecipProb), n.Number(d.Precip), n.Number(d.Snow), n.Number(d.UVIndex))
	fmt.Fprintf(&sb, "Wind today %s, gusts %s.\n\n", n.Number(d.WindSpeed), n.Number(d.WindGust))
	sb.WriteString("Requirements: cover the overview, high and low, precipitation chance, wind and advice for going out. Mention any alert in the first half. Read negative temperatures as \"below zero\".")
	return sb.String()
}
