package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/i474232898/weather-voice/internal/upstream"
	"github.com/i474232898/weather-voice/internal/weather"
)

const visualCrossingBaseURL = "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline"

// VisualCrossingProvider implements the weather.Provider interface for the Visual Crossing timeline API.
type VisualCrossingProvider struct {
	name      string
	apiKey    string
	baseURL   string
	unitGroup string
	lang      string
	client    *upstream.Client
}

// VisualCrossingOptions configures NewVisualCrossingProvider.
type VisualCrossingOptions struct {
	APIKey    string
	UnitGroup string // us, metric, uk, base
	Lang      string
	Timeout   time.Duration
	BaseURL   string // defaults to the public endpoint
}

func NewVisualCrossingProvider(opts VisualCrossingOptions) *VisualCrossingProvider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = visualCrossingBaseURL
	}
	return &VisualCrossingProvider{
		name:      "visualcrossing",
		apiKey:    opts.APIKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		unitGroup: opts.UnitGroup,
		lang:      opts.Lang,
		client:    upstream.New("visualcrossing", opts.Timeout),
	}
}

func (p *VisualCrossingProvider) Name() string {
	return p.name
}

// Fetch requests today's timeline (daily records, current conditions and alerts) for location.
func (p *VisualCrossingProvider) Fetch(ctx context.Context, location string) (*weather.Report, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("visualcrossing api key is not configured")
	}
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("visualcrossing location is empty")
	}

	endpoint := fmt.Sprintf("%s/%s", p.baseURL, url.PathEscape(location))

	resp, err := p.client.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetQueryParams(map[string]string{
				"key":         p.apiKey,
				"contentType": "json",
				"unitGroup":   p.unitGroup,
				"include":     "days,current,alerts",
				"lang":        p.lang,
			}).
			Get(endpoint)
	})
	if err != nil {
		return nil, err
	}

	raw := resp.Body()
	var tl weather.Timeline
	if err := json.Unmarshal(raw, &tl); err != nil {
		return nil, fmt.Errorf("visualcrossing: decode timeline: %w", err)
	}

	return &weather.Report{Timeline: tl, Raw: raw}, nil
}
