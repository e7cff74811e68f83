package weather

import (
	"strings"

	"github.com/i474232898/weather-voice/internal/common"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Timeline is the Visual Crossing timeline document, reduced to the fields
// the briefing reads. Numeric fields are pointers because the provider
// returns null for values it does not know.
type Timeline struct {
	ResolvedAddress   string      `json:"resolvedAddress"`
	Address           string      `json:"address"`
	Timezone          string      `json:"timezone"`
	CurrentConditions *Conditions `json:"currentConditions"`
	Days              []Day       `json:"days"`
	Alerts            []Alert     `json:"alerts"`
}

// Conditions holds the "currentConditions" block.
type Conditions struct {
	Datetime   string   `json:"datetime"`
	Conditions string   `json:"conditions"`
	Temp       *float64 `json:"temp"`
	FeelsLike  *float64 `json:"feelslike"`
	Humidity   *float64 `json:"humidity"`
	WindSpeed  *float64 `json:"windspeed"`
	WindGust   *float64 `json:"windgust"`
	PrecipProb *float64 `json:"precipprob"`
	UVIndex    *float64 `json:"uvindex"`
}

// Day is one entry of "days"; Datetime is the local ISO date (2006-01-02).
type Day struct {
	Datetime    string   `json:"datetime"`
	Conditions  string   `json:"conditions"`
	Description string   `json:"description"`
	TempMax     *float64 `json:"tempmax"`
	TempMin     *float64 `json:"tempmin"`
	Temp        *float64 `json:"temp"`
	FeelsLike   *float64 `json:"feelslike"`
	Humidity    *float64 `json:"humidity"`
	Precip      *float64 `json:"precip"`
	PrecipProb  *float64 `json:"precipprob"`
	Snow        *float64 `json:"snow"`
	UVIndex     *float64 `json:"uvindex"`
	WindSpeed   *float64 `json:"windspeed"`
	WindGust    *float64 `json:"windgust"`
}

// Alert is an advisory record.
type Alert struct {
	Headline string `json:"headline"`
	Event    string `json:"event"`
}

// Title returns the headline, falling back to the event name.
func (a Alert) Title() string {
	if h := strings.TrimSpace(a.Headline); h != "" {
		return h
	}
	return strings.TrimSpace(a.Event)
}

// Current returns the current conditions block, or an empty one.
func (t *Timeline) Current() Conditions {
	if t == nil || t.CurrentConditions == nil {
		return Conditions{}
	}
	return *t.CurrentConditions
}

// Place returns the resolved address, falling back to fallback.
func (t *Timeline) Place(fallback string) string {
	if t != nil && strings.TrimSpace(t.ResolvedAddress) != "" {
		return t.ResolvedAddress
	}
	return fallback
}

// ClassifyConditions maps a (possibly localized) conditions text to a Condition.
func ClassifyConditions(text string) Condition {
	s := strings.ToLower(text)
	switch {
	case s == "":
		return ConditionUnknown
	case common.HasAny(s, "thunder", "storm", "雷"):
		return ConditionStorm
	case common.HasAny(s, "snow", "sleet", "freezing", "雪", "冰"):
		return ConditionSnow
	case common.HasAny(s, "rain", "shower", "drizzle", "雨"):
		return ConditionRain
	case common.HasAny(s, "fog", "mist", "haze", "雾", "霾"):
		return ConditionMist
	case common.HasAny(s, "cloud", "overcast", "云", "阴"):
		return ConditionCloudy
	case common.HasAny(s, "clear", "sunny", "晴"):
		return ConditionClear
	default:
		return ConditionUnknown
	}
}

// Wet reports whether the condition usually calls for an umbrella.
func (c Condition) Wet() bool {
	return c == ConditionRain || c == ConditionSnow || c == ConditionStorm
}
