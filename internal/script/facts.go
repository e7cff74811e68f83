// Package script turns a weather snapshot into the text that is read aloud.
package script

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"github.com/i474232898/weather-voice/internal/speech"
	"github.com/i474232898/weather-voice/internal/weather"
)

// maxAlerts is how many alerts a briefing mentions.
const maxAlerts = 2

var (
	// ErrEmptyScript is returned when a renderer produces no text.
	ErrEmptyScript = errors.New("generated script is empty")
	// ErrNumericDrift is returned when a script carries a number that is not in the weather data.
	ErrNumericDrift = errors.New("script contains numbers not present in the weather data")
)

// Renderer produces a spoken script from facts.
type Renderer interface {
	Name() string
	Render(ctx context.Context, f Facts) (string, error)
}

// Prompter is implemented by renderers that send a prompt upstream.
type Prompter interface {
	Prompt(f Facts) string
}

// Facts is everything a script may say.
type Facts struct {
	Place     string
	Timezone  string
	UnitGroup string
	Current   weather.Conditions
	Today     weather.Day
	Alerts    []string

	Lex speech.Lexicon
}

// NewFacts collects the facts for today. fallbackPlace and fallbackZone are
// used when the timeline does not resolve them.
func NewFacts(tl *weather.Timeline, today weather.Day, lex speech.Lexicon, unitGroup, fallbackPlace, fallbackZone string) Facts {
	f := Facts{
		Place:     tl.Place(fallbackPlace),
		Timezone:  fallbackZone,
		UnitGroup: unitGroup,
		Current:   tl.Current(),
		Today:     today,
		Lex:       lex,
	}
	if tl == nil {
		return f
	}
	if tl.Timezone != "" {
		f.Timezone = tl.Timezone
	}
	f.Alerts = lo.Map(lo.Slice(tl.Alerts, 0, maxAlerts), func(a weather.Alert, _ int) string {
		if t := a.Title(); t != "" {
			return t
		}
		return lex.AlertFallback
	})
	return f
}

// Values returns every numeric fact that a script may mention.
func (f Facts) Values() []*float64 {
	c, d := f.Current, f.Today
	return []*float64{
		c.Temp, c.FeelsLike, c.Humidity, c.WindSpeed, c.WindGust, c.PrecipProb, c.UVIndex,
		d.TempMax, d.TempMin, d.Temp, d.FeelsLike, d.Humidity, d.Precip, d.PrecipProb,
		d.Snow, d.UVIndex, d.WindSpeed, d.WindGust,
	}
}

// Units returns the spoken temperature and wind units for the facts' unit group.
func (f Facts) Units() (temp, wind string) {
	zh := f.Lex.Base() == "zh"
	switch f.UnitGroup {
	case "us":
		if zh {
			return "华氏度", "英里每小时"
		}
		return "degrees Fahrenheit", "miles per hour"
	case "uk":
		if zh {
			return "摄氏度", "英里每小时"
		}
		return "degrees Celsius", "miles per hour"
	case "base":
		if zh {
			return "开尔文", "米每秒"
		}
		return "kelvin", "meters per second"
	default:
		if zh {
			return "摄氏度", "公里每小时"
		}
		return "degrees Celsius", "kilometers per hour"
	}
}

// unitHint is the fixed unit statement placed in prompts.
func (f Facts) unitHint() string {
	zh := f.Lex.Base() == "zh"
	switch f.UnitGroup {
	case "us":
		if zh {
			return "温度单位：华氏°F；风速单位：mph。"
		}
		return "Temperature unit: °F; wind speed unit: mph."
	case "uk":
		if zh {
			return "温度单位：摄氏°C；风速单位：mph。"
		}
		return "Temperature unit: °C; wind speed unit: mph."
	case "base":
		if zh {
			return "温度单位：开尔文K；风速单位：m/s。"
		}
		return "Temperature unit: K; wind speed unit: m/s."
	default:
		if zh {
			return "温度单位：摄氏°C；风速单位：km/h。"
		}
		return "Temperature unit: °C; wind speed unit: km/h."
	}
}
