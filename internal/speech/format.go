// Package speech renders weather values the way they should be read aloud.
//
// Values are never altered, only their surface form: a trailing ".0" is
// dropped, negative temperatures get a worded "below zero" form and missing
// values become the lexicon's unknown sentinel.
package speech

import (
	"fmt"
	"strconv"

	"github.com/i474232898/weather-voice/internal/weather"
)

// ComfortLevel is a coarse feel-like temperature band.
type ComfortLevel int

const (
	ComfortUnknown ComfortLevel = iota
	ComfortFreezing
	ComfortCold
	ComfortCool
	ComfortPleasant
	ComfortWarm
	ComfortHot
	ComfortOppressive
)

// UmbrellaLevel is how strongly an umbrella is recommended.
type UmbrellaLevel int

const (
	UmbrellaNone UmbrellaLevel = iota
	UmbrellaMaybe
	UmbrellaBring
)

// Formatter formats values with one lexicon.
type Formatter struct {
	Lex Lexicon
}

// NewFormatter returns a formatter for lex.
func NewFormatter(lex Lexicon) Formatter {
	return Formatter{Lex: lex}
}

// Number renders v without a trailing ".0"; nil is the unknown sentinel.
func (f Formatter) Number(v *float64) string {
	if v == nil {
		return f.Lex.Unknown
	}
	return formatFloat(*v)
}

// Temperature renders v, wording negatives as "below zero N".
func (f Formatter) Temperature(v *float64) string {
	if v == nil {
		return f.Lex.Unknown
	}
	if *v < 0 {
		return fmt.Sprintf(f.Lex.BelowZero, formatFloat(-*v))
	}
	return formatFloat(*v)
}

// ComfortLabel names the comfort band of feelsLike, or "" when unknown.
func (f Formatter) ComfortLabel(feelsLike *float64, unitGroup string) string {
	return f.Lex.Comfort[Comfort(feelsLike, unitGroup)]
}

// UmbrellaLabel phrases the umbrella hint, or "" when none is needed.
func (f Formatter) UmbrellaLabel(precipProb *float64, conditions string) string {
	return f.Lex.Umbrella[Umbrella(precipProb, weather.ClassifyConditions(conditions))]
}

// Comfort classifies a feels-like temperature. Bands are defined in °C;
// the "us" unit group reports °F and "base" reports kelvin.
func Comfort(feelsLike *float64, unitGroup string) ComfortLevel {
	if feelsLike == nil {
		return ComfortUnknown
	}
	c := *feelsLike
	switch unitGroup {
	case "us":
		c = (c - 32) * 5 / 9
	case "base":
		c -= 273.15
	}
	switch {
	case c < -10:
		return ComfortFreezing
	case c < 5:
		return ComfortCold
	case c < 15:
		return ComfortCool
	case c < 24:
		return ComfortPleasant
	case c < 30:
		return ComfortWarm
	case c < 35:
		return ComfortHot
	default:
		return ComfortOppressive
	}
}

// Umbrella decides the umbrella hint from precipitation probability (percent)
// and the day's condition.
func Umbrella(precipProb *float64, cond weather.Condition) UmbrellaLevel {
	switch {
	case precipProb != nil && *precipProb >= 60:
		return UmbrellaBring
	case cond.Wet():
		return UmbrellaBring
	case precipProb != nil && *precipProb >= 30:
		return UmbrellaMaybe
	default:
		return UmbrellaNone
	}
}

func formatFloat(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
