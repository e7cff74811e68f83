package script

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/i474232898/weather-voice/internal/speech"
	"github.com/i474232898/weather-voice/internal/weather"
)

var numberToken = regexp.MustCompile(`\d+(?:\.\d+)?`)

// CheckNumbers reports ErrNumericDrift when script contains a number that
// is not the spoken form of a weather value, or does not appear in a place,
// alert or date of the facts. Signs are ignored since negatives are worded.
func CheckNumbers(script string, f Facts) error {
	allowed := allowedNumbers(f)
	var drift []string
	for _, tok := range numberToken.FindAllString(script, -1) {
		if _, ok := allowed[normalizeToken(tok)]; !ok {
			drift = append(drift, tok)
		}
	}
	if len(drift) > 0 {
		return fmt.Errorf("%w: %s", ErrNumericDrift, strings.Join(lo.Uniq(drift), ", "))
	}
	return nil
}

func allowedNumbers(f Facts) map[string]struct{} {
	n := speech.NewFormatter(f.Lex)
	allowed := map[string]struct{}{}

	for _, v := range f.Values() {
		if v == nil {
			continue
		}
		abs := math.Abs(*v)
		allowed[n.Number(&abs)] = struct{}{}
	}

	texts := append([]string{
		f.Place, f.Timezone, f.Current.Conditions, f.Today.Conditions, f.Today.Description,
	}, f.Alerts...)
	for _, s := range texts {
		for _, tok := range numberToken.FindAllString(s, -1) {
			allowed[normalizeToken(tok)] = struct{}{}
		}
	}

	if d, err := time.Parse(weather.DateLayout, f.Today.Datetime); err == nil {
		for _, v := range []int{d.Year(), int(d.Month()), d.Day()} {
			allowed[strconv.Itoa(v)] = struct{}{}
		}
	}
	return allowed
}

// normalizeToken strips leading zeros and a zero fraction so "07" and
// "7.0" compare equal to "7".
func normalizeToken(tok string) string {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return tok
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
