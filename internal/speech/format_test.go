package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/i474232898/weather-voice/internal/weather"
)

func f64(v float64) *float64 { return &v }

func TestTemperature(t *testing.T) {
	en := NewFormatter(English)

	assert.Equal(t, "below zero 3", en.Temperature(f64(-3)))
	assert.Equal(t, "below zero 2.5", en.Temperature(f64(-2.5)))
	assert.Equal(t, "3", en.Temperature(f64(3.0)))
	assert.Equal(t, "0", en.Temperature(f64(0)))
	assert.Equal(t, "unknown", en.Temperature(nil))

	zh := NewFormatter(Chinese)
	assert.Equal(t, "零下3", zh.Temperature(f64(-3)))
	assert.Equal(t, "未知", zh.Temperature(nil))
}

func TestNumber(t *testing.T) {
	en := NewFormatter(English)

	assert.Equal(t, "3", en.Number(f64(3.0)))
	assert.Equal(t, "2.5", en.Number(f64(2.50)))
	assert.Equal(t, "38.1", en.Number(f64(38.1)))
	assert.Equal(t, "-3", en.Number(f64(-3)), "plain numbers keep their sign")
	assert.Equal(t, "0", en.Number(f64(-0.0)))
	assert.Equal(t, "unknown", en.Number(nil))
}

func TestComfort(t *testing.T) {
	tests := []struct {
		v    *float64
		unit string
		want ComfortLevel
	}{
		{nil, "metric", ComfortUnknown},
		{f64(-15), "metric", ComfortFreezing},
		{f64(0), "metric", ComfortCold},
		{f64(10), "metric", ComfortCool},
		{f64(20), "metric", ComfortPleasant},
		{f64(27), "metric", ComfortWarm},
		{f64(32), "metric", ComfortHot},
		{f64(40), "metric", ComfortOppressive},
		{f64(68), "us", ComfortPleasant}, // 20°C
		{f64(32), "us", ComfortCold},     // 0°C
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Comfort(tt.v, tt.unit), "%v %s", tt.v, tt.unit)
	}
}

func TestUmbrella(t *testing.T) {
	assert.Equal(t, UmbrellaBring, Umbrella(f64(80), weather.ConditionClear))
	assert.Equal(t, UmbrellaBring, Umbrella(f64(60), weather.ConditionClear))
	assert.Equal(t, UmbrellaBring, Umbrella(f64(5), weather.ConditionRain))
	assert.Equal(t, UmbrellaBring, Umbrella(nil, weather.ConditionSnow))
	assert.Equal(t, UmbrellaMaybe, Umbrella(f64(30), weather.ConditionCloudy))
	assert.Equal(t, UmbrellaNone, Umbrella(f64(29.9), weather.ConditionCloudy))
	assert.Equal(t, UmbrellaNone, Umbrella(nil, weather.ConditionUnknown))
}

func TestLabels(t *testing.T) {
	en := NewFormatter(English)
	assert.Equal(t, "comfortable", en.ComfortLabel(f64(20), "metric"))
	assert.Equal(t, "", en.ComfortLabel(nil, "metric"))
	assert.Equal(t, "Bring an umbrella.", en.UmbrellaLabel(f64(10), "Rain, Overcast"))
	assert.Equal(t, "", en.UmbrellaLabel(f64(10), "Clear"))

	zh := NewFormatter(Chinese)
	assert.Equal(t, "出门记得带伞。", zh.UmbrellaLabel(nil, "小雨"))
}

func TestLexiconFor(t *testing.T) {
	assert.Equal(t, "未知", LexiconFor("zh").Unknown)
	assert.Equal(t, "未知", LexiconFor("zh-CN").Unknown)
	assert.Equal(t, "未知", LexiconFor("zh-TW").Unknown)
	assert.Equal(t, "unknown", LexiconFor("en").Unknown)
	assert.Equal(t, "unknown", LexiconFor("de").Unknown)
	assert.Equal(t, "unknown", LexiconFor("not a tag!").Unknown)
}
