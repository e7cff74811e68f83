package speech

import (
	"golang.org/x/text/language"
)

// Lexicon holds the fixed phrases spoken or sent in one language.
type Lexicon struct {
	Tag       language.Tag
	Unknown   string
	BelowZero string // fmt pattern taking the absolute value
	Comfort   map[ComfortLevel]string
	Umbrella  map[UmbrellaLevel]string
	Ack       string
	Failure   string // fmt pattern taking error kind and message

	// AlertFallback names an alert that has neither headline nor event.
	AlertFallback string
}

var English = Lexicon{
	Tag:       language.English,
	Unknown:   "unknown",
	BelowZero: "below zero %s",
	Comfort: map[ComfortLevel]string{
		ComfortUnknown:    "",
		ComfortCold:       "cold",
		ComfortCool:       "cool",
		ComfortPleasant:   "comfortable",
		ComfortWarm:       "warm",
		ComfortHot:        "hot",
		ComfortFreezing:   "freezing",
		ComfortOppressive: "sweltering",
	},
	Umbrella: map[UmbrellaLevel]string{
		UmbrellaNone:  "",
		UmbrellaMaybe: "Consider carrying a compact umbrella.",
		UmbrellaBring: "Bring an umbrella.",
	},
	Ack:     "Got it, preparing your weather briefing…",
	Failure: "⚠️ Weather briefing failed: %s: %s",

	AlertFallback: "weather alert",
}

var Chinese = Lexicon{
	Tag:       language.SimplifiedChinese,
	Unknown:   "未知",
	BelowZero: "零下%s",
	Comfort: map[ComfortLevel]string{
		ComfortUnknown:    "",
		ComfortCold:       "寒冷",
		ComfortCool:       "微凉",
		ComfortPleasant:   "舒适",
		ComfortWarm:       "温暖",
		ComfortHot:        "炎热",
		ComfortFreezing:   "严寒",
		ComfortOppressive: "酷热",
	},
	Umbrella: map[UmbrellaLevel]string{
		UmbrellaNone:  "",
		UmbrellaMaybe: "出门可以备一把折叠伞。",
		UmbrellaBring: "出门记得带伞。",
	},
	Ack:     "收到，正在生成天气播报…",
	Failure: "⚠️ 天气播报失败：%s: %s",

	AlertFallback: "天气预警",
}

// LexiconFor picks the lexicon for a language code such as "zh", "zh-CN" or "en".
// Unknown or unparsable codes get English.
func LexiconFor(code string) Lexicon {
	tag, err := language.Parse(code)
	if err != nil {
		return English
	}
	base, _ := tag.Base()
	if base.String() == "zh" {
		return Chinese
	}
	return English
}

// Base returns the lexicon's base language code, such as "en" or "zh".
func (l Lexicon) Base() string {
	base, _ := l.Tag.Base()
	return base.String()
}
