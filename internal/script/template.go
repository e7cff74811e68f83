package script

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"github.com/i474232898/weather-voice/internal/speech"
)

const englishTemplate = `
{{- with .Alerts}}Weather alert: {{join "; " .}}.{{end}}
Good morning. Here is today's weather for {{.Place}}.
Right now it is {{temp .Current.Temp}} {{.TempUnit}}{{with .Current.Conditions}}, {{lower .}}{{end}}, and it feels like {{temp .Current.FeelsLike}}.
Today{{with .Today.Conditions}} looks {{lower .}}, with{{else}} expect{{end}} a high of {{temp .Today.TempMax}} and a low of {{temp .Today.TempMin}}.
The chance of precipitation is {{num .Today.PrecipProb}} percent.
Wind around {{num .Today.WindSpeed}} {{.WindUnit}}, gusting to {{num .Today.WindGust}}.
{{with .Comfort}}It will feel {{.}} outside.{{end}} {{.Umbrella}}
Have a good day.
`

const chineseTemplate = `
{{- with .Alerts}}预警：{{join "；" .}}。{{end}}
早上好，这里是{{.Place}}今日天气播报。
现在气温{{temp .Current.Temp}}{{.TempUnit}}{{with .Current.Conditions}}，{{.}}{{end}}，体感{{temp .Current.FeelsLike}}度。
今天{{with .Today.Conditions}}{{.}}，{{end}}最高气温{{temp .Today.TempMax}}度，最低{{temp .Today.TempMin}}度。
降水概率百分之{{num .Today.PrecipProb}}。
风速{{num .Today.WindSpeed}}{{.WindUnit}}，阵风{{num .Today.WindGust}}。
{{with .Comfort}}体感{{.}}。{{end}}{{.Umbrella}}
祝你今天愉快。
`

// TemplateRenderer renders a fixed per-language template. Numbers pass
// through speech formatting only.
type TemplateRenderer struct {
	tmpl   *template.Template
	format speech.Formatter
}

type templateData struct {
	Facts
	TempUnit string
	WindUnit string
	Comfort  string
	Umbrella string
}

// NewTemplateRenderer parses the template for lex.
func NewTemplateRenderer(lex speech.Lexicon) (*TemplateRenderer, error) {
	f := speech.NewFormatter(lex)
	src := englishTemplate
	if lex.Base() == "zh" {
		src = chineseTemplate
	}

	funcs := sprig.FuncMap()
	funcs["num"] = f.Number
	funcs["temp"] = f.Temperature

	tmpl, err := template.New("briefing").Funcs(funcs).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse briefing template: %w", err)
	}
	return &TemplateRenderer{tmpl: tmpl, format: f}, nil
}

func (r *TemplateRenderer) Name() string {
	return "template"
}

// Render executes the template. Blank lines are dropped and each line is trimmed.
func (r *TemplateRenderer) Render(_ context.Context, f Facts) (string, error) {
	data := templateData{
		Facts:    f,
		Comfort:  r.format.ComfortLabel(f.Current.FeelsLike, f.UnitGroup),
		Umbrella: r.format.UmbrellaLabel(f.Today.PrecipProb, f.Today.Conditions),
	}
	data.TempUnit, data.WindUnit = f.Units()

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render briefing template: %w", err)
	}

	lines := strings.Split(buf.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return "", ErrEmptyScript
	}
	return strings.Join(out, "\n"), nil
}
