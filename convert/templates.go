package convert

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"pervade/config"
)

// Values holds the variables available for template expansion.
type Values struct {
	Context      string
	Title        string
	Author       string
	PenName      string
	Arc          int
	ArcTitle     string
	Chapter      int
	ChapterTitle string
	Mode         string
}

func buildTemplateValues(name config.TemplateFieldName, item planItem, cfg *config.Config) Values {
	return Values{
		Context:      string(name),
		Title:        cfg.Document.Title,
		Author:       cfg.Document.Author,
		PenName:      cfg.Document.PenName,
		Arc:          item.arc.Number,
		ArcTitle:     item.arc.Title,
		Chapter:      item.chapter.Number,
		ChapterTitle: item.chapter.Title,
		Mode:         cfg.Output.Mode.String(),
	}
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
