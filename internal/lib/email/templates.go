package email

import (
	"embed"
	"html/template"
	"time"
)

// Template names an HTML file under templates/.
type Template string

const (
	TemplateDigest Template = "digest"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04 MST")
	},
	"comment": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

var templates = template.Must(template.New("emails").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
