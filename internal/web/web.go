// Package web содержит HTML-шаблоны страниц анкеты, входа и списка кандидатов.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates разбирает встроенные шаблоны. Имена шаблонов совпадают с именами файлов.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}
