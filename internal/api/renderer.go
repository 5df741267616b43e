package api

import (
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/yash-miyani/natours/web/templates"
)

// viewRenderer satisfies echo.Renderer over the embedded view templates.
type viewRenderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates once at startup.
func NewRenderer() (echo.Renderer, error) {
	t, err := template.ParseFS(templates.FS, "*.html")
	if err != nil {
		return nil, err
	}
	return &viewRenderer{templates: t}, nil
}

func (r *viewRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
