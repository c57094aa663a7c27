package upload

import (
	"embed"
	"html/template"
	"io"

	"github.com/dustin/go-humanize"
)

//go:embed templates
var templatesFS embed.FS

var formTemplate = template.Must(
	template.New("upload_form.html").
		Funcs(template.FuncMap{
			"bytes": func(n int64) string { return humanize.Bytes(uint64(n)) },
		}).
		ParseFS(templatesFS, "templates/upload_form.html"),
)

type formData struct {
	Files   []string
	Message string
	MaxSize int64
}

func renderForm(w io.Writer, data formData) error {
	return formTemplate.Execute(w, data)
}
