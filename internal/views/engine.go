// Package views holds the HTML pages. Every page is rendered inside
// layout.html, which places it with {{embed}}.
package views

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// DatetimeLayout is how timestamps are shown in lists.
const DatetimeLayout = "2006-01-02 15:04"

// New returns an engine over the bundled pages. Timestamps are shown in loc.
func New(loc *time.Location) *html.Engine {
	pages, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return NewFromFS(pages, loc)
}

// NewFromFS serves the *.html files at the root of pages. Page names are
// file names without the extension.
func NewFromFS(pages fs.FS, loc *time.Location) *html.Engine {
	engine := html.NewFileSystem(http.FS(pages), ".html")
	engine.AddFunc("datetime", func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.In(loc).Format(DatetimeLayout)
	})
	engine.AddFunc("year", func() int { return time.Now().In(loc).Year() })
	return engine
}
