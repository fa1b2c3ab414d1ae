// Package web holds the server-rendered page templates.
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/monocle-dev/roster/internal/authz"
	"github.com/monocle-dev/roster/internal/models"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"canManage": authz.CanManage,
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	"userName": func(u *models.User) string {
		if u == nil {
			return ""
		}
		return u.FullName()
	},
}

// Templates parses every page. Each page is addressed by its file name.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
}
