// Package views holds the HTML templates rendered by the page controllers.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/utils"
)

//go:embed *.html layouts partials auth listings offers messages billing
var FS embed.FS

// Funcs are the helpers available in every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"money": func(cents int64, currency string) string {
			return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
		"datetime": func(t time.Time) string {
			return t.Format("02 Jan 2006 15:04")
		},
		"add":    func(a, b int) int { return a + b },
		"avatar": utils.AvatarURL,
	}
}
