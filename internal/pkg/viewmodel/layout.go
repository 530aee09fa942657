package viewmodel

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/usercontext"
)

// Layout is the data every page template receives as .Layout.
type Layout struct {
	Page         string
	Title        string
	User         usercontext.UserContext
	Msg          fiber.Map
	CSRF         string
	Unread       int64
	OAuthEnabled bool
	IsDev        bool
}

// HasFlash reports whether a flash message is pending.
func (l Layout) HasFlash() bool {
	_, ok := l.Msg["message"]
	return ok
}

// FlashType returns the flash type, e.g. error or success.
func (l Layout) FlashType() string {
	if t, ok := l.Msg["type"].(string); ok {
		return t
	}
	return "info"
}

// Pager describes page links for list views.
type Pager struct {
	Page  int
	Pages int
}

func (p Pager) HasPrev() bool { return p.Page > 1 }
func (p Pager) HasNext() bool { return p.Page < p.Pages }
func (p Pager) Prev() int     { return p.Page - 1 }
func (p Pager) Next() int     { return p.Page + 1 }
