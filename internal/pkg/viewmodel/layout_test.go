package viewmodel

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestLayoutFlash(t *testing.T) {
	assert.False(t, Layout{}.HasFlash())
	l := Layout{Msg: fiber.Map{"type": "error", "message": "nope"}}
	assert.True(t, l.HasFlash())
	assert.Equal(t, "error", l.FlashType())
	assert.Equal(t, "info", Layout{Msg: fiber.Map{"message": "x"}}.FlashType())
}

func TestPager(t *testing.T) {
	p := Pager{Page: 2, Pages: 3}
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Equal(t, 1, p.Prev())
	assert.Equal(t, 3, p.Next())
	assert.False(t, Pager{Page: 1, Pages: 1}.HasNext())
}
