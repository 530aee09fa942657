package counter

import (
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestParseIncrements(t *testing.T) {
	got := parseIncrements(map[string]string{
		"1":   "3",
		"2":   "0",
		"abc": "4",
		"4":   "x",
		"0":   "9",
		"7":   "-1",
		"12":  "10",
	})
	assert.Equal(t, map[uint]int64{1: 3, 12: 10}, got)
}

func TestIsNoSuchKey(t *testing.T) {
	assert.True(t, isNoSuchKey(errors.New("ERR no such key")))
	assert.True(t, isNoSuchKey(redis.Nil))
	assert.False(t, isNoSuchKey(errors.New("connection refused")))
}
