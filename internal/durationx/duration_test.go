package durationx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"5s", 5 * time.Second},
		{"5m", 5 * time.Minute},
		{"2h", 2 * time.Hour},
		{"1d", 24 * time.Hour},
		{"30", 30 * time.Second},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		assert.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "5w", "-5m", "abc", "1h30m"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("5m"))
	assert.False(t, Valid("1h30m"))
}
