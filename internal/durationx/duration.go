// Package durationx parses the NodeGuardian duration grammar: <int>[s|m|h|d],
// no compound forms. This is deliberately narrower than time.ParseDuration,
// which accepts compound forms like "1h30m" that this grammar excludes.
package durationx

import (
	"fmt"
	"strconv"
	"time"
)

var unitSeconds = map[byte]int64{
	's': 1,
	'm': 60,
	'h': 3600,
	'd': 86400,
}

// Parse converts a duration string of the form <int>[s|m|h|d] to a
// time.Duration. A bare integer is interpreted as seconds.
func Parse(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("durationx: empty duration")
	}
	last := s[len(s)-1]
	if mult, ok := unitSeconds[last]; ok {
		n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("durationx: invalid duration %q: %w", s, err)
		}
		if n < 0 {
			return 0, fmt.Errorf("durationx: negative duration %q", s)
		}
		return time.Duration(n*mult) * time.Second, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("durationx: invalid duration %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("durationx: negative duration %q", s)
	}
	return time.Duration(n) * time.Second, nil
}

// Valid reports whether s parses under the grammar.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}
