package services

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTTL = errors.New("invalid ttl")

var ttlPattern = regexp.MustCompile(`^(-?(?:\d+)?\.?\d+) *([a-z]+)?$`)

var ttlUnits = map[string]time.Duration{
	"ms": time.Millisecond, "msec": time.Millisecond, "msecs": time.Millisecond,
	"millisecond": time.Millisecond, "milliseconds": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
	"y": 8766 * time.Hour, "yr": 8766 * time.Hour, "yrs": 8766 * time.Hour, "year": 8766 * time.Hour, "years": 8766 * time.Hour,
}

// ParseTTL parses compact durations such as "15m", "7d", "1.5h" or "500".
// A number without a unit is read as milliseconds; a year is 365.25 days.
func ParseTTL(ttl string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(ttl))
	if s == "" || len(s) > 100 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, ttl)
	}

	m := ttlPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, ttl)
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, ttl)
	}

	unit := time.Millisecond
	if m[2] != "" {
		u, ok := ttlUnits[m[2]]
		if !ok {
			return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidTTL, m[2])
		}
		unit = u
	}

	d := n * float64(unit)
	if math.Abs(d) >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidTTL, ttl)
	}
	return time.Duration(d), nil
}

// cookieMaxAge turns a TTL into a cookie lifetime. Zero means the TTL has no
// usable duration and the cookie should be a session cookie.
func cookieMaxAge(ttl string) time.Duration {
	d, err := ParseTTL(ttl)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}
