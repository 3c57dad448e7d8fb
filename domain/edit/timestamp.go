package edit

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Timestamp is a position in a video, in seconds
type Timestamp float64

// timestampRegex matches SS, MM:SS or HH:MM:SS, each with an optional fraction
var timestampRegex = regexp.MustCompile(`^(?:(?:(\d+):)?(\d+):)?(\d+(?:\.\d+)?)$`)

// ParseTimestamp parses "90", "90.5", "1:30.5" or "00:01:30.5"
func ParseTimestamp(s string) (Timestamp, error) {
	matches := timestampRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid timestamp format %q: expected SS, MM:SS or HH:MM:SS", s)
	}

	var hours, minutes int
	if matches[1] != "" {
		hours, _ = strconv.Atoi(matches[1])
	}
	if matches[2] != "" {
		minutes, _ = strconv.Atoi(matches[2])
	}
	seconds, _ := strconv.ParseFloat(matches[3], 64)

	// A bare seconds value may exceed 59; a clock-style one may not.
	if matches[2] != "" {
		if seconds >= 60 {
			return 0, fmt.Errorf("invalid timestamp %q: seconds must be 0-59", s)
		}
		if matches[1] != "" && minutes > 59 {
			return 0, fmt.Errorf("invalid timestamp %q: minutes must be 0-59", s)
		}
	}

	return Timestamp(float64(hours*3600+minutes*60) + seconds), nil
}

// Seconds returns the timestamp as a float
func (t Timestamp) Seconds() float64 {
	return float64(t)
}

// String renders m:ss:cc (minutes, seconds, centiseconds), the slider label format
func (t Timestamp) String() string {
	c := int(math.Round(math.Max(0, float64(t)) * 100))
	return fmt.Sprintf("%d:%02d:%02d", c/6000, c/100%60, c%100)
}

// FormatSeconds renders seconds the way ffmpeg option values expect them:
// plain decimal, millisecond precision, no trailing zeros.
func FormatSeconds(v float64) string {
	return strconv.FormatFloat(roundMillis(v), 'f', -1, 64)
}

func roundMillis(v float64) float64 {
	return math.Round(v*1000) / 1000
}
