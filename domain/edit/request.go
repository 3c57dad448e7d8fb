package edit

import (
	"fmt"
	"math"
	"strconv"
)

// Accepted parameter bounds
const (
	MinSpeed = 0.25
	MaxSpeed = 16.0
	MinFPS   = 1
	MaxFPS   = 240
)

// Rotation is a clockwise rotation in quarter turns
type Rotation int

const (
	RotateNone Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// ParseRotation accepts either a quarter-turn index (0-3) or degrees (0, 90, 180, 270)
func ParseRotation(s string) (Rotation, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &InvalidParameterError{Param: "rotation", Value: strconv.Quote(s), Reason: "must be 0, 90, 180 or 270"}
	}
	switch n {
	case 0, 1, 2, 3:
		return Rotation(n), nil
	case 90, 180, 270:
		return Rotation(n / 90), nil
	}
	return 0, &InvalidParameterError{Param: "rotation", Value: s, Reason: "must be 0, 90, 180 or 270"}
}

// Degrees returns the rotation in degrees
func (r Rotation) Degrees() int {
	return int(r) * 90
}

// Valid reports whether r is one of the four supported rotations
func (r Rotation) Valid() bool {
	return r >= RotateNone && r <= Rotate270
}

// Fade is an audio fade of the given length in seconds
type Fade struct {
	Duration float64
}

// Request holds the edit parameters for one conversion. It is built fresh from
// the collaborator's current state every time a conversion is requested.
type Request struct {
	SourceDuration float64 // 0 when unknown
	TrimStart      float64
	TrimEnd        float64
	Speed          float64 // 0 is treated as 1.0
	FPS            *int
	Rotation       Rotation
	FadeIn         *Fade
	FadeOut        *Fade
}

// NewRequest creates a request for the range [start, end] of a source, with
// normal speed and no effects
func NewRequest(sourceDuration float64, start, end Timestamp) *Request {
	return &Request{
		SourceDuration: sourceDuration,
		TrimStart:      start.Seconds(),
		TrimEnd:        end.Seconds(),
		Speed:          1.0,
	}
}

// Duration is the length of the selected range before any speed change
func (r *Request) Duration() float64 {
	return r.TrimEnd - r.TrimStart
}

// EffectiveSpeed returns the speed multiplier, defaulting to 1.0
func (r *Request) EffectiveSpeed() float64 {
	if r.Speed == 0 {
		return 1.0
	}
	return r.Speed
}

// Validate checks the range first, then every optional parameter
func (r *Request) Validate() error {
	if err := r.validateRange(); err != nil {
		return err
	}

	if err := ValidateSpeed(r.EffectiveSpeed()); err != nil {
		return err
	}

	if r.FPS != nil && (*r.FPS < MinFPS || *r.FPS > MaxFPS) {
		return &InvalidParameterError{
			Param:  "fps",
			Value:  strconv.Itoa(*r.FPS),
			Reason: fmt.Sprintf("must be between %d and %d", MinFPS, MaxFPS),
		}
	}

	if err := validateFade("fade-in duration", r.FadeIn); err != nil {
		return err
	}
	if err := validateFade("fade-out duration", r.FadeOut); err != nil {
		return err
	}

	if !r.Rotation.Valid() {
		return &InvalidParameterError{
			Param:  "rotation",
			Value:  strconv.Itoa(int(r.Rotation)),
			Reason: "must be 0-3 quarter turns",
		}
	}

	return nil
}

// ValidateSpeed checks an explicit speed multiplier against the accepted bounds
func ValidateSpeed(speed float64) error {
	if !isFinite(speed) || speed < MinSpeed || speed > MaxSpeed {
		return &InvalidParameterError{
			Param:  "speed",
			Value:  FormatSeconds(speed),
			Reason: fmt.Sprintf("must be between %s and %s", FormatSeconds(MinSpeed), FormatSeconds(MaxSpeed)),
		}
	}
	return nil
}

func (r *Request) validateRange() error {
	rangeErr := func(reason string) error {
		return &InvalidRangeError{Start: r.TrimStart, End: r.TrimEnd, Reason: reason}
	}

	switch {
	case !isFinite(r.TrimStart) || !isFinite(r.TrimEnd):
		return rangeErr("bounds must be finite numbers")
	case r.TrimStart < 0:
		return rangeErr("start must not be negative")
	case r.Duration() <= 0:
		return rangeErr("end must be after start")
	case r.SourceDuration < 0 || !isFinite(r.SourceDuration):
		return rangeErr("source duration must be a non-negative number")
	case r.SourceDuration > 0 && r.TrimEnd > r.SourceDuration:
		return rangeErr(fmt.Sprintf("end exceeds source duration %s", FormatSeconds(r.SourceDuration)))
	}
	return nil
}

func validateFade(param string, f *Fade) error {
	if f == nil {
		return nil
	}
	if !isFinite(f.Duration) || f.Duration <= 0 {
		return &InvalidParameterError{
			Param:  param,
			Value:  FormatSeconds(f.Duration),
			Reason: "must be a positive number of seconds",
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
