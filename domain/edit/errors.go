package edit

import (
	"errors"
	"fmt"
)

var (
	// ErrConversionInProgress is returned when a second conversion is started
	// while another one holds the session
	ErrConversionInProgress = errors.New("a conversion is already in progress")

	// ErrNoSource is returned when no source video was supplied
	ErrNoSource = errors.New("source video is required")
)

// InvalidRangeError reports trim bounds that cannot produce a clip
type InvalidRangeError struct {
	Start  float64
	End    float64
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid trim range [%s, %s]: %s", FormatSeconds(e.Start), FormatSeconds(e.End), e.Reason)
}

// InvalidParameterError reports an edit parameter outside its accepted range
type InvalidParameterError struct {
	Param  string
	Value  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %s: %s", e.Param, e.Value, e.Reason)
}

// TranscodeFailure wraps a failed transcoder invocation. The underlying error
// carries the tool's own message unparsed.
type TranscodeFailure struct {
	Stage int
	Kind  InvocationKind
	Err   error
}

func (e *TranscodeFailure) Error() string {
	return fmt.Sprintf("%s stage %d failed: %v", e.Kind, e.Stage+1, e.Err)
}

func (e *TranscodeFailure) Unwrap() error {
	return e.Err
}
