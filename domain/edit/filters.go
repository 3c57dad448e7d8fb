package edit

import (
	"fmt"
	"math"
	"strings"
)

// Tempo filter limits per stage
const (
	maxTempoFactor = 2.0
	minTempoFactor = 0.5
)

// FilterSet holds the video and audio filter chains for the encode stage
type FilterSet struct {
	Video []string
	Audio []string
}

// Empty reports whether no filtering is needed, so the clip can be stream-copied
func (f FilterSet) Empty() bool {
	return len(f.Video) == 0 && len(f.Audio) == 0
}

// VideoChain returns the comma-joined video chain for -vf
func (f FilterSet) VideoChain() string {
	return strings.Join(f.Video, ",")
}

// AudioChain returns the comma-joined audio chain for -af
func (f FilterSet) AudioChain() string {
	return strings.Join(f.Audio, ",")
}

// BuildFilters constructs the filter chains for a validated request.
// Fade times are relative to the trimmed clip, since the encode stage reads
// the already-trimmed intermediate. Speed is taken at the millisecond
// precision it is written with, so a speed that prints as 1 adds no filters.
func BuildFilters(r *Request) FilterSet {
	var fs FilterSet
	speed := roundMillis(r.EffectiveSpeed())

	if r.FPS != nil {
		fs.Video = append(fs.Video, fmt.Sprintf("fps=%d", *r.FPS))
	}
	if speed != 1.0 {
		fs.Video = append(fs.Video, "setpts=PTS/"+FormatSeconds(speed))
	}

	if r.FadeIn != nil {
		fs.Audio = append(fs.Audio, fmt.Sprintf("afade=t=in:st=0:d=%s", FormatSeconds(r.FadeIn.Duration)))
	}
	if r.FadeOut != nil {
		fs.Audio = append(fs.Audio, fmt.Sprintf("afade=t=out:st=%s:d=%s",
			FormatSeconds(FadeOutStart(r.Duration(), r.FadeOut.Duration)),
			FormatSeconds(r.FadeOut.Duration)))
	}
	if speed != 1.0 {
		for _, factor := range TempoStages(speed) {
			fs.Audio = append(fs.Audio, "atempo="+FormatSeconds(factor))
		}
	}

	return fs
}

// FadeOutStart returns when a fade-out of the given length must begin so that
// it ends with the clip. Fades longer than the clip start at 0.
func FadeOutStart(clipDuration, fadeDuration float64) float64 {
	return math.Max(0, clipDuration-fadeDuration)
}

// TempoStages splits a speed factor into atempo factors that each lie in
// [0.5, 2.0]. Their product equals speed.
func TempoStages(speed float64) []float64 {
	var stages []float64
	for speed > maxTempoFactor {
		stages = append(stages, maxTempoFactor)
		speed /= maxTempoFactor
	}
	for speed < minTempoFactor {
		stages = append(stages, minTempoFactor)
		speed /= minTempoFactor
	}
	return append(stages, speed)
}
