package cmd

import (
	"fmt"

	"video-trimmer/domain/edit"

	"github.com/spf13/cobra"
)

// EditOptions holds the raw edit flags as the user typed them
type EditOptions struct {
	Start      string
	End        string
	Speed      float64
	FPS        int
	FPSSet     bool
	FadeIn     float64
	FadeInSet  bool
	FadeOut    float64
	FadeOutSet bool
	Rotation   string
	Duration   float64 // overrides probing when > 0
}

func bindEditFlags(cmd *cobra.Command, o *EditOptions) {
	cmd.Flags().StringVar(&o.Start, "start", "0", "Start time (SS, MM:SS or HH:MM:SS, fractions allowed)")
	cmd.Flags().StringVar(&o.End, "end", "", "End time (defaults to the end of the source)")
	cmd.Flags().Float64Var(&o.Speed, "speed", 1.0, "Playback speed multiplier")
	cmd.Flags().IntVar(&o.FPS, "fps", 0, "Force an output frame rate")
	cmd.Flags().Float64Var(&o.FadeIn, "fade-in", 0, "Audio fade-in length in seconds")
	cmd.Flags().Float64Var(&o.FadeOut, "fade-out", 0, "Audio fade-out length in seconds")
	cmd.Flags().StringVar(&o.Rotation, "rotate", "0", "Display rotation: 0, 90, 180 or 270")
	cmd.Flags().Float64Var(&o.Duration, "duration", 0, "Source duration in seconds (skips ffprobe)")
}

// markChanged records which optional effects were asked for explicitly, so
// that e.g. --fps 0 is rejected instead of silently ignored
func (o *EditOptions) markChanged(cmd *cobra.Command) {
	o.FPSSet = cmd.Flags().Changed("fps")
	o.FadeInSet = cmd.Flags().Changed("fade-in")
	o.FadeOutSet = cmd.Flags().Changed("fade-out")
}

// Request builds an edit request against a source of the given duration.
// An end past the source is clamped to it, the way the range sliders did;
// all other validation is left to the plan compiler.
func (o *EditOptions) Request(sourceDuration float64) (*edit.Request, error) {
	start, err := edit.ParseTimestamp(o.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid start time: %w", err)
	}

	var end edit.Timestamp
	switch {
	case o.End != "":
		end, err = edit.ParseTimestamp(o.End)
		if err != nil {
			return nil, fmt.Errorf("invalid end time: %w", err)
		}
		if sourceDuration > 0 && end.Seconds() > sourceDuration {
			end = edit.Timestamp(sourceDuration)
		}
	case sourceDuration > 0:
		end = edit.Timestamp(sourceDuration)
	default:
		return nil, fmt.Errorf("end time is required when the source duration is unknown")
	}

	// The flag defaults to 1, so a zero here was typed by the user and must
	// not fall back to normal speed.
	if err := edit.ValidateSpeed(o.Speed); err != nil {
		return nil, err
	}

	rotation, err := edit.ParseRotation(o.Rotation)
	if err != nil {
		return nil, err
	}

	req := edit.NewRequest(sourceDuration, start, end)
	req.Speed = o.Speed
	req.Rotation = rotation
	if o.FPSSet {
		fps := o.FPS
		req.FPS = &fps
	}
	if o.FadeInSet {
		req.FadeIn = &edit.Fade{Duration: o.FadeIn}
	}
	if o.FadeOutSet {
		req.FadeOut = &edit.Fade{Duration: o.FadeOut}
	}

	return req, nil
}
