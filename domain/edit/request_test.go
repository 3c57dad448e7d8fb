package edit

import (
	"errors"
	"math"
	"testing"
)

func intPtr(v int) *int {
	return &v
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       Request
		wantRange bool
		wantParam string
	}{
		{
			name: "plain trim",
			req:  Request{SourceDuration: 60, TrimStart: 5, TrimEnd: 30, Speed: 1},
		},
		{
			name: "zero speed defaults to normal",
			req:  Request{SourceDuration: 60, TrimStart: 0, TrimEnd: 60},
		},
		{
			name: "unknown source duration skips upper bound",
			req:  Request{TrimStart: 100, TrimEnd: 200, Speed: 1},
		},
		{
			name:      "start equals end",
			req:       Request{SourceDuration: 60, TrimStart: 10, TrimEnd: 10, Speed: 1},
			wantRange: true,
		},
		{
			name:      "start after end",
			req:       Request{SourceDuration: 60, TrimStart: 20, TrimEnd: 10, Speed: 1},
			wantRange: true,
		},
		{
			name:      "negative start",
			req:       Request{SourceDuration: 60, TrimStart: -1, TrimEnd: 10, Speed: 1},
			wantRange: true,
		},
		{
			name:      "end past source",
			req:       Request{SourceDuration: 60, TrimStart: 0, TrimEnd: 61, Speed: 1},
			wantRange: true,
		},
		{
			name:      "NaN end",
			req:       Request{SourceDuration: 60, TrimStart: 0, TrimEnd: math.NaN(), Speed: 1},
			wantRange: true,
		},
		{
			name:      "speed too slow",
			req:       Request{SourceDuration: 60, TrimStart: 0, TrimEnd: 10, Speed: 0.1},
			wantParam: "speed",
		},
		{
			name:      "speed too fast",
			req:       Request{SourceDuration: 60, TrimStart: 0, TrimEnd: 10, Speed: 32},
			wantParam: "speed",
		},
		{
			name:      "negative speed",
			req:       Request{SourceDuration: 60, TrimStart: 0, TrimEnd: 10, Speed: -2},
			wantParam: "speed",
		},
		{
			name:      "fps zero",
			req:       Request{SourceDuration: 60, TrimStart: 0, TrimEnd: 10, Speed: 1, FPS: intPtr(0)},
			wantParam: "fps",
		},
		{
			name:      "fps too high",
			req:       Request{SourceDuration: 60, TrimStart: 0, TrimEnd: 10, Speed: 1, FPS: intPtr(500)},
			wantParam: "fps",
		},
		{
			name:      "zero fade in",
			req:       Request{SourceDuration: 60, TrimStart: 0, TrimEnd: 10, Speed: 1, FadeIn: &Fade{}},
			wantParam: "fade-in duration",
		},
		{
			name:      "negative fade out",
			req:       Request{SourceDuration: 60, TrimStart: 0, TrimEnd: 10, Speed: 1, FadeOut: &Fade{Duration: -1}},
			wantParam: "fade-out duration",
		},
		{
			name:      "rotation out of range",
			req:       Request{SourceDuration: 60, TrimStart: 0, TrimEnd: 10, Speed: 1, Rotation: 4},
			wantParam: "rotation",
		},
		{
			name:      "range is checked before parameters",
			req:       Request{SourceDuration: 60, TrimStart: 10, TrimEnd: 5, Speed: 100},
			wantRange: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			var rangeErr *InvalidRangeError
			var paramErr *InvalidParameterError
			switch {
			case tt.wantRange:
				if !errors.As(err, &rangeErr) {
					t.Fatalf("Validate() error = %v, want InvalidRangeError", err)
				}
			case tt.wantParam != "":
				if !errors.As(err, &paramErr) {
					t.Fatalf("Validate() error = %v, want InvalidParameterError", err)
				}
				if paramErr.Param != tt.wantParam {
					t.Errorf("Validate() param = %q, want %q", paramErr.Param, tt.wantParam)
				}
			default:
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			}
		})
	}
}

func TestNewRequest(t *testing.T) {
	req := NewRequest(120, 10, 25.5)

	if req.Duration() != 15.5 {
		t.Errorf("Duration() = %v, want 15.5", req.Duration())
	}
	if req.EffectiveSpeed() != 1.0 {
		t.Errorf("EffectiveSpeed() = %v, want 1.0", req.EffectiveSpeed())
	}
	if err := req.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestParseRotation(t *testing.T) {
	tests := []struct {
		input   string
		want    Rotation
		wantErr bool
	}{
		{"0", RotateNone, false},
		{"1", Rotate90, false},
		{"2", Rotate180, false},
		{"3", Rotate270, false},
		{"90", Rotate90, false},
		{"180", Rotate180, false},
		{"270", Rotate270, false},
		{"45", 0, true},
		{"360", 0, true},
		{"left", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRotation(tt.input)
			if tt.wantErr {
				var paramErr *InvalidParameterError
				if !errors.As(err, &paramErr) {
					t.Errorf("ParseRotation(%q) error = %v, want InvalidParameterError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRotation(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRotation(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestRotation_Degrees(t *testing.T) {
	if got := Rotate180.Degrees(); got != 180 {
		t.Errorf("Rotate180.Degrees() = %d, want 180", got)
	}
	if got := Rotate270.Degrees(); got != 270 {
		t.Errorf("Rotate270.Degrees() = %d, want 270", got)
	}
}
