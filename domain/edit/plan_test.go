package edit

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestCompile_CopyPlan(t *testing.T) {
	req := &Request{SourceDuration: 120, TrimStart: 5, TrimEnd: 42.5, Speed: 1}

	plan, err := Compile(req)
	if err != nil {
		t.Fatalf("Compile() unexpected error: %v", err)
	}

	if plan.Mode != KindCopy {
		t.Errorf("Mode = %q, want %q", plan.Mode, KindCopy)
	}
	if len(plan.Invocations) != 1 {
		t.Fatalf("len(Invocations) = %d, want 1", len(plan.Invocations))
	}
	if plan.Intermediate != "" {
		t.Errorf("Intermediate = %q, want empty", plan.Intermediate)
	}
	if plan.DownloadName != "trimmed.mp4" {
		t.Errorf("DownloadName = %q, want trimmed.mp4", plan.DownloadName)
	}
	if plan.MIMEType != "video/mp4" {
		t.Errorf("MIMEType = %q, want video/mp4", plan.MIMEType)
	}

	inv := plan.Invocations[0]
	want := []string{
		"-ss", "5",
		"-to", "42.5",
		"-i", "input.mp4",
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		"-movflags", "+faststart",
		"-y", "out.mp4",
	}
	if !reflect.DeepEqual(inv.Args, want) {
		t.Errorf("Args = %v\nwant %v", inv.Args, want)
	}
	if inv.Kind != KindCopy || inv.DependsOn != -1 {
		t.Errorf("invocation = %+v, want copy from source", inv)
	}
}

func TestCompile_EncodePlan(t *testing.T) {
	req := &Request{
		SourceDuration: 120,
		TrimStart:      10,
		TrimEnd:        20,
		Speed:          3,
		FPS:            intPtr(30),
		FadeOut:        &Fade{Duration: 3},
	}

	plan, err := Compile(req)
	if err != nil {
		t.Fatalf("Compile() unexpected error: %v", err)
	}

	if plan.Mode != KindEncode {
		t.Errorf("Mode = %q, want %q", plan.Mode, KindEncode)
	}
	if len(plan.Invocations) != 2 {
		t.Fatalf("len(Invocations) = %d, want 2", len(plan.Invocations))
	}
	if plan.DownloadName != "converted.mp4" {
		t.Errorf("DownloadName = %q, want converted.mp4", plan.DownloadName)
	}

	trim := plan.Invocations[0]
	wantTrim := []string{
		"-ss", "10",
		"-i", "input.mp4",
		"-t", "10",
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		"-y", "trimmed.mp4",
	}
	if !reflect.DeepEqual(trim.Args, wantTrim) {
		t.Errorf("trim Args = %v\nwant %v", trim.Args, wantTrim)
	}
	if trim.Kind != KindCopy || trim.Output != plan.Intermediate {
		t.Errorf("trim stage = %+v, want copy into %q", trim, plan.Intermediate)
	}

	enc := plan.Invocations[1]
	wantEnc := []string{
		"-i", "trimmed.mp4",
		"-vf", "fps=30,setpts=PTS/3",
		"-af", "afade=t=out:st=7:d=3,atempo=2,atempo=1.5",
		"-c:v", "libx264",
		"-preset", "fast",
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-y", "out.mp4",
	}
	if !reflect.DeepEqual(enc.Args, wantEnc) {
		t.Errorf("encode Args = %v\nwant %v", enc.Args, wantEnc)
	}
	if enc.Kind != KindEncode || enc.DependsOn != 0 || enc.Input != trim.Output {
		t.Errorf("encode stage = %+v, want encode reading stage 0 output", enc)
	}
}

func TestCompile_AudioOnlyFilters(t *testing.T) {
	req := &Request{TrimStart: 0, TrimEnd: 8, Speed: 1, FadeIn: &Fade{Duration: 2}}

	plan, err := Compile(req)
	if err != nil {
		t.Fatalf("Compile() unexpected error: %v", err)
	}
	enc := plan.Invocations[1]
	for _, arg := range enc.Args {
		if arg == "-vf" {
			t.Errorf("encode Args = %v, want no -vf", enc.Args)
		}
	}
	if !containsPair(enc.Args, "-af", "afade=t=in:st=0:d=2") {
		t.Errorf("encode Args = %v, want fade-in chain", enc.Args)
	}
}

func TestCompile_Rotation(t *testing.T) {
	t.Run("copy plan carries metadata tag", func(t *testing.T) {
		plan, err := Compile(&Request{TrimStart: 0, TrimEnd: 10, Speed: 1, Rotation: Rotate180})
		if err != nil {
			t.Fatalf("Compile() unexpected error: %v", err)
		}
		if plan.Mode != KindCopy {
			t.Errorf("Mode = %q, rotation alone must not force a re-encode", plan.Mode)
		}
		args := plan.Invocations[0].Args
		if !containsPair(args, "-metadata:s:v:0", "rotate=180") {
			t.Errorf("Args = %v, want rotate=180 metadata", args)
		}
		assertNoPixelRotation(t, args)
	})

	t.Run("encode plan tags only the final stage", func(t *testing.T) {
		plan, err := Compile(&Request{TrimStart: 0, TrimEnd: 10, Speed: 2, Rotation: Rotate90})
		if err != nil {
			t.Fatalf("Compile() unexpected error: %v", err)
		}
		if containsPair(plan.Invocations[0].Args, "-metadata:s:v:0", "rotate=90") {
			t.Errorf("trim stage Args = %v, want no rotation tag", plan.Invocations[0].Args)
		}
		args := plan.Invocations[1].Args
		if !containsPair(args, "-metadata:s:v:0", "rotate=90") {
			t.Errorf("encode Args = %v, want rotate=90 metadata", args)
		}
		assertNoPixelRotation(t, args)
	})
}

func TestCompile_InvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
	}{
		{"nil request", nil},
		{"start equals end", &Request{TrimStart: 5, TrimEnd: 5, Speed: 1}},
		{"start after end", &Request{TrimStart: 9, TrimEnd: 5, Speed: 1}},
		{"bad rotation", &Request{TrimStart: 0, TrimEnd: 5, Speed: 1, Rotation: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Compile(tt.req)
			if err == nil {
				t.Fatal("Compile() expected error, got nil")
			}
			if plan != nil {
				t.Errorf("Compile() plan = %+v, want nil", plan)
			}
		})
	}

	_, err := Compile(&Request{TrimStart: 9, TrimEnd: 5, Speed: 1})
	var rangeErr *InvalidRangeError
	if !errors.As(err, &rangeErr) {
		t.Errorf("Compile() error = %v, want InvalidRangeError", err)
	}
}

func TestNewCompiler_Options(t *testing.T) {
	c := NewCompiler(
		WithEncoder(EncoderSettings{VideoCodec: "libx265", CRF: 23, AudioCodec: "libopus"}),
		WithArtifactNames(ArtifactNames{
			Source:       "src.mkv",
			Intermediate: "mid.mkv",
			Output:       "final.mp4",
			CopyDownload: "cut.mp4",
			EditDownload: "edit.mp4",
		}),
	)

	plan, err := c.Compile(&Request{TrimStart: 1, TrimEnd: 4, Speed: 2})
	if err != nil {
		t.Fatalf("Compile() unexpected error: %v", err)
	}

	enc := plan.Invocations[1]
	want := []string{
		"-i", "mid.mkv",
		"-vf", "setpts=PTS/2",
		"-af", "atempo=2",
		"-c:v", "libx265",
		"-crf", "23",
		"-c:a", "libopus",
		"-y", "final.mp4",
	}
	if !reflect.DeepEqual(enc.Args, want) {
		t.Errorf("encode Args = %v\nwant %v", enc.Args, want)
	}
	if plan.Source != "src.mkv" || plan.DownloadName != "edit.mp4" {
		t.Errorf("plan names = %q/%q", plan.Source, plan.DownloadName)
	}
}

func containsPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func assertNoPixelRotation(t *testing.T, args []string) {
	t.Helper()
	for i := 0; i+1 < len(args); i++ {
		if args[i] != "-vf" {
			continue
		}
		for _, f := range []string{"transpose", "rotate", "flip"} {
			if strings.Contains(args[i+1], f) {
				t.Errorf("video chain %q contains pixel rotation %q", args[i+1], f)
			}
		}
	}
}

func TestCompile_NearUnitSpeedStaysCopy(t *testing.T) {
	plan, err := Compile(&Request{TrimStart: 0, TrimEnd: 10, Speed: 1.0004})
	if err != nil {
		t.Fatalf("Compile() unexpected error: %v", err)
	}
	if plan.Mode != KindCopy || len(plan.Invocations) != 1 {
		t.Errorf("Mode = %q with %d invocations, want a single copy", plan.Mode, len(plan.Invocations))
	}
}
