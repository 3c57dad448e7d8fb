package edit

import (
	"strconv"
)

// MIMETypeMP4 is the MIME type of every output artifact
const MIMETypeMP4 = "video/mp4"

// InvocationKind tags an invocation as a stream copy or a filtered re-encode
type InvocationKind string

const (
	KindCopy   InvocationKind = "copy"
	KindEncode InvocationKind = "encode"
)

// Invocation is one transcoder call. Input and Output are artifact names in
// the working directory; Args is the complete argument vector.
type Invocation struct {
	Stage     int
	Kind      InvocationKind
	Input     string
	Output    string
	Args      []string
	DependsOn int // index of the stage whose output this reads, -1 for the source
}

// Plan is the ordered list of invocations for one conversion
type Plan struct {
	Mode         InvocationKind
	Invocations  []Invocation
	Filters      FilterSet
	Duration     float64
	Source       string
	Intermediate string // empty for copy plans
	Output       string
	DownloadName string
	MIMEType     string
}

// EncoderSettings configures the re-encode stage
type EncoderSettings struct {
	VideoCodec string
	Preset     string
	CRF        int // 0 leaves the encoder default
	AudioCodec string
	FastStart  bool
}

// DefaultEncoder is H.264/AAC at the "fast" preset
var DefaultEncoder = EncoderSettings{
	VideoCodec: "libx264",
	Preset:     "fast",
	AudioCodec: "aac",
	FastStart:  true,
}

// ArtifactNames are the file names used in the working directory and for download
type ArtifactNames struct {
	Source       string
	Intermediate string
	Output       string
	CopyDownload string
	EditDownload string
}

// DefaultArtifactNames match the names the browser front end used
var DefaultArtifactNames = ArtifactNames{
	Source:       "input.mp4",
	Intermediate: "trimmed.mp4",
	Output:       "out.mp4",
	CopyDownload: "trimmed.mp4",
	EditDownload: "converted.mp4",
}

// Compiler turns edit requests into invocation plans. It holds no state
// between calls.
type Compiler struct {
	encoder EncoderSettings
	names   ArtifactNames
}

// CompilerOption is a functional option for configuring Compiler
type CompilerOption func(*Compiler)

// WithEncoder sets the re-encode settings
func WithEncoder(settings EncoderSettings) CompilerOption {
	return func(c *Compiler) {
		c.encoder = settings
	}
}

// WithArtifactNames sets the working and download file names
func WithArtifactNames(names ArtifactNames) CompilerOption {
	return func(c *Compiler) {
		c.names = names
	}
}

// NewCompiler creates a compiler with H.264/AAC defaults
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		encoder: DefaultEncoder,
		names:   DefaultArtifactNames,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compile builds a plan with the default compiler
func Compile(req *Request) (*Plan, error) {
	return NewCompiler().Compile(req)
}

// Compile validates the request and returns one copy invocation when no
// filtering is needed, or a copy-trim followed by a filtered encode otherwise
func (c *Compiler) Compile(req *Request) (*Plan, error) {
	if req == nil {
		return nil, &InvalidParameterError{Param: "request", Value: "<nil>", Reason: "is required"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	filters := BuildFilters(req)
	plan := &Plan{
		Filters:  filters,
		Duration: req.Duration(),
		Source:   c.names.Source,
		Output:   c.names.Output,
		MIMEType: MIMETypeMP4,
	}

	if filters.Empty() {
		plan.Mode = KindCopy
		plan.DownloadName = c.names.CopyDownload
		plan.Invocations = []Invocation{c.copyOnly(req)}
		return plan, nil
	}

	plan.Mode = KindEncode
	plan.DownloadName = c.names.EditDownload
	plan.Intermediate = c.names.Intermediate
	plan.Invocations = []Invocation{
		c.copyTrim(req),
		c.encode(req, filters),
	}
	return plan, nil
}

// copyOnly trims straight from the source to the final output without re-encoding
func (c *Compiler) copyOnly(req *Request) Invocation {
	args := []string{
		"-ss", FormatSeconds(req.TrimStart),
		"-to", FormatSeconds(req.TrimEnd),
		"-i", c.names.Source,
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
	}
	args = append(args, rotationArgs(req.Rotation)...)
	args = append(args, c.containerArgs()...)
	args = append(args, "-y", c.names.Output)

	return Invocation{
		Stage:     0,
		Kind:      KindCopy,
		Input:     c.names.Source,
		Output:    c.names.Output,
		Args:      args,
		DependsOn: -1,
	}
}

// copyTrim cuts [start, start+duration] into the intermediate artifact. The
// rotation tag is left for the encode stage, which would otherwise apply it
// to the pixels and drop it.
func (c *Compiler) copyTrim(req *Request) Invocation {
	return Invocation{
		Stage:  0,
		Kind:   KindCopy,
		Input:  c.names.Source,
		Output: c.names.Intermediate,
		Args: []string{
			"-ss", FormatSeconds(req.TrimStart),
			"-i", c.names.Source,
			"-t", FormatSeconds(req.Duration()),
			"-c", "copy",
			"-avoid_negative_ts", "make_zero",
			"-y", c.names.Intermediate,
		},
		DependsOn: -1,
	}
}

func (c *Compiler) encode(req *Request, filters FilterSet) Invocation {
	args := []string{"-i", c.names.Intermediate}

	if len(filters.Video) > 0 {
		args = append(args, "-vf", filters.VideoChain())
	}
	if len(filters.Audio) > 0 {
		args = append(args, "-af", filters.AudioChain())
	}

	args = append(args, "-c:v", c.encoder.VideoCodec)
	if c.encoder.Preset != "" {
		args = append(args, "-preset", c.encoder.Preset)
	}
	if c.encoder.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(c.encoder.CRF))
	}
	args = append(args, "-c:a", c.encoder.AudioCodec)

	args = append(args, rotationArgs(req.Rotation)...)
	args = append(args, c.containerArgs()...)
	args = append(args, "-y", c.names.Output)

	return Invocation{
		Stage:     1,
		Kind:      KindEncode,
		Input:     c.names.Intermediate,
		Output:    c.names.Output,
		Args:      args,
		DependsOn: 0,
	}
}

// rotationArgs tags the video stream with a display rotation instead of
// rotating pixels
func rotationArgs(r Rotation) []string {
	if r == RotateNone {
		return nil
	}
	return []string{"-metadata:s:v:0", "rotate=" + strconv.Itoa(r.Degrees())}
}

func (c *Compiler) containerArgs() []string {
	if !c.encoder.FastStart {
		return nil
	}
	return []string{"-movflags", "+faststart"}
}
