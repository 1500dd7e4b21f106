package tracking

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

const maxTraceLine = 1 << 20

// Header is the first line of a trace file.
type Header struct {
	Session   uuid.UUID `json:"session"`
	Created   time.Time `json:"created"`
	FrameRate float32   `json:"frame_rate,omitempty"`
	IPD       float32   `json:"ipd,omitempty"`
	Source    string    `json:"source,omitempty"`
}

type wirePose struct {
	P [3]float32  `json:"p"`
	R *[4]float32 `json:"r,omitempty"`
}

type wireFrame struct {
	DeltaTime float32     `json:"dt,omitempty"`
	Head      wirePose    `json:"head"`
	Waist     wirePose    `json:"waist"`
	LeftHand  wirePose    `json:"left_hand"`
	RightHand wirePose    `json:"right_hand"`
	LeftEye   *[3]float32 `json:"left_eye,omitempty"`
	RightEye  *[3]float32 `json:"right_eye,omitempty"`
	Delta     *[2]float32 `json:"delta,omitempty"`
}

func toWire(p common.Pose) wirePose {
	r := [4]float32{p.Rotation.V.X(), p.Rotation.V.Y(), p.Rotation.V.Z(), p.Rotation.W}
	return wirePose{P: [3]float32(p.Position), R: &r}
}

func (w wirePose) pose() (common.Pose, error) {
	rotation := mgl32.QuatIdent()
	if w.R != nil {
		rotation = mgl32.Quat{W: w.R[3], V: mgl32.Vec3{w.R[0], w.R[1], w.R[2]}}
		if rotation.Len() == 0 {
			return common.Pose{}, errors.New("zero rotation")
		}
		rotation = rotation.Normalize()
	}
	pose := common.NewPose(mgl32.Vec3(w.P), rotation)
	if !common.FinitePose(pose) {
		return common.Pose{}, errors.New("non-finite pose")
	}
	return pose, nil
}

// TraceReader replays a JSON-lines trace: one header line, then one frame per line.
// Frames that omit the head angular delta get it derived from consecutive head rotations,
// and frames that omit the eyes get them placed from the head.
type TraceReader struct {
	header  Header
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
	frames  int

	previousHead mgl32.Quat
	hasPrevious  bool

	frameDelta float32
}

var (
	_ Provider = &TraceReader{}
	_ Clock    = &TraceReader{}
)

// NewTraceReader reads the header from r and returns a reader positioned on the first frame.
//
// Parameters:
//   - r: the trace stream
//
// Returns:
//   - *TraceReader: the reader
//   - error: ErrMalformedFrame if the header is missing or invalid
func NewTraceReader(r io.Reader) (*TraceReader, error) {
	t := &TraceReader{scanner: bufio.NewScanner(r)}
	t.scanner.Buffer(make([]byte, 0, 64*1024), maxTraceLine)

	line, err := t.next()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedFrame)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(line, &t.header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedFrame, err)
	}
	if t.header.Session == uuid.Nil {
		return nil, fmt.Errorf("%w: header has no session id", ErrMalformedFrame)
	}
	return t, nil
}

// OpenTrace opens a trace file. The caller closes the returned reader.
//
// Parameters:
//   - path: location of the trace
//
// Returns:
//   - *TraceReader: the reader
//   - error: error if the file cannot be opened or has no valid header
func OpenTrace(path string) (*TraceReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	t, err := NewTraceReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read trace %s: %w", path, err)
	}
	t.closer = f
	return t, nil
}

// Header returns the trace header.
func (t *TraceReader) Header() Header {
	return t.header
}

// Frames returns how many frames have been read so far.
func (t *TraceReader) Frames() int {
	return t.frames
}

// Close releases the underlying file, if any.
func (t *TraceReader) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}

// Sample returns the next frame of the trace.
//
// Parameters:
//   - deltaTime: seconds since the previous frame, used for the angular delta when the frame has no dt
//
// Returns:
//   - common.PoseSample: the frame
//   - error: io.EOF at the end of the trace, ErrMalformedFrame for an unreadable line
func (t *TraceReader) Sample(deltaTime float32) (common.PoseSample, error) {
	line, err := t.next()
	if err != nil {
		return common.PoseSample{}, err
	}

	var frame wireFrame
	if err := json.Unmarshal(line, &frame); err != nil {
		return common.PoseSample{}, fmt.Errorf("%w: line %d: %w", ErrMalformedFrame, t.line, err)
	}
	sample, err := t.decode(frame, deltaTime)
	if err != nil {
		return common.PoseSample{}, fmt.Errorf("%w: line %d: %w", ErrMalformedFrame, t.line, err)
	}
	t.frames++
	t.frameDelta = frame.DeltaTime
	return sample, nil
}

// FrameDeltaTime returns the dt recorded on the last frame read, if it had a positive one.
func (t *TraceReader) FrameDeltaTime() (float32, bool) {
	return t.frameDelta, t.frameDelta > 0 && common.Finite(t.frameDelta)
}

func (t *TraceReader) decode(frame wireFrame, deltaTime float32) (common.PoseSample, error) {
	var (
		s   common.PoseSample
		err error
	)
	if s.Head, err = frame.Head.pose(); err != nil {
		return s, fmt.Errorf("head: %w", err)
	}
	if s.Waist, err = frame.Waist.pose(); err != nil {
		return s, fmt.Errorf("waist: %w", err)
	}
	if s.LeftHand, err = frame.LeftHand.pose(); err != nil {
		return s, fmt.Errorf("left hand: %w", err)
	}
	if s.RightHand, err = frame.RightHand.pose(); err != nil {
		return s, fmt.Errorf("right hand: %w", err)
	}

	if frame.LeftEye != nil && frame.RightEye != nil {
		s.LeftEye, s.RightEye = mgl32.Vec3(*frame.LeftEye), mgl32.Vec3(*frame.RightEye)
	} else {
		s.LeftEye, s.RightEye = EyesFromHead(s.Head, t.header.IPD)
	}

	dt := common.Coalesce(frame.DeltaTime, deltaTime)
	switch {
	case frame.Delta != nil:
		s.HeadAngularDelta = mgl32.Vec2(*frame.Delta)
	case t.hasPrevious:
		s.HeadAngularDelta = common.HeadAngularDelta(t.previousHead, s.Head.Rotation, dt)
	}
	t.previousHead, t.hasPrevious = s.Head.Rotation, true
	return s, nil
}

// next returns the next non-blank line.
func (t *TraceReader) next() ([]byte, error) {
	for t.scanner.Scan() {
		t.line++
		line := bytes.TrimSpace(t.scanner.Bytes())
		if len(line) > 0 {
			return line, nil
		}
	}
	if err := t.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return nil, io.EOF
}

// TraceWriter records pose samples in the format TraceReader reads. It is safe for concurrent use.
type TraceWriter struct {
	mu     sync.Mutex
	out    *bufio.Writer
	enc    *json.Encoder
	header Header
	frames int
}

// NewTraceWriter writes the header to w. A missing session id or creation time is filled in.
//
// Parameters:
//   - w: destination stream
//   - header: the trace header
//
// Returns:
//   - *TraceWriter: the writer
//   - error: error if the header cannot be written
func NewTraceWriter(w io.Writer, header Header) (*TraceWriter, error) {
	if header.Session == uuid.Nil {
		header.Session = uuid.New()
	}
	if header.Created.IsZero() {
		header.Created = time.Now().UTC()
	}
	t := &TraceWriter{out: bufio.NewWriter(w), header: header}
	t.enc = json.NewEncoder(t.out)
	if err := t.enc.Encode(header); err != nil {
		return nil, fmt.Errorf("write trace header: %w", err)
	}
	return t, nil
}

// Header returns the header that was written.
func (t *TraceWriter) Header() Header {
	return t.header
}

// Frames returns how many frames have been written.
func (t *TraceWriter) Frames() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

// Write appends one frame.
//
// Parameters:
//   - deltaTime: seconds since the previous frame
//   - sample: the tracked body
//
// Returns:
//   - error: error if the frame cannot be encoded or written
func (t *TraceWriter) Write(deltaTime float32, sample common.PoseSample) error {
	leftEye, rightEye := [3]float32(sample.LeftEye), [3]float32(sample.RightEye)
	delta := [2]float32(sample.HeadAngularDelta)
	frame := wireFrame{
		DeltaTime: deltaTime,
		Head:      toWire(sample.Head),
		Waist:     toWire(sample.Waist),
		LeftHand:  toWire(sample.LeftHand),
		RightHand: toWire(sample.RightHand),
		LeftEye:   &leftEye,
		RightEye:  &rightEye,
		Delta:     &delta,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.enc.Encode(frame); err != nil {
		return fmt.Errorf("write trace frame %d: %w", t.frames+1, err)
	}
	t.frames++
	return nil
}

// Flush writes any buffered frames to the underlying stream.
func (t *TraceWriter) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.Flush()
}

// Record wraps p so every sample it returns is also written to w. When p is a Clock its
// recorded delta is written in place of the engine's, and the wrapper reports it onward.
//
// Parameters:
//   - p: the provider to record
//   - w: the trace destination
//
// Returns:
//   - Provider: a provider returning the same samples as p
func Record(p Provider, w *TraceWriter) Provider {
	return &recorder{provider: p, writer: w}
}

type recorder struct {
	provider Provider
	writer   *TraceWriter
}

var _ Clock = &recorder{}

func (r *recorder) Sample(deltaTime float32) (common.PoseSample, error) {
	sample, err := r.provider.Sample(deltaTime)
	if err != nil {
		return sample, err
	}
	if recorded, ok := r.FrameDeltaTime(); ok {
		deltaTime = recorded
	}
	if err := r.writer.Write(deltaTime, sample); err != nil {
		return sample, fmt.Errorf("record: %w", err)
	}
	return sample, nil
}

func (r *recorder) FrameDeltaTime() (float32, bool) {
	if clock, ok := r.provider.(Clock); ok {
		return clock.FrameDeltaTime()
	}
	return 0, false
}
