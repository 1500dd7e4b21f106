package tracking

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = `{"session":"6f1c2a4e-3b5d-4c8e-9f0a-1b2c3d4e5f60","created":"2026-01-02T03:04:05Z","frame_rate":90}`

func sample(yaw float32) common.PoseSample {
	head := common.NewPose(mgl32.Vec3{0, 1.7, 0}, common.YawPitchRotation(yaw, 0))
	left, right := EyesFromHead(head, DefaultIPD)
	return common.PoseSample{
		Head:      head,
		Waist:     common.IdentityPose(mgl32.Vec3{0, 1, 0}),
		LeftHand:  common.IdentityPose(mgl32.Vec3{-0.3, 1, -0.2}),
		RightHand: common.IdentityPose(mgl32.Vec3{0.3, 1, -0.2}),
		LeftEye:   left,
		RightEye:  right,
	}
}

func TestFromSamples(t *testing.T) {
	p := FromSamples(sample(0), sample(0.1))
	_, err := p.Sample(0.01)
	require.NoError(t, err)
	s, err := p.Sample(0.01)
	require.NoError(t, err)
	assert.Equal(t, sample(0.1), s)
	_, err = p.Sample(0.01)
	assert.ErrorIs(t, err, io.EOF)
}

func TestEyesFromHead(t *testing.T) {
	left, right := EyesFromHead(common.IdentityPose(mgl32.Vec3{0, 1.7, 0}), 0)
	assert.InDelta(t, 0, left.Sub(mgl32.Vec3{-0.032, 1.75, -0.08}).Len(), 1e-5, "%v", left)
	assert.InDelta(t, 0, right.Sub(mgl32.Vec3{0.032, 1.75, -0.08}).Len(), 1e-5, "%v", right)

	// turned to face +X, the right eye sits toward +Z
	turned := common.NewPose(mgl32.Vec3{}, common.YawPitchRotation(math.Pi/2, 0))
	left, right = EyesFromHead(turned, 0.1)
	assert.InDelta(t, 0.1, right.Sub(left).Len(), 1e-5)
	assert.Greater(t, right.Z(), left.Z())
	assert.Greater(t, right.X(), float32(0))
}

func TestTrace_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewTraceWriter(&buf, Header{FrameRate: 90, Source: "test"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, w.Header().Session)
	assert.False(t, w.Header().Created.IsZero())

	want := []common.PoseSample{sample(0), sample(0.2), sample(-0.4)}
	want[1].HeadAngularDelta = mgl32.Vec2{18, 0}
	for _, s := range want {
		require.NoError(t, w.Write(1.0/90, s))
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, 3, w.Frames())

	r, err := NewTraceReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, w.Header().Session, r.Header().Session)
	assert.Equal(t, "test", r.Header().Source)

	for i, s := range want {
		got, err := r.Sample(1.0 / 90)
		require.NoError(t, err, "frame %d", i)
		assert.InDelta(t, 0, got.Head.Position.Sub(s.Head.Position).Len(), 1e-5)
		assert.InDelta(t, 1, math.Abs(float64(got.Head.Rotation.Dot(s.Head.Rotation))), 1e-5)
		assert.Equal(t, s.RightEye, got.RightEye)
		assert.Equal(t, s.HeadAngularDelta, got.HeadAngularDelta)
	}
	_, err = r.Sample(1.0 / 90)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 3, r.Frames())
	assert.NoError(t, r.Close())
}

func TestTraceReader_DerivesMissingFields(t *testing.T) {
	in := header + "\n" +
		`{"head":{"p":[0,1.7,0]},"waist":{"p":[0,1,0]},"left_hand":{"p":[-0.3,1,-0.2]},"right_hand":{"p":[0.3,1,-0.2]}}` + "\n" +
		"\n" +
		`{"dt":0.5,"head":{"p":[0,1.7,0],"r":[0,-0.0998334,0,0.9950042]},"waist":{"p":[0,1,0]},"left_hand":{"p":[-0.3,1,-0.2]},"right_hand":{"p":[0.3,1,-0.2]}}` + "\n"

	r, err := NewTraceReader(strings.NewReader(in))
	require.NoError(t, err)

	first, err := r.Sample(0.1)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec2{}, first.HeadAngularDelta)
	_, ok := r.FrameDeltaTime()
	assert.False(t, ok, "frame without dt")
	assert.InDelta(t, 0, first.LeftEye.Sub(mgl32.Vec3{-0.032, 1.75, -0.08}).Len(), 1e-5)

	// 0.2 rad to the right over the frame's own 0.5 s
	second, err := r.Sample(0.1)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, second.HeadAngularDelta.X(), 1e-3)
	assert.InDelta(t, 0, second.HeadAngularDelta.Y(), 1e-3)
	dt, ok := r.FrameDeltaTime()
	assert.True(t, ok)
	assert.Equal(t, float32(0.5), dt)
}

func TestTraceReader_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", header + "\n{nope\n"},
		{"zero rotation", header + "\n" + `{"head":{"p":[0,1.7,0],"r":[0,0,0,0]},"waist":{"p":[0,1,0]},"left_hand":{"p":[0,1,0]},"right_hand":{"p":[0,1,0]}}` + "\n"},
		{"wrong type", header + "\n" + `{"head":{"p":"up"}}` + "\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewTraceReader(strings.NewReader(tc.in))
			require.NoError(t, err)
			_, err = r.Sample(0.01)
			assert.ErrorIs(t, err, ErrMalformedFrame)
			assert.ErrorContains(t, err, "line 2")
		})
	}
}

func TestNewTraceReader_BadHeader(t *testing.T) {
	for _, in := range []string{"", "\n\n", "{bad", `{"frame_rate":90}`} {
		_, err := NewTraceReader(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrMalformedFrame, "input %q", in)
	}
}

func TestOpenTrace(t *testing.T) {
	_, err := OpenTrace(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "trace.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(header+"\n"), 0o644))
	r, err := OpenTrace(path)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Sample(0.01)
	assert.ErrorIs(t, err, io.EOF)
}

func TestRecord(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewTraceWriter(&buf, Header{})
	require.NoError(t, err)

	p := Record(FromSamples(sample(0), sample(0.1)), w)
	for {
		_, err := p.Sample(0.02)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, 2, w.Frames())

	r, err := NewTraceReader(&buf)
	require.NoError(t, err)
	got, err := r.Sample(0)
	require.NoError(t, err)
	assert.InDelta(t, 0, got.Waist.Position.Sub(mgl32.Vec3{0, 1, 0}).Len(), 1e-5)
}

func TestRecord_KeepsRecordedDelta(t *testing.T) {
	var src bytes.Buffer
	w, err := NewTraceWriter(&src, Header{})
	require.NoError(t, err)
	require.NoError(t, w.Write(0.5, sample(0)))
	require.NoError(t, w.Flush())
	r, err := NewTraceReader(&src)
	require.NoError(t, err)

	var dst bytes.Buffer
	out, err := NewTraceWriter(&dst, Header{})
	require.NoError(t, err)
	p := Record(r, out)
	_, err = p.Sample(0.01)
	require.NoError(t, err)

	clock, ok := p.(Clock)
	require.True(t, ok)
	dt, ok := clock.FrameDeltaTime()
	assert.True(t, ok)
	assert.Equal(t, float32(0.5), dt)

	require.NoError(t, out.Flush())
	again, err := NewTraceReader(&dst)
	require.NoError(t, err)
	_, err = again.Sample(0)
	require.NoError(t, err)
	dt, _ = again.FrameDeltaTime()
	assert.Equal(t, float32(0.5), dt, "the copy carries the source delta, not the engine tick")

	_, ok = Record(FromSamples(sample(0)), out).(Clock).FrameDeltaTime()
	assert.False(t, ok)
}

func TestRecord_WriteError(t *testing.T) {
	w, err := NewTraceWriter(io.Discard, Header{})
	require.NoError(t, err)
	bad := sample(0)
	bad.HeadAngularDelta = mgl32.Vec2{float32(math.NaN()), 0}
	_, err = Record(FromSamples(bad), w).Sample(0.01)
	assert.ErrorContains(t, err, "record")
}
