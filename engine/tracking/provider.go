// Package tracking supplies pose samples to the engine: live providers, recorded traces and
// the helpers to derive what a tracker does not report.
package tracking

import (
	"errors"
	"io"

	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultIPD is the interpupillary distance used when a trace does not state one.
	DefaultIPD = 0.064

	eyeHeight  = 0.05
	eyeForward = 0.08
)

// ErrMalformedFrame is returned when a trace line cannot be turned into a pose sample.
var ErrMalformedFrame = errors.New("malformed trace frame")

// Provider produces one pose sample per frame. Returning io.EOF ends a run cleanly.
type Provider interface {
	// Sample returns the tracked body for the next frame.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	//
	// Returns:
	//   - common.PoseSample: the tracked body
	//   - error: io.EOF when the source is exhausted, any other error aborts the run
	Sample(deltaTime float32) (common.PoseSample, error)
}

// Clock is implemented by providers that replay recorded frames and know the delta each
// frame was captured with. The engine advances its timers by that delta instead of its own tick.
type Clock interface {
	// FrameDeltaTime returns the recorded delta of the sample last returned by Sample.
	//
	// Returns:
	//   - float32: seconds between that sample and the one before it
	//   - bool: false when the frame carried no delta
	FrameDeltaTime() (float32, bool)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(deltaTime float32) (common.PoseSample, error)

func (f ProviderFunc) Sample(deltaTime float32) (common.PoseSample, error) {
	return f(deltaTime)
}

// FromSamples returns a Provider that plays samples in order and then reports io.EOF.
//
// Parameters:
//   - samples: the frames to play
//
// Returns:
//   - Provider: the provider
func FromSamples(samples ...common.PoseSample) Provider {
	i := 0
	return ProviderFunc(func(float32) (common.PoseSample, error) {
		if i >= len(samples) {
			return common.PoseSample{}, io.EOF
		}
		i++
		return samples[i-1], nil
	})
}

// EyesFromHead places both eyes slightly above and ahead of the head, ipd apart.
//
// Parameters:
//   - head: the head pose
//   - ipd: interpupillary distance; DefaultIPD when not positive
//
// Returns:
//   - left, right: eye positions in world space
func EyesFromHead(head common.Pose, ipd float32) (left, right mgl32.Vec3) {
	if !(ipd > 0) {
		ipd = DefaultIPD
	}
	half := ipd / 2
	left = head.TransformPoint(common.Local(-half, eyeHeight, eyeForward))
	right = head.TransformPoint(common.Local(half, eyeHeight, eyeForward))
	return left, right
}
