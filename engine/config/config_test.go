package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, float32(3), cfg.CameraSwapTimeLock)
	assert.Equal(t, float32(0.8), cfg.CameraShoulderPositioningTime)
	assert.True(t, cfg.RightHandDominant)
	assert.True(t, cfg.CameraSmoothingLerp)
	assert.False(t, cfg.InBetweenCameraEnabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Configuration)
		wantMsg string
	}{
		{"negative lock", func(c *Configuration) { c.CameraSwapTimeLock = -1 }, "camera_swap_time_lock"},
		{"negative smoothing", func(c *Configuration) { c.CameraGunSmoothing = -0.1 }, "camera_gun_smoothing"},
		{"min above max", func(c *Configuration) { c.CameraGunMinTwoHandedDistance = 1 }, "must be below"},
		{"zero fov", func(c *Configuration) { c.CameraDefaultFov = 0 }, "camera_default_fov"},
		{"wide gun fov", func(c *Configuration) { c.CameraGunFov = 180 }, "camera_gun_fov"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestValidate_ZeroSmoothingAllowed(t *testing.T) {
	cfg := Default()
	cfg.CameraGunSmoothing = 0
	cfg.CameraShoulderPositioningTime = 0
	assert.NoError(t, cfg.Validate())
}

func TestValidate_JoinsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.CameraSwapTimeLock = -1
	cfg.CameraGunFov = -5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camera_swap_time_lock")
	assert.Contains(t, err.Error(), "camera_gun_fov")
}

func TestFromEnv_OverlaysOnlySetVariables(t *testing.T) {
	t.Setenv("FPSCAM_CAMERA_SWAP_TIME_LOCK", "1.5")
	t.Setenv("FPSCAM_IN_BETWEEN_CAMERA_ENABLED", "true")

	cfg, err := FromEnv(Default())
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), cfg.CameraSwapTimeLock)
	assert.True(t, cfg.InBetweenCameraEnabled)
	assert.Equal(t, float32(35), cfg.CameraShoulderAngle)
}

func TestFromEnv_BadValue(t *testing.T) {
	t.Setenv("FPSCAM_CAMERA_SHOULDER_ANGLE", "wide")

	base := Default()
	cfg, err := FromEnv(base)
	require.Error(t, err)
	assert.Equal(t, base, cfg)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.CameraShoulderAngle = 42
	cfg.ReverseShoulder = true

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cfg))
	assert.Contains(t, buf.String(), "camera_shoulder_angle: 42")

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestRead_PartialFileKeepsDefaults(t *testing.T) {
	got, err := Read(strings.NewReader("camera_vertical_lock: true\n"))
	require.NoError(t, err)

	want := Default()
	want.CameraVerticalLock = true
	assert.Equal(t, want, got)
}

func TestRead_Empty(t *testing.T) {
	got, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestRead_UnknownKey(t *testing.T) {
	_, err := Read(strings.NewReader("camera_zoom: 3\n"))
	assert.Error(t, err)
}

func TestRead_Invalid(t *testing.T) {
	_, err := Read(strings.NewReader("camera_gun_fov: 0\n"))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fpscam.yaml")
	require.NoError(t, os.WriteFile(path, []byte("camera_shoulder_distance: 3\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, float32(3), cfg.CameraShoulderDistance)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApply(t *testing.T) {
	cfg, err := Default().Apply(map[string]any{
		"camera_swap_time_lock":     0.5,
		"in_between_camera_enabled": true,
	})
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), cfg.CameraSwapTimeLock)
	assert.True(t, cfg.InBetweenCameraEnabled)
	assert.Equal(t, float32(2), cfg.CameraShoulderDistance)

	_, err = Default().Apply(map[string]any{"not_a_knob": 1})
	assert.Error(t, err)
}
