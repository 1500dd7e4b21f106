// Package config holds the tunable knobs read by the camera director and its behaviors.
// A Configuration is a plain value: copy it, change it, and hand it back through
// SetConfiguration to hot-swap it without restarting smoothing.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable read by FromEnv.
const EnvPrefix = "FPSCAM_"

// ErrInvalidConfiguration is returned (joined with the individual problems) when Validate rejects a Configuration.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Configuration is the set of thresholds, distances, angles and timing constants used by the director
// and every camera behavior. Times are seconds, angles degrees, distances meters.
type Configuration struct {
	// CameraSwapTimeLock is the minimum time since the last mode switch before another switch may happen.
	CameraSwapTimeLock float32 `yaml:"camera_swap_time_lock" env:"CAMERA_SWAP_TIME_LOCK"`
	// ControlMovementThreshold bounds the horizontal head angular delta considered "steady".
	ControlMovementThreshold float32 `yaml:"control_movement_threshold" env:"CONTROL_MOVEMENT_THRESHOLD"`
	// ControlVerticalMovementThreshold bounds the vertical head angular delta considered "steady".
	ControlVerticalMovementThreshold float32 `yaml:"control_vertical_movement_threshold" env:"CONTROL_VERTICAL_MOVEMENT_THRESHOLD"`

	ReverseShoulder               bool    `yaml:"reverse_shoulder" env:"REVERSE_SHOULDER"`
	CameraShoulderAngle           float32 `yaml:"camera_shoulder_angle" env:"CAMERA_SHOULDER_ANGLE"`
	CameraShoulderSensitivity     float32 `yaml:"camera_shoulder_sensitivity" env:"CAMERA_SHOULDER_SENSITIVITY"`
	CameraShoulderPositioningTime float32 `yaml:"camera_shoulder_positioning_time" env:"CAMERA_SHOULDER_POSITIONING_TIME"`
	CameraShoulderDistance        float32 `yaml:"camera_shoulder_distance" env:"CAMERA_SHOULDER_DISTANCE"`
	// CameraBodyVerticalTargetOffset drops the in-between camera below the head while swapping sides.
	CameraBodyVerticalTargetOffset float32 `yaml:"camera_body_vertical_target_offset" env:"CAMERA_BODY_VERTICAL_TARGET_OFFSET"`

	RightHandDominant bool `yaml:"right_hand_dominant" env:"RIGHT_HAND_DOMINANT"`
	RightEyeDominant  bool `yaml:"right_eye_dominant" env:"RIGHT_EYE_DOMINANT"`
	// UseEyePosition places the first person camera at the dominant eye instead of the head.
	UseEyePosition bool `yaml:"use_eye_position" env:"USE_EYE_POSITION"`

	InBetweenCameraEnabled bool `yaml:"in_between_camera_enabled" env:"IN_BETWEEN_CAMERA_ENABLED"`
	CameraVerticalLock     bool `yaml:"camera_vertical_lock" env:"CAMERA_VERTICAL_LOCK"`

	// ForwardVerticalOffset, ForwardHorizontalOffset and ForwardDistance place the head reference
	// points used by the controller alignment check.
	ForwardVerticalOffset   float32 `yaml:"forward_vertical_offset" env:"FORWARD_VERTICAL_OFFSET"`
	ForwardHorizontalOffset float32 `yaml:"forward_horizontal_offset" env:"FORWARD_HORIZONTAL_OFFSET"`
	ForwardDistance         float32 `yaml:"forward_distance" env:"FORWARD_DISTANCE"`

	// RemoveAvatarInsteadOfHead hides the whole avatar rather than just the head for head-removing cameras.
	RemoveAvatarInsteadOfHead bool `yaml:"remove_avatar_instead_of_head" env:"REMOVE_AVATAR_INSTEAD_OF_HEAD"`

	CameraDefaultFov    float32 `yaml:"camera_default_fov" env:"CAMERA_DEFAULT_FOV"`
	CameraGunFov        float32 `yaml:"camera_gun_fov" env:"CAMERA_GUN_FOV"`
	CameraFovLerp       bool    `yaml:"camera_fov_lerp" env:"CAMERA_FOV_LERP"`
	CameraSmoothingLerp bool    `yaml:"camera_smoothing_lerp" env:"CAMERA_SMOOTHING_LERP"`

	CameraGunHeadAlignAngleTrigger float32 `yaml:"camera_gun_head_align_angle_trigger" env:"CAMERA_GUN_HEAD_ALIGN_ANGLE_TRIGGER"`
	CameraGunHeadDistanceTrigger   float32 `yaml:"camera_gun_head_distance_trigger" env:"CAMERA_GUN_HEAD_DISTANCE_TRIGGER"`
	CameraGunEyeVerticalOffset     float32 `yaml:"camera_gun_eye_vertical_offset" env:"CAMERA_GUN_EYE_VERTICAL_OFFSET"`
	CameraGunMaxTwoHandedDistance  float32 `yaml:"camera_gun_max_two_handed_distance" env:"CAMERA_GUN_MAX_TWO_HANDED_DISTANCE"`
	CameraGunMinTwoHandedDistance  float32 `yaml:"camera_gun_min_two_handed_distance" env:"CAMERA_GUN_MIN_TWO_HANDED_DISTANCE"`
	// CameraGunSmoothing is both the sights smoothing time and the sights blend rate.
	CameraGunSmoothing float32 `yaml:"camera_gun_smoothing" env:"CAMERA_GUN_SMOOTHING"`
}

// Default returns the stock configuration.
//
// Returns:
//   - Configuration: the default knob values
func Default() Configuration {
	return Configuration{
		CameraSwapTimeLock:               3,
		ControlMovementThreshold:         1,
		ControlVerticalMovementThreshold: 2,

		ReverseShoulder:                false,
		CameraShoulderAngle:            35,
		CameraShoulderSensitivity:      2,
		CameraShoulderPositioningTime:  0.8,
		CameraShoulderDistance:         2,
		CameraBodyVerticalTargetOffset: 0.5,

		RightHandDominant: true,
		RightEyeDominant:  true,
		UseEyePosition:    true,

		InBetweenCameraEnabled: false,
		CameraVerticalLock:     false,

		ForwardVerticalOffset:   0,
		ForwardHorizontalOffset: 5,
		ForwardDistance:         5,

		RemoveAvatarInsteadOfHead: true,

		CameraDefaultFov:    80,
		CameraGunFov:        80,
		CameraFovLerp:       false,
		CameraSmoothingLerp: true,

		CameraGunHeadAlignAngleTrigger: 20,
		CameraGunHeadDistanceTrigger:   0.5,
		CameraGunEyeVerticalOffset:     0.15,
		CameraGunMaxTwoHandedDistance:  0.8,
		CameraGunMinTwoHandedDistance:  0.15,
		CameraGunSmoothing:             0.3,
	}
}

// Validate reports every problem with c, joined together and wrapped with ErrInvalidConfiguration.
// Zero smoothing times are valid and mean "snap".
//
// Returns:
//   - error: nil if c is usable
func (c Configuration) Validate() error {
	var errs []error

	nonNegative := map[string]float32{
		"camera_swap_time_lock":               c.CameraSwapTimeLock,
		"control_movement_threshold":          c.ControlMovementThreshold,
		"control_vertical_movement_threshold": c.ControlVerticalMovementThreshold,
		"camera_shoulder_sensitivity":         c.CameraShoulderSensitivity,
		"camera_shoulder_positioning_time":    c.CameraShoulderPositioningTime,
		"camera_shoulder_distance":            c.CameraShoulderDistance,
		"forward_distance":                    c.ForwardDistance,
		"camera_gun_head_distance_trigger":    c.CameraGunHeadDistanceTrigger,
		"camera_gun_max_two_handed_distance":  c.CameraGunMaxTwoHandedDistance,
		"camera_gun_min_two_handed_distance":  c.CameraGunMinTwoHandedDistance,
		"camera_gun_smoothing":                c.CameraGunSmoothing,
	}
	for _, name := range slices.Sorted(maps.Keys(nonNegative)) {
		if v := nonNegative[name]; v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %g", name, v))
		}
	}

	if c.CameraGunMinTwoHandedDistance >= c.CameraGunMaxTwoHandedDistance {
		errs = append(errs, fmt.Errorf("camera_gun_min_two_handed_distance (%g) must be below camera_gun_max_two_handed_distance (%g)",
			c.CameraGunMinTwoHandedDistance, c.CameraGunMaxTwoHandedDistance))
	}
	if c.CameraDefaultFov <= 0 || c.CameraDefaultFov >= 180 {
		errs = append(errs, fmt.Errorf("camera_default_fov must be within (0, 180), got %g", c.CameraDefaultFov))
	}
	if c.CameraGunFov <= 0 || c.CameraGunFov >= 180 {
		errs = append(errs, fmt.Errorf("camera_gun_fov must be within (0, 180), got %g", c.CameraGunFov))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfiguration, errors.Join(errs...))
}

// FromEnv overlays FPSCAM_* environment variables onto base. Unset variables keep the base value.
//
// Parameters:
//   - base: the configuration to start from, typically Default() or a loaded file
//
// Returns:
//   - Configuration: the overlaid configuration
//   - error: error if a variable cannot be parsed
func FromEnv(base Configuration) (Configuration, error) {
	cfg := base
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return base, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration file on top of Default(). Keys missing from the file keep their defaults.
//
// Parameters:
//   - path: location of the YAML file
//
// Returns:
//   - Configuration: the loaded configuration
//   - error: error if the file cannot be read, decoded or fails validation
func LoadFile(path string) (Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return Configuration{}, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return Configuration{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes YAML from r on top of Default() and validates the result.
func Read(r io.Reader) (Configuration, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Configuration{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// Write encodes cfg as YAML to w.
//
// Parameters:
//   - w: destination writer
//   - cfg: the configuration to encode
//
// Returns:
//   - error: error if encoding fails
func Write(w io.Writer, cfg Configuration) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// Apply decodes a YAML mapping of overrides onto c. Only the keys present in overrides change.
//
// Parameters:
//   - overrides: field name to value, using the yaml key names
//
// Returns:
//   - Configuration: the updated configuration
//   - error: error if a key is unknown or a value has the wrong type
func (c Configuration) Apply(overrides map[string]any) (Configuration, error) {
	raw, err := yaml.Marshal(overrides)
	if err != nil {
		return c, fmt.Errorf("encode overrides: %w", err)
	}
	out := c
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return c, fmt.Errorf("decode overrides: %w", err)
	}
	return out, nil
}

// LogValue lets a Configuration be logged as one structured group.
func (c Configuration) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("camera_swap_time_lock", float64(c.CameraSwapTimeLock)),
		slog.Float64("control_movement_threshold", float64(c.ControlMovementThreshold)),
		slog.Float64("control_vertical_movement_threshold", float64(c.ControlVerticalMovementThreshold)),
		slog.Bool("camera_vertical_lock", c.CameraVerticalLock),
		slog.Float64("camera_shoulder_distance", float64(c.CameraShoulderDistance)),
		slog.Float64("camera_shoulder_angle", float64(c.CameraShoulderAngle)),
		slog.Float64("camera_shoulder_positioning_time", float64(c.CameraShoulderPositioningTime)),
		slog.Bool("reverse_shoulder", c.ReverseShoulder),
		slog.Float64("forward_vertical_offset", float64(c.ForwardVerticalOffset)),
		slog.Float64("forward_horizontal_offset", float64(c.ForwardHorizontalOffset)),
		slog.Float64("forward_distance", float64(c.ForwardDistance)),
		slog.Bool("remove_avatar_instead_of_head", c.RemoveAvatarInsteadOfHead),
		slog.Bool("in_between_camera_enabled", c.InBetweenCameraEnabled),
		slog.Bool("right_hand_dominant", c.RightHandDominant),
		slog.Float64("camera_gun_fov", float64(c.CameraGunFov)),
		slog.Float64("camera_gun_head_align_angle_trigger", float64(c.CameraGunHeadAlignAngleTrigger)),
		slog.Float64("camera_gun_head_distance_trigger", float64(c.CameraGunHeadDistanceTrigger)),
		slog.Float64("camera_gun_eye_vertical_offset", float64(c.CameraGunEyeVerticalOffset)),
		slog.Float64("camera_gun_max_two_handed_distance", float64(c.CameraGunMaxTwoHandedDistance)),
		slog.Float64("camera_gun_min_two_handed_distance", float64(c.CameraGunMinTwoHandedDistance)),
		slog.Float64("camera_gun_smoothing", float64(c.CameraGunSmoothing)),
	)
}
