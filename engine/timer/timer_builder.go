package timer

// TimersBuilderOption is a functional option for presetting a Timers instance.
type TimersBuilderOption func(*timersImpl)

// WithGlobal presets the global timer, e.g. to let the first mode switch happen immediately.
//
// Parameters:
//   - seconds: initial global timer value
//
// Returns:
//   - TimersBuilderOption: option function to apply
func WithGlobal(seconds float32) TimersBuilderOption {
	return func(t *timersImpl) {
		t.global = seconds
	}
}

// WithController presets the controller timer.
//
// Parameters:
//   - seconds: initial controller timer value
//
// Returns:
//   - TimersBuilderOption: option function to apply
func WithController(seconds float32) TimersBuilderOption {
	return func(t *timersImpl) {
		t.controller = seconds
	}
}

// WithCameraAction presets the camera action timer.
//
// Parameters:
//   - seconds: initial camera action timer value
//
// Returns:
//   - TimersBuilderOption: option function to apply
func WithCameraAction(seconds float32) TimersBuilderOption {
	return func(t *timersImpl) {
		t.cameraAction = seconds
	}
}

// WithDeltaTime presets the last frame delta without advancing any timer.
func WithDeltaTime(deltaTime float32) TimersBuilderOption {
	return func(t *timersImpl) {
		t.deltaTime = deltaTime
	}
}
