package timer

type timersImpl struct {
	deltaTime float32

	global       float32
	controller   float32
	cameraAction float32
	removeAvatar float32
	sights       float32
}

// Timers accumulates frame deltas into the named timers read and reset by the camera director and its behaviors.
// All values are seconds. Timers is frame-driven and not safe for concurrent use.
type Timers interface {
	// AddTime advances every timer by deltaTime and records it as the last frame delta.
	// Non-positive deltas are recorded but do not move the timers.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	AddTime(deltaTime float32)

	// DeltaTime returns the delta passed to the most recent AddTime call.
	//
	// Returns:
	//   - float32: the last frame delta in seconds
	DeltaTime() float32

	// Global returns the time since the last camera mode switch.
	Global() float32

	// Controller returns the time since the last mode classification.
	Controller() float32

	// CameraAction returns the time since the last behavior sub-state transition (such as a shoulder swap).
	CameraAction() float32

	// RemoveAvatar returns the time since avatar visibility was last updated.
	RemoveAvatar() float32

	// Sights returns the time since the first person camera was last entered.
	Sights() float32

	// ResetGlobal zeroes the global timer.
	ResetGlobal()

	// ResetController zeroes the controller timer.
	ResetController()

	// ResetCameraAction zeroes the camera action timer.
	ResetCameraAction()

	// ResetRemoveAvatar zeroes the remove avatar timer.
	ResetRemoveAvatar()

	// ResetSights zeroes the sights timer.
	ResetSights()

	// SetGlobal overrides the global timer.
	//
	// Parameters:
	//   - seconds: the new value of the global timer
	SetGlobal(seconds float32)
}

var _ Timers = &timersImpl{}

// NewTimers creates a Timers with every timer at zero unless overridden by options.
//
// Parameters:
//   - options: functional options to preset timer values
//
// Returns:
//   - Timers: the newly created timer set
func NewTimers(options ...TimersBuilderOption) Timers {
	t := &timersImpl{}
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *timersImpl) AddTime(deltaTime float32) {
	t.deltaTime = deltaTime
	if deltaTime <= 0 {
		return
	}
	t.global += deltaTime
	t.controller += deltaTime
	t.cameraAction += deltaTime
	t.removeAvatar += deltaTime
	t.sights += deltaTime
}

func (t *timersImpl) DeltaTime() float32 {
	return t.deltaTime
}

func (t *timersImpl) Global() float32 {
	return t.global
}

func (t *timersImpl) Controller() float32 {
	return t.controller
}

func (t *timersImpl) CameraAction() float32 {
	return t.cameraAction
}

func (t *timersImpl) RemoveAvatar() float32 {
	return t.removeAvatar
}

func (t *timersImpl) Sights() float32 {
	return t.sights
}

func (t *timersImpl) ResetGlobal() {
	t.global = 0
}

func (t *timersImpl) ResetController() {
	t.controller = 0
}

func (t *timersImpl) ResetCameraAction() {
	t.cameraAction = 0
}

func (t *timersImpl) ResetRemoveAvatar() {
	t.removeAvatar = 0
}

func (t *timersImpl) ResetSights() {
	t.sights = 0
}

func (t *timersImpl) SetGlobal(seconds float32) {
	t.global = seconds
}
