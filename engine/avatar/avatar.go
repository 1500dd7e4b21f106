// Package avatar tracks which parts of the player avatar the camera should see.
package avatar

import (
	"sync"
	"sync/atomic"
)

// Part names the avatar part whose visibility changed.
type Part string

const (
	PartHead   Part = "head"
	PartAvatar Part = "avatar"
)

// ChangeFunc is called after a part's visibility changes.
type ChangeFunc func(part Part, visible bool)

type avatarImpl struct {
	head   atomic.Bool
	avatar atomic.Bool

	mu       sync.Mutex
	onChange ChangeFunc
}

// Avatar receives visibility decisions from the director and exposes them to the renderer.
// Both parts start visible. Setters are safe to call from any goroutine.
type Avatar interface {
	// SetShowHead shows or hides the head.
	SetShowHead(show bool)

	// SetShowAvatar shows or hides the whole avatar.
	SetShowAvatar(show bool)

	// HeadVisible reports whether the head is shown.
	HeadVisible() bool

	// AvatarVisible reports whether the avatar is shown.
	AvatarVisible() bool

	// OnChange registers fn to be called whenever a part flips visibility. Repeating the
	// current value does not call it. A nil fn removes the callback.
	//
	// Parameters:
	//   - fn: the callback
	OnChange(fn ChangeFunc)
}

var _ Avatar = &avatarImpl{}

// NewAvatar creates an Avatar with head and body visible.
//
// Parameters:
//   - options: functional options to configure the avatar
//
// Returns:
//   - Avatar: the newly created avatar
func NewAvatar(options ...AvatarBuilderOption) Avatar {
	a := &avatarImpl{}
	a.head.Store(true)
	a.avatar.Store(true)
	for _, option := range options {
		option(a)
	}
	return a
}

func (a *avatarImpl) SetShowHead(show bool) {
	if a.head.Swap(show) != show {
		a.notify(PartHead, show)
	}
}

func (a *avatarImpl) SetShowAvatar(show bool) {
	if a.avatar.Swap(show) != show {
		a.notify(PartAvatar, show)
	}
}

func (a *avatarImpl) HeadVisible() bool {
	return a.head.Load()
}

func (a *avatarImpl) AvatarVisible() bool {
	return a.avatar.Load()
}

func (a *avatarImpl) OnChange(fn ChangeFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

func (a *avatarImpl) notify(part Part, visible bool) {
	a.mu.Lock()
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn(part, visible)
	}
}
