package avatar

// AvatarBuilderOption is a functional option for configuring an Avatar.
type AvatarBuilderOption func(*avatarImpl)

// WithHeadVisible sets the initial head visibility.
//
// Parameters:
//   - visible: whether the head starts shown
//
// Returns:
//   - AvatarBuilderOption: option function to apply
func WithHeadVisible(visible bool) AvatarBuilderOption {
	return func(a *avatarImpl) {
		a.head.Store(visible)
	}
}

// WithAvatarVisible sets the initial avatar visibility.
func WithAvatarVisible(visible bool) AvatarBuilderOption {
	return func(a *avatarImpl) {
		a.avatar.Store(visible)
	}
}

// WithOnChange registers the change callback at construction.
func WithOnChange(fn ChangeFunc) AvatarBuilderOption {
	return func(a *avatarImpl) {
		a.onChange = fn
	}
}
