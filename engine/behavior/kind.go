package behavior

import (
	"fmt"
	"strings"
)

// Kind names a camera behavior. It is used in logs, traces and scenario scripts.
type Kind string

const (
	KindFirstPerson   Kind = "first_person"
	KindAimDownSights Kind = "aim_down_sights"
	KindOverShoulder  Kind = "over_shoulder"
	KindBetween       Kind = "between"
)

// ParseKind converts a kind name into a Kind.
//
// Parameters:
//   - s: the kind name, case insensitive
//
// Returns:
//   - Kind: the parsed kind
//   - error: error if s names no known behavior
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindFirstPerson, KindAimDownSights, KindOverShoulder, KindBetween:
		return k, nil
	default:
		return "", fmt.Errorf("unknown camera kind %q", s)
	}
}

// Side is the shoulder the over-shoulder camera sits behind.
type Side int8

const (
	SideLeft  Side = -1
	SideRight Side = 1
)

// SideOf maps the sign of a horizontal head angular delta onto a Side. Zero counts as right.
func SideOf(horizontalDelta float32) Side {
	if horizontalDelta < 0 {
		return SideLeft
	}
	return SideRight
}

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// ParseSide converts "left" or "right" into a Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return SideLeft, nil
	case "right":
		return SideRight, nil
	default:
		return SideRight, fmt.Errorf("unknown side %q", s)
	}
}
