package probe

import (
	"time"

	"reservewatch/pkg/config"
)

// Kind classifies the outcome of one probe.
type Kind int

const (
	Available Kind = iota + 1
	Unavailable
	Errored
)

func (k Kind) String() string {
	switch k {
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Waypoint names a step of the selection flow.
type Waypoint string

const (
	WaypointOpen         Waypoint = "open"
	WaypointModel        Waypoint = "model"
	WaypointColor        Waypoint = "color"
	WaypointCapacity     Waypoint = "capacity"
	WaypointConfirmation Waypoint = "confirmation"
)

// Verdict is the result of one probe. Target is set for Available; Waypoint
// tells where an Unavailable or Errored probe stopped; Detail is non-empty for
// Errored, and Trace is set when the failure was not a recognised browser fault.
type Verdict struct {
	Kind       Kind
	Target     config.TargetConfig
	Waypoint   Waypoint
	Detail     string
	Trace      string
	Unexpected bool

	ProbeID   string
	CheckedAt time.Time
	Duration  time.Duration
}

// IsAvailable reports whether the variant can be reserved.
func (v Verdict) IsAvailable() bool {
	return v.Kind == Available
}
