package monitor

import (
	"sync"
	"time"

	"reservewatch/pkg/config"
	"reservewatch/pkg/probe"
)

// TargetView is the public part of the target; the bot token never leaves
// the config.
type TargetView struct {
	URL      string `json:"url"`
	Model    string `json:"model"`
	Color    string `json:"color"`
	Capacity string `json:"capacity"`
}

// Snapshot is a point-in-time copy of the loop's progress.
type Snapshot struct {
	StartedAt           time.Time  `json:"started_at"`
	Iterations          int        `json:"iterations"`
	LastVerdict         string     `json:"last_verdict,omitempty"`
	LastWaypoint        string     `json:"last_waypoint,omitempty"`
	LastDetail          string     `json:"last_detail,omitempty"`
	LastProbeID         string     `json:"last_probe_id,omitempty"`
	LastCheckedAt       *time.Time `json:"last_checked_at,omitempty"`
	LastProbeDurationMs int64      `json:"last_probe_duration_ms"`
	LastAvailableAt     *time.Time `json:"last_available_at,omitempty"`
	UnavailableStreak   int        `json:"unavailable_streak"`
	NotificationsSent   int        `json:"notifications_sent"`
	NotificationsFailed int        `json:"notifications_failed"`
	Target              TargetView `json:"target"`
}

// Status is written by the poll loop and read by the status server.
type Status struct {
	mu   sync.RWMutex
	snap Snapshot
}

func newStatus(target *config.TargetConfig, startedAt time.Time) *Status {
	return &Status{snap: Snapshot{
		StartedAt: startedAt,
		Target: TargetView{
			URL:      target.URL,
			Model:    target.Model,
			Color:    target.Color,
			Capacity: target.Capacity,
		},
	}}
}

func (s *Status) record(v probe.Verdict, streak int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	checkedAt := v.CheckedAt
	s.snap.Iterations++
	s.snap.LastVerdict = v.Kind.String()
	s.snap.LastWaypoint = string(v.Waypoint)
	s.snap.LastDetail = v.Detail
	s.snap.LastProbeID = v.ProbeID
	s.snap.LastCheckedAt = &checkedAt
	s.snap.LastProbeDurationMs = v.Duration.Milliseconds()
	s.snap.UnavailableStreak = streak
	if v.Kind == probe.Available {
		s.snap.LastAvailableAt = &checkedAt
	}
}

func (s *Status) recordDelivery(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ok {
		s.snap.NotificationsSent++
	} else {
		s.snap.NotificationsFailed++
	}
}

// Snapshot returns a copy safe to use after the lock is released.
func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snap
	if snap.LastCheckedAt != nil {
		t := *snap.LastCheckedAt
		snap.LastCheckedAt = &t
	}
	if snap.LastAvailableAt != nil {
		t := *snap.LastAvailableAt
		snap.LastAvailableAt = &t
	}
	return snap
}
