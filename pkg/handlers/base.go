package handlers

import (
	"time"

	"reservewatch/pkg/monitor"
)

// StatusProvider is satisfied by *monitor.Status.
type StatusProvider interface {
	Snapshot() monitor.Snapshot
}

// HandlerService serves the read-only status API.
type HandlerService struct {
	status    StatusProvider
	version   string
	startedAt time.Time
	now       func() time.Time
}

// NewHandlerService creates the handlers over status.
func NewHandlerService(status StatusProvider, version string) *HandlerService {
	return &HandlerService{
		status:    status,
		version:   version,
		startedAt: time.Now(),
		now:       time.Now,
	}
}
