package platform

import (
	"time"

	"timeclock/internal/core/tracker"
)

type idleProvider struct{}

func newIdleProvider() IdleProvider {
	return &idleProvider{}
}

func (provider *idleProvider) IdleDuration() (time.Duration, error) {
	return 0, tracker.ErrIdleUnsupported
}
