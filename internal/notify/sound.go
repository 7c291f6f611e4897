package notify

import (
	"os/exec"

	"go.uber.org/zap"
)

// Chime plays the reminder sound through the platform's audio player.
// Playback is fire-and-forget so a slow or missing player never stalls
// the tick loop.
type Chime struct {
	log *zap.SugaredLogger
}

// NewChime creates the reminder chime.
func NewChime(log *zap.SugaredLogger) *Chime {
	return &Chime{log: log}
}

// Play triggers one chime.
func (chime *Chime) Play() {
	name, args := chimeCommand()
	if name == "" {
		return
	}
	go func() {
		if err := exec.Command(name, args...).Run(); err != nil {
			chime.log.Debugw("chime playback failed", "command", name, "error", err)
		}
	}()
}
