package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestChimeCommandShape(t *testing.T) {
	name, args := chimeCommand()
	if name == "" {
		t.Skip("no audio player available on this machine")
	}
	assert.NotEmpty(t, args)
}

func TestNewChime(t *testing.T) {
	chime := NewChime(zap.NewNop().Sugar())
	assert.NotNil(t, chime)
}
