package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 400*time.Millisecond, nextBackoff(200*time.Millisecond, maxBackoff))
	assert.Equal(t, maxBackoff, nextBackoff(4*time.Second, maxBackoff))
	assert.Equal(t, maxBackoff, nextBackoff(maxBackoff, maxBackoff))
}

func TestSleepWithContext(t *testing.T) {
	assert.True(t, sleepWithContext(t.Context(), 0))
	assert.True(t, sleepWithContext(t.Context(), time.Millisecond))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.False(t, sleepWithContext(ctx, time.Hour))
}

func TestBackoffOrStop_Advances(t *testing.T) {
	b := 10 * time.Millisecond
	assert.True(t, backoffOrStop(t.Context(), &b))
	assert.Equal(t, 20*time.Millisecond, b)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.False(t, backoffOrStop(ctx, &b))
	assert.Equal(t, 20*time.Millisecond, b)
}
