package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminationStopsOnStagnation(t *testing.T) {
	term := NewTermination(1000, 5)

	// 第一次观察总是视为提升
	assert.False(t, term.Observe(0.5))
	assert.Equal(t, 0, term.Stagnation())

	stopped := 0
	for i := 0; i < 10 && stopped == 0; i++ {
		if term.Observe(0.5) {
			stopped = term.Generation()
		}
	}

	assert.Equal(t, 7, stopped)
	assert.Equal(t, 6, term.Stagnation())
}

func TestTerminationResetsOnImprovement(t *testing.T) {
	term := NewTermination(1000, 2)

	term.Observe(0.1)
	term.Observe(0.1)
	term.Observe(0.1)
	assert.Equal(t, 2, term.Stagnation())

	assert.False(t, term.Observe(0.2))
	assert.Equal(t, 0, term.Stagnation())
}

func TestTerminationStopsOnGenerationLimit(t *testing.T) {
	term := NewTermination(10, 100)

	best := 0.0
	for i := 1; i < 10; i++ {
		best += 0.01
		assert.False(t, term.Observe(best), "generation %d", i)
	}
	assert.True(t, term.Observe(best+0.01))
	assert.Equal(t, 10, term.Generation())
	assert.True(t, term.Done())
}
