package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldSampleDeterministic(t *testing.T) {
	first, err := ShouldSample("+15551234567", 50)
	assert.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := ShouldSample("+15551234567", 50)
		assert.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestShouldSampleBounds(t *testing.T) {
	sampled, err := ShouldSample("+15551234567", 0)
	assert.NoError(t, err)
	assert.False(t, sampled)

	sampled, err = ShouldSample("+15551234567", -5)
	assert.NoError(t, err)
	assert.False(t, sampled)

	sampled, err = ShouldSample("+15551234567", 100)
	assert.NoError(t, err)
	assert.True(t, sampled)

	sampled, err = ShouldSample("+15551234567", 150)
	assert.NoError(t, err)
	assert.True(t, sampled)
}

func TestShouldSampleEmptyCallerID(t *testing.T) {
	_, err := ShouldSample("", 50)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestShouldSampleApproximatesPercentage(t *testing.T) {
	sampled := 0
	total := 2000
	for i := 0; i < total; i++ {
		ok, err := ShouldSample(fmt.Sprintf("+1555%07d", i), 30)
		assert.NoError(t, err)
		if ok {
			sampled++
		}
	}

	rate := float64(sampled) / float64(total) * 100
	assert.InDelta(t, 30, rate, 5)
}
