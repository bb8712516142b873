package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeIsValid(t *testing.T) {
	assert.True(t, ModeGaming.IsValid())
	assert.True(t, ModeProductivity.IsValid())
	assert.True(t, ModePowerSaving.IsValid())
	assert.False(t, Mode("turbo").IsValid())
	assert.False(t, Mode("").IsValid())
}

func TestAlgorithmIsValid(t *testing.T) {
	valid := []Algorithm{AlgorithmFCFS, AlgorithmSJF, AlgorithmPriority, AlgorithmRR, AlgorithmHybrid}
	for _, a := range valid {
		assert.True(t, a.IsValid(), "%s should be valid", a)
	}
	assert.False(t, Algorithm("round_robin").IsValid())
}
