package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPriority(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"below_floor", -50, MinPriority},
		{"above_ceiling", 100, MaxPriority},
		{"in_range", 3, 3},
		{"at_floor", MinPriority, MinPriority},
		{"at_ceiling", MaxPriority, MaxPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampPriority(tt.in))
		})
	}
}

func TestClampMemThresholdMB(t *testing.T) {
	assert.Equal(t, MinMemThresholdMB, ClampMemThresholdMB(0))
	assert.Equal(t, MinMemThresholdMB, ClampMemThresholdMB(-10))
	assert.Equal(t, 500.0, ClampMemThresholdMB(500))
}

func TestClampTimeSliceMS(t *testing.T) {
	assert.Equal(t, MinTimeSliceMS, ClampTimeSliceMS(0))
	assert.Equal(t, MinTimeSliceMS, ClampTimeSliceMS(-5))
	assert.Equal(t, 50, ClampTimeSliceMS(50))
}

func TestProcessTableCloneIsIndependent(t *testing.T) {
	original := ProcessTable{{PID: 1, Priority: 0}, {PID: 2, Priority: 5}}
	clone := original.Clone()

	clone[0].Priority = 99
	assert.Equal(t, 0, original[0].Priority, "mutating the clone must not affect the original")
	assert.Equal(t, 99, clone[0].Priority)
}

func TestProcessTableCloneNil(t *testing.T) {
	var table ProcessTable
	assert.Nil(t, table.Clone())
}

func TestProcessTableIndexOf(t *testing.T) {
	table := ProcessTable{{PID: 10}, {PID: 20}, {PID: 30}}
	assert.Equal(t, 1, table.IndexOf(20))
	assert.Equal(t, -1, table.IndexOf(999))
}
