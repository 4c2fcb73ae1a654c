package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidPointID(t *testing.T) {
	assert.Equal(t, PointID(math.MaxUint32), InvalidPointID)
	assert.Equal(t, InvalidPointID-1, MaxPointID)
}

func TestInfinitySeeds(t *testing.T) {
	assert.True(t, math.IsInf(float64(PosInfinity), 1))
	assert.True(t, math.IsInf(float64(NegInfinity), -1))
	assert.Less(t, NegInfinity, float32(-math.MaxFloat32))
	assert.Greater(t, PosInfinity, float32(math.MaxFloat32))
}

func TestGroupDerivation(t *testing.T) {
	tests := []struct {
		lane, groupSize uint32
		group, laneID   uint32
	}{
		{0, 4, 0, 0},
		{3, 4, 0, 3},
		{4, 4, 1, 0},
		{15, 4, 3, 3},
		{7, 1, 7, 0},
		{129, 32, 4, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.group, GroupID(tt.lane, tt.groupSize))
		assert.Equal(t, tt.laneID, LaneID(tt.lane, tt.groupSize))
	}
}
