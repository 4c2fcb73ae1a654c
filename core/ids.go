// Package core holds the shared identifier and result types used by the
// scoring kernel and the visited tracker.
package core

import "math"

// PointID is a dense identifier for a stored vector.
// It is strictly 32-bit and used for all hot-path structures
// (code storage addressing, visited slots, result records).
type PointID uint32

// InvalidPointID is the reserved "no point" sentinel (all bits set).
const InvalidPointID = ^PointID(0)

// MaxPointID is the largest addressable PointID. InvalidPointID is excluded
// from the valid range.
const MaxPointID = InvalidPointID - 1

// Infinity seeds for best-score comparisons. A fresh best-similarity starts
// at NegInfinity, a fresh best-distance at PosInfinity.
var (
	PosInfinity = float32(math.Inf(1))
	NegInfinity = float32(math.Inf(-1))
)

// ScoredPoint is the only value handed to result consumers.
type ScoredPoint struct {
	ID    PointID
	Score float32
}

// GroupID derives the cooperating-group index for a global lane index.
// Lanes [g*groupSize, (g+1)*groupSize) form group g.
//
// SAFETY: Assumes groupSize > 0. Caller MUST validate before dispatch.
func GroupID(globalLane, groupSize uint32) uint32 {
	return globalLane / groupSize
}

// LaneID derives the lane index within its cooperating group.
//
// SAFETY: Assumes groupSize > 0. Caller MUST validate before dispatch.
func LaneID(globalLane, groupSize uint32) uint32 {
	return globalLane % groupSize
}
