package chunker

const (
	// DefaultOverlapPercent is used when no overlap percent is given.
	DefaultOverlapPercent = 10
	minOverlapPercent     = 10
	maxOverlapPercent     = 100

	// maxLengthNum/maxLengthDen is the hard chunk ceiling relative to goal.
	maxLengthNum = 5
	maxLengthDen = 4

	// thresholdDivisor yields the 10% tolerance band around goal and overlap.
	thresholdDivisor = 10

	// decayDivisor removes 2% of the goal per step.
	decayDivisor = 50

	// decayFloorPercent stops decay once goal drops to 70% of the original.
	decayFloorPercent = 70
)

// Thresholds are the token bounds derived from a goal length.
type Thresholds struct {
	GoalLength int
	MaxLength  int
	GoalMin    int
	GoalMax    int

	// Overlap bounds are zero when overlap is disabled.
	Overlap    int
	OverlapMin int
	OverlapMax int
}

// ClampOverlapPercent maps zero to the default and clamps everything else
// into [10, 100].
func ClampOverlapPercent(p int) int {
	switch {
	case p == 0:
		return DefaultOverlapPercent
	case p < minOverlapPercent:
		return minOverlapPercent
	case p > maxOverlapPercent:
		return maxOverlapPercent
	default:
		return p
	}
}

// NewThresholds computes the bounds for goal. overlapPercent must already be
// clamped; withOverlap false leaves the overlap bounds zero.
func NewThresholds(goal, overlapPercent int, withOverlap bool) Thresholds {
	mod := goal / thresholdDivisor
	t := Thresholds{
		GoalLength: goal,
		MaxLength:  goal * maxLengthNum / maxLengthDen,
		GoalMin:    goal - mod,
		GoalMax:    goal + mod,
	}
	if withOverlap {
		t.Overlap = goal * overlapPercent / 100
		omod := t.Overlap / thresholdDivisor
		t.OverlapMin = t.Overlap - omod
		t.OverlapMax = t.Overlap + omod
	}
	return t
}

// decay returns the next, smaller goal length.
func decay(goal int) int {
	return goal - max(1, goal/decayDivisor)
}

// aboveFloor reports whether goal is still above 70% of original.
func aboveFloor(goal, original int) bool {
	return goal*100 > original*decayFloorPercent
}
