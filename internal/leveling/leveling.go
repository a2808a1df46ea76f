package leveling

import (
	"errors"
	"fmt"
	"math"
)

// XPPerLevel is the threshold step: level L needs L*XPPerLevel xp to reach L+1
const XPPerLevel = 100

// MaxLevel keeps every threshold representable as an int
const MaxLevel = math.MaxInt / XPPerLevel

var (
	ErrNegativeXP   = errors.New("xp delta must not be negative")
	ErrInvalidLevel = errors.New("level must be between 1 and MaxLevel")
	ErrXPOverflow   = errors.New("xp total overflows")
)

// Result is the settled state after applying an xp delta
type Result struct {
	Level     int
	XP        int
	Threshold int
	LeveledUp bool
}

// Threshold returns the xp needed to leave the given level
func Threshold(level int) int {
	return level * XPPerLevel
}

// ApplyXP adds delta to the xp held within the current level and consumes
// thresholds until the remainder is below the threshold of the resulting level.
func ApplyXP(level, xp, delta int) (Result, error) {
	if level < 1 || level > MaxLevel {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidLevel, level)
	}
	if delta < 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrNegativeXP, delta)
	}
	if xp < 0 {
		return Result{}, fmt.Errorf("%w: current xp is %d", ErrNegativeXP, xp)
	}

	if delta > math.MaxInt-xp {
		return Result{}, fmt.Errorf("%w: %d + %d", ErrXPOverflow, xp, delta)
	}

	newLevel := level
	newXP := xp + delta
	for newXP >= Threshold(newLevel) {
		if newLevel == MaxLevel {
			return Result{}, fmt.Errorf("%w: level cap reached", ErrXPOverflow)
		}
		newXP -= Threshold(newLevel)
		newLevel++
	}

	return Result{
		Level:     newLevel,
		XP:        newXP,
		Threshold: Threshold(newLevel),
		LeveledUp: newLevel > level,
	}, nil
}
