package achievements

import (
	"slices"

	"github.com/anki0476/rigveda-explorer/internal/domain"
)

// Condition is a predicate over a settled progress record
type Condition func(record domain.ProgressRecord) bool

func MinDeities(n int) Condition {
	return func(record domain.ProgressRecord) bool {
		return len(record.CollectedDeities) >= n
	}
}

func HasDeities(ids ...string) Condition {
	return func(record domain.ProgressRecord) bool {
		for _, id := range ids {
			if !slices.Contains(record.CollectedDeities, id) {
				return false
			}
		}
		return true
	}
}

func MinLevel(level int) Condition {
	return func(record domain.ProgressRecord) bool {
		return record.Level >= level
	}
}

func MinXP(xp int) Condition {
	return func(record domain.ProgressRecord) bool {
		return record.XP >= xp
	}
}

func MinCompletedPaths(n int) Condition {
	return func(record domain.ProgressRecord) bool {
		return len(record.CompletedPaths) >= n
	}
}

func MinBadges(n int) Condition {
	return func(record domain.ProgressRecord) bool {
		return len(record.UnlockedBadges) >= n
	}
}

func VisitedChapter(chapterID string) Condition {
	return func(record domain.ProgressRecord) bool {
		return record.HasVisited(chapterID)
	}
}

func AllOf(conditions ...Condition) Condition {
	return func(record domain.ProgressRecord) bool {
		for _, condition := range conditions {
			if !condition(record) {
				return false
			}
		}
		return true
	}
}
