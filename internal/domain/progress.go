package domain

import (
	"slices"

	"github.com/anki0476/rigveda-explorer/internal/leveling"
)

// ProgressSchemaVersion is written into every persisted record
const ProgressSchemaVersion = 1

// StartChapterID is the story node a fresh player starts on unless the story names another
const StartChapterID = "prologue"

// MaxXPAward bounds a single xp award
const MaxXPAward = 1_000_000

// ValidXPAward reports whether amount may be awarded in one go
func ValidXPAward(amount int) bool {
	return amount >= 0 && amount <= MaxXPAward
}

// ProgressRecord is the persisted progression state of a single player.
//
// XP is the amount accumulated within the current level, not a lifetime total.
// The slice fields are sets: members are unique and only ever added, except by a reset.
// StoryPath is an ordered history and may contain repeats.
type ProgressRecord struct {
	Version          int
	Level            int
	XP               int
	XPToNextLevel    int
	CompletedPaths   []string
	CurrentChapter   string
	StoryPath        []string
	UnlockedBadges   []string
	CollectedDeities []string
	Achievements     []string
	CurrentTitle     string
	Titles           []string
}

func NewProgressRecord() ProgressRecord {
	return NewProgressRecordAt(StartChapterID)
}

// NewProgressRecordAt is a fresh record positioned at the given start chapter
func NewProgressRecordAt(startChapterID string) ProgressRecord {
	return ProgressRecord{
		Version:          ProgressSchemaVersion,
		Level:            1,
		XP:               0,
		XPToNextLevel:    leveling.Threshold(1),
		CompletedPaths:   []string{},
		CurrentChapter:   startChapterID,
		StoryPath:        []string{startChapterID},
		UnlockedBadges:   []string{},
		CollectedDeities: []string{},
		Achievements:     []string{},
		CurrentTitle:     "",
		Titles:           []string{},
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

// Clone returns a deep copy so callers can never alias the store's record
func (r ProgressRecord) Clone() ProgressRecord {
	cp := r
	cp.CompletedPaths = cloneStrings(r.CompletedPaths)
	cp.StoryPath = cloneStrings(r.StoryPath)
	cp.UnlockedBadges = cloneStrings(r.UnlockedBadges)
	cp.CollectedDeities = cloneStrings(r.CollectedDeities)
	cp.Achievements = cloneStrings(r.Achievements)
	cp.Titles = cloneStrings(r.Titles)
	return cp
}

func (r ProgressRecord) HasDeity(id string) bool {
	return slices.Contains(r.CollectedDeities, id)
}

func (r ProgressRecord) HasBadge(id string) bool {
	return slices.Contains(r.UnlockedBadges, id)
}

func (r ProgressRecord) HasAchievement(id string) bool {
	return slices.Contains(r.Achievements, id)
}

func (r ProgressRecord) HasCompletedPath(id string) bool {
	return slices.Contains(r.CompletedPaths, id)
}

func (r ProgressRecord) HasVisited(chapterID string) bool {
	return slices.Contains(r.StoryPath, chapterID)
}

// AddToSet appends id unless already present. Returns whether the set changed.
func AddToSet(set *[]string, id string) bool {
	if slices.Contains(*set, id) {
		return false
	}
	*set = append(*set, id)
	return true
}

func dedupe(s []string) []string {
	out := make([]string, 0, len(s))
	for _, item := range s {
		if item == "" || slices.Contains(out, item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// XPIsSettled reports whether 0 <= XP < XPToNextLevel holds for the record's level
func (r ProgressRecord) XPIsSettled() bool {
	return r.Level >= 1 &&
		r.XPToNextLevel == leveling.Threshold(r.Level) &&
		r.XP >= 0 &&
		r.XP < r.XPToNextLevel
}

// Normalize repairs a record read from storage so that every invariant holds again
func (r ProgressRecord) Normalize() ProgressRecord {
	n := r.Clone()
	n.Version = ProgressSchemaVersion

	if n.Level < 1 {
		n.Level = 1
	}
	if n.Level > leveling.MaxLevel {
		n.Level = leveling.MaxLevel
	}
	if n.XP < 0 {
		n.XP = 0
	}
	// An xp overflow from an older writer is settled rather than discarded
	if settled, err := leveling.ApplyXP(n.Level, n.XP, 0); err == nil {
		n.Level = settled.Level
		n.XP = settled.XP
	}
	n.XPToNextLevel = leveling.Threshold(n.Level)

	n.CompletedPaths = dedupe(n.CompletedPaths)
	n.UnlockedBadges = dedupe(n.UnlockedBadges)
	n.CollectedDeities = dedupe(n.CollectedDeities)
	n.Achievements = dedupe(n.Achievements)
	n.Titles = dedupe(n.Titles)

	if n.CurrentChapter == "" {
		n.CurrentChapter = StartChapterID
	}
	if len(n.StoryPath) == 0 {
		n.StoryPath = []string{n.CurrentChapter}
	}
	if n.CurrentTitle != "" && !slices.Contains(n.Titles, n.CurrentTitle) {
		n.Titles = append(n.Titles, n.CurrentTitle)
	}

	return n
}
