package domaintest

import (
	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/leveling"
)

type progressBuilder struct {
	record domain.ProgressRecord
}

func (pb *progressBuilder) WithLevel(level int) *progressBuilder {
	pb.record.Level = level
	pb.record.XPToNextLevel = leveling.Threshold(level)
	return pb
}

func (pb *progressBuilder) WithXP(xp int) *progressBuilder {
	pb.record.XP = xp
	return pb
}

func (pb *progressBuilder) WithDeities(ids ...string) *progressBuilder {
	pb.record.CollectedDeities = append(pb.record.CollectedDeities, ids...)
	return pb
}

func (pb *progressBuilder) WithBadges(ids ...string) *progressBuilder {
	pb.record.UnlockedBadges = append(pb.record.UnlockedBadges, ids...)
	return pb
}

func (pb *progressBuilder) WithAchievements(ids ...string) *progressBuilder {
	pb.record.Achievements = append(pb.record.Achievements, ids...)
	return pb
}

func (pb *progressBuilder) WithCompletedPaths(ids ...string) *progressBuilder {
	pb.record.CompletedPaths = append(pb.record.CompletedPaths, ids...)
	return pb
}

func (pb *progressBuilder) WithStoryPath(ids ...string) *progressBuilder {
	pb.record.StoryPath = append(pb.record.StoryPath, ids...)
	if len(ids) > 0 {
		pb.record.CurrentChapter = ids[len(ids)-1]
	}
	return pb
}

func (pb *progressBuilder) WithTitle(title string) *progressBuilder {
	pb.record.CurrentTitle = title
	pb.record.Titles = append(pb.record.Titles, title)
	return pb
}

func (pb *progressBuilder) Build() domain.ProgressRecord {
	// Clone, so further mutations to the builder don't affect the returned record
	return pb.record.Clone()
}

func NewProgressBuilder() *progressBuilder {
	return &progressBuilder{
		record: domain.NewProgressRecord(),
	}
}
