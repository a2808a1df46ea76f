package progressrepository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/leveling"
)

var ErrCorruptRecord = errors.New("corrupt progress record")

// storedProgress is the persisted JSON shape. Records written before versioning have no
// version field and decode as version 0.
type storedProgress struct {
	Version          int      `json:"version"`
	Level            int      `json:"level"`
	XP               int      `json:"xp"`
	XPToNextLevel    int      `json:"xpToNextLevel"`
	CompletedPaths   []string `json:"completedPaths"`
	CurrentChapter   string   `json:"currentChapter"`
	StoryPath        []string `json:"storyPath"`
	UnlockedBadges   []string `json:"unlockedBadges"`
	CollectedDeities []string `json:"collectedDeities"`
	Achievements     []string `json:"achievements"`
	CurrentTitle     string   `json:"currentTitle,omitempty"`
	Titles           []string `json:"titles"`
}

func EncodeProgress(record domain.ProgressRecord) ([]byte, error) {
	record = record.Clone()
	data, err := json.Marshal(storedProgress{
		Version:          domain.ProgressSchemaVersion,
		Level:            record.Level,
		XP:               record.XP,
		XPToNextLevel:    record.XPToNextLevel,
		CompletedPaths:   record.CompletedPaths,
		CurrentChapter:   record.CurrentChapter,
		StoryPath:        record.StoryPath,
		UnlockedBadges:   record.UnlockedBadges,
		CollectedDeities: record.CollectedDeities,
		Achievements:     record.Achievements,
		CurrentTitle:     record.CurrentTitle,
		Titles:           record.Titles,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress: %w", err)
	}
	return data, nil
}

// DecodeProgress parses and normalizes a stored record. Records from a newer schema are rejected.
func DecodeProgress(data []byte) (domain.ProgressRecord, error) {
	var stored storedProgress
	if err := json.Unmarshal(data, &stored); err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	if stored.Version > domain.ProgressSchemaVersion {
		return domain.ProgressRecord{}, fmt.Errorf(
			"%w: unsupported version %d",
			ErrCorruptRecord,
			stored.Version,
		)
	}

	if stored.Level > leveling.MaxLevel {
		return domain.ProgressRecord{}, fmt.Errorf("%w: level %d out of range", ErrCorruptRecord, stored.Level)
	}

	record := domain.ProgressRecord{
		Version:          stored.Version,
		Level:            stored.Level,
		XP:               stored.XP,
		XPToNextLevel:    stored.XPToNextLevel,
		CompletedPaths:   stored.CompletedPaths,
		CurrentChapter:   stored.CurrentChapter,
		StoryPath:        stored.StoryPath,
		UnlockedBadges:   stored.UnlockedBadges,
		CollectedDeities: stored.CollectedDeities,
		Achievements:     stored.Achievements,
		CurrentTitle:     stored.CurrentTitle,
		Titles:           stored.Titles,
	}

	normalized := record.Normalize()
	if !normalized.XPIsSettled() {
		return domain.ProgressRecord{}, fmt.Errorf(
			"%w: level %d with xp %d cannot be settled",
			ErrCorruptRecord,
			stored.Level,
			stored.XP,
		)
	}

	return normalized, nil
}
