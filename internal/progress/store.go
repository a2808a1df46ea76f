package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/leveling"
	"github.com/anki0476/rigveda-explorer/internal/logging"
	"github.com/anki0476/rigveda-explorer/internal/reporting"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Persistence interface {
	LoadProgress(ctx context.Context, playerID string) (domain.ProgressRecord, error)
	SaveProgress(ctx context.Context, playerID string, record domain.ProgressRecord) error
	DeleteProgress(ctx context.Context, playerID string) error
}

type Publisher interface {
	Publish(notification domain.Notification) string
}

type Evaluator interface {
	Evaluate(record domain.ProgressRecord) []domain.Achievement
	Lookup(id string) (domain.Achievement, bool)
}

// ChoiceOutcome is everything a single story choice does to the record
type ChoiceOutcome struct {
	Reward        domain.Reward
	NextChapterID string
	// CompletedPath is recorded as a finished path when not empty
	CompletedPath string
}

// Store owns one player's progress record. Every mutation is a serialized transaction:
// the new record is computed and settled, saved, and only then are notifications published
// and the record made visible.
type Store struct {
	playerID     string
	persistence  Persistence
	publisher    Publisher
	evaluator    Evaluator
	startChapter string
	nowFunc      func() time.Time

	mu     sync.Mutex
	record domain.ProgressRecord
	closed bool
}

func NewStore(
	ctx context.Context,
	playerID string,
	persistence Persistence,
	publisher Publisher,
	evaluator Evaluator,
	startChapter string,
	nowFunc func() time.Time,
) *Store {
	s := &Store{
		playerID:     playerID,
		persistence:  persistence,
		publisher:    publisher,
		evaluator:    evaluator,
		startChapter: startChapter,
		nowFunc:      nowFunc,
	}
	s.record = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) domain.ProgressRecord {
	record, err := s.persistence.LoadProgress(ctx, s.playerID)
	if errors.Is(err, domain.ErrProgressNotFound) {
		return s.initialRecord()
	} else if err != nil {
		// Corrupt or unreadable state is replaced by a fresh record, never surfaced
		reporting.Report(ctx, fmt.Errorf("failed to load progress: %w", err), map[string]string{
			"playerId": s.playerID,
		})
		return s.initialRecord()
	}

	normalized := record.Normalize()
	if !normalized.XPIsSettled() {
		reporting.Report(ctx, fmt.Errorf("loaded progress cannot be settled: level %d xp %d", record.Level, record.XP), map[string]string{
			"playerId": s.playerID,
		})
		return s.initialRecord()
	}
	return normalized
}

func (s *Store) initialRecord() domain.ProgressRecord {
	return domain.NewProgressRecordAt(s.startChapter)
}

// Close waits for a running transaction and rejects every later mutation, so a replacement
// store for the same player can load without racing this one's writes.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
}

func (s *Store) errIfClosed(operation string) error {
	if s.closed {
		return fmt.Errorf("%s: %w: store closed", operation, domain.ErrTemporarilyUnavailable)
	}
	return nil
}

func (s *Store) PlayerID() string {
	return s.playerID
}

func (s *Store) Snapshot() domain.ProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.record.Clone()
}

// transaction is the working copy of a single mutation
type transaction struct {
	store         *Store
	record        domain.ProgressRecord
	notifications []domain.Notification
	xpAwarded     int
	levelUps      int
	unlocks       map[string]int
}

func (tx *transaction) notify(n domain.Notification) {
	n.CreatedAt = tx.store.nowFunc()
	tx.notifications = append(tx.notifications, n)
}

func (tx *transaction) unlocked(kind string) {
	tx.unlocks[kind]++
}

// addXP settles xp through the level engine. Returns whether the level changed.
func (tx *transaction) addXP(amount int) (bool, error) {
	result, err := leveling.ApplyXP(tx.record.Level, tx.record.XP, amount)
	if err != nil {
		return false, fmt.Errorf("failed to apply xp: %w", err)
	}
	tx.levelUps += result.Level - tx.record.Level
	tx.xpAwarded += amount

	tx.record.Level = result.Level
	tx.record.XP = result.XP
	tx.record.XPToNextLevel = result.Threshold
	return result.LeveledUp, nil
}

func (tx *transaction) notifyXP(amount int, leveledUp bool, source string) {
	if leveledUp {
		tx.notify(domain.Notification{
			Type:    domain.NotificationLevelUp,
			Title:   "Level Up!",
			Message: fmt.Sprintf("You reached level %d", tx.record.Level),
			XP:      amount,
		})
		return
	}
	tx.notify(domain.Notification{
		Type:    domain.NotificationXP,
		Title:   fmt.Sprintf("+%d XP", amount),
		Message: source,
		XP:      amount,
	})
}

func (tx *transaction) unlockDeity(id string) bool {
	if !domain.AddToSet(&tx.record.CollectedDeities, id) {
		return false
	}
	tx.unlocked("deity")
	tx.notify(domain.Notification{
		Type:    domain.NotificationDeity,
		Title:   "Deity Unlocked",
		Message: fmt.Sprintf("%s joined your collection", displayName(id)),
	})
	return true
}

func (tx *transaction) unlockBadge(id string) bool {
	if !domain.AddToSet(&tx.record.UnlockedBadges, id) {
		return false
	}
	tx.unlocked("badge")
	tx.notify(domain.Notification{
		Type:    domain.NotificationBadge,
		Title:   "Badge Earned",
		Message: displayName(id),
	})
	return true
}

func (tx *transaction) completePath(id string) bool {
	if !domain.AddToSet(&tx.record.CompletedPaths, id) {
		return false
	}
	tx.unlocked("path")
	return true
}

// unlockAchievement adds the achievement and applies its reward. A reward deity is added
// silently since the achievement notification already announces it.
func (tx *transaction) unlockAchievement(achievement domain.Achievement) (bool, error) {
	if !domain.AddToSet(&tx.record.Achievements, achievement.ID) {
		return false, nil
	}
	tx.unlocked("achievement")

	reward := achievement.Reward
	leveledUp := false
	if reward.XP > 0 {
		var err error
		leveledUp, err = tx.addXP(reward.XP)
		if err != nil {
			return false, err
		}
	}
	if reward.Title != "" {
		domain.AddToSet(&tx.record.Titles, reward.Title)
		tx.record.CurrentTitle = reward.Title
	}
	if reward.DeityID != "" && domain.AddToSet(&tx.record.CollectedDeities, reward.DeityID) {
		tx.unlocked("deity")
	}

	name := achievement.Name
	if name == "" {
		name = displayName(achievement.ID)
	}
	tx.notify(domain.Notification{
		Type:    domain.NotificationAchievement,
		Title:   "Achievement Unlocked",
		Message: name,
		XP:      reward.XP,
	})
	if leveledUp {
		tx.notify(domain.Notification{
			Type:    domain.NotificationLevelUp,
			Title:   "Level Up!",
			Message: fmt.Sprintf("You reached level %d", tx.record.Level),
		})
	}
	return true, nil
}

// settle unlocks one satisfied achievement at a time and re-evaluates, so rules always see
// the record including earlier rewards. Every achievement unlocks at most once, so this terminates.
func (tx *transaction) settle() error {
	for {
		satisfied := tx.store.evaluator.Evaluate(tx.record)
		if len(satisfied) == 0 {
			return nil
		}
		if _, err := tx.unlockAchievement(satisfied[0]); err != nil {
			return err
		}
	}
}

// mutate runs a transaction. The mutation reports whether it changed anything;
// unchanged records are neither saved nor announced.
func (s *Store) mutate(
	ctx context.Context,
	operation string,
	evaluate bool,
	mutation func(tx *transaction) (bool, error),
) (domain.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfClosed(operation); err != nil {
		return s.record.Clone(), err
	}

	tx := &transaction{
		store:   s,
		record:  s.record.Clone(),
		unlocks: make(map[string]int),
	}

	changed, err := mutation(tx)
	if err != nil {
		return s.record.Clone(), err
	}
	if !changed {
		return s.record.Clone(), nil
	}

	if evaluate {
		if err := tx.settle(); err != nil {
			return s.record.Clone(), err
		}
	}

	if err := s.persistence.SaveProgress(ctx, s.playerID, tx.record); err != nil {
		err = fmt.Errorf("%s: failed to save progress: %w", operation, err)
		reporting.Report(ctx, err, map[string]string{
			"playerId":  s.playerID,
			"operation": operation,
		})
		return s.record.Clone(), err
	}

	for _, n := range tx.notifications {
		s.publisher.Publish(n)
	}
	s.record = tx.record

	s.recordMetrics(ctx, tx)
	logging.FromContext(ctx).InfoContext(
		ctx,
		"Progress updated",
		slog.String("operation", operation),
		slog.Int("level", tx.record.Level),
		slog.Int("xp", tx.record.XP),
		slog.Int("notifications", len(tx.notifications)),
	)

	return s.record.Clone(), nil
}

func (s *Store) recordMetrics(ctx context.Context, tx *transaction) {
	if tx.xpAwarded > 0 {
		metrics.xpAwarded.Add(ctx, int64(tx.xpAwarded))
	}
	if tx.levelUps > 0 {
		metrics.levelUps.Add(ctx, int64(tx.levelUps))
	}
	for kind, count := range tx.unlocks {
		metrics.unlocks.Add(ctx, int64(count), metric.WithAttributes(attribute.String("kind", kind)))
	}
}

func (s *Store) AddXP(ctx context.Context, amount int) (domain.ProgressRecord, error) {
	if !domain.ValidXPAward(amount) {
		return s.Snapshot(), fmt.Errorf("%w: %d", domain.ErrInvalidXPAmount, amount)
	}
	return s.mutate(ctx, "addXP", true, func(tx *transaction) (bool, error) {
		if amount == 0 {
			return false, nil
		}
		leveledUp, err := tx.addXP(amount)
		if err != nil {
			return false, err
		}
		tx.notifyXP(amount, leveledUp, "Experience gained")
		return true, nil
	})
}

func (s *Store) UnlockDeity(ctx context.Context, id string) (domain.ProgressRecord, error) {
	return s.mutate(ctx, "unlockDeity", true, func(tx *transaction) (bool, error) {
		return tx.unlockDeity(id), nil
	})
}

func (s *Store) UnlockBadge(ctx context.Context, id string) (domain.ProgressRecord, error) {
	return s.mutate(ctx, "unlockBadge", true, func(tx *transaction) (bool, error) {
		return tx.unlockBadge(id), nil
	})
}

// UnlockAchievement is a manual unlock. The catalog reward is applied when the id is known,
// but the evaluator is not run for the rest of the table.
func (s *Store) UnlockAchievement(ctx context.Context, id string) (domain.ProgressRecord, error) {
	return s.mutate(ctx, "unlockAchievement", false, func(tx *transaction) (bool, error) {
		achievement, ok := s.evaluator.Lookup(id)
		if !ok {
			achievement = domain.Achievement{ID: id}
		}
		return tx.unlockAchievement(achievement)
	})
}

func (s *Store) CompletePath(ctx context.Context, id string) (domain.ProgressRecord, error) {
	return s.mutate(ctx, "completePath", true, func(tx *transaction) (bool, error) {
		return tx.completePath(id), nil
	})
}

// SetCurrentChapter moves the story position. Repeated visits are recorded every time.
func (s *Store) SetCurrentChapter(ctx context.Context, chapterID string) (domain.ProgressRecord, error) {
	return s.mutate(ctx, "setCurrentChapter", true, func(tx *transaction) (bool, error) {
		tx.record.CurrentChapter = chapterID
		tx.record.StoryPath = append(tx.record.StoryPath, chapterID)
		return true, nil
	})
}

// ApplyChoice applies a choice reward and the chapter transition in a single save
func (s *Store) ApplyChoice(ctx context.Context, outcome ChoiceOutcome) (domain.ProgressRecord, error) {
	if !domain.ValidXPAward(outcome.Reward.XP) {
		return s.Snapshot(), fmt.Errorf("%w: %d", domain.ErrInvalidXPAmount, outcome.Reward.XP)
	}
	return s.mutate(ctx, "applyChoice", true, func(tx *transaction) (bool, error) {
		reward := outcome.Reward
		if reward.XP > 0 {
			leveledUp, err := tx.addXP(reward.XP)
			if err != nil {
				return false, err
			}
			tx.notifyXP(reward.XP, leveledUp, "Story reward")
		}
		if reward.DeityID != "" {
			tx.unlockDeity(reward.DeityID)
		}
		if reward.AchievementID != "" {
			achievement, ok := s.evaluator.Lookup(reward.AchievementID)
			if !ok {
				achievement = domain.Achievement{ID: reward.AchievementID}
			}
			if _, err := tx.unlockAchievement(achievement); err != nil {
				return false, err
			}
		}
		if outcome.NextChapterID != "" {
			tx.record.CurrentChapter = outcome.NextChapterID
			tx.record.StoryPath = append(tx.record.StoryPath, outcome.NextChapterID)
		}
		if outcome.CompletedPath != "" {
			tx.completePath(outcome.CompletedPath)
		}
		return true, nil
	})
}

// ResetProgress clears persisted state and restores the initial record.
// If clearing fails nothing changes.
func (s *Store) ResetProgress(ctx context.Context) (domain.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfClosed("resetProgress"); err != nil {
		return s.record.Clone(), err
	}

	if err := s.persistence.DeleteProgress(ctx, s.playerID); err != nil {
		err = fmt.Errorf("resetProgress: failed to delete progress: %w", err)
		reporting.Report(ctx, err, map[string]string{"playerId": s.playerID})
		return s.record.Clone(), err
	}

	s.record = s.initialRecord()
	logging.FromContext(ctx).InfoContext(ctx, "Progress reset")

	return s.record.Clone(), nil
}
