package achievements

import (
	"errors"
	"fmt"

	"github.com/anki0476/rigveda-explorer/internal/domain"
)

var ErrInvalidRule = errors.New("invalid achievement rule")

// Rule pairs a catalog entry with the predicate that unlocks it
type Rule struct {
	Achievement domain.Achievement
	Condition   Condition
}

// Rulebook is an immutable, ordered table of achievement rules
type Rulebook struct {
	rules []Rule
	byID  map[string]int
}

func NewRulebook(rules ...Rule) (*Rulebook, error) {
	byID := make(map[string]int, len(rules))
	for i, rule := range rules {
		id := rule.Achievement.ID
		if id == "" {
			return nil, fmt.Errorf("%w: rule %d has no id", ErrInvalidRule, i)
		}
		if _, ok := byID[id]; ok {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidRule, id)
		}
		if !rule.Achievement.Tier.IsValid() {
			return nil, fmt.Errorf("%w: %s has unknown tier %q", ErrInvalidRule, id, rule.Achievement.Tier)
		}
		if rule.Condition == nil {
			return nil, fmt.Errorf("%w: %s has no condition", ErrInvalidRule, id)
		}
		byID[id] = i
	}

	return &Rulebook{
		rules: append([]Rule(nil), rules...),
		byID:  byID,
	}, nil
}

func (r Rule) satisfied(record domain.ProgressRecord) bool {
	if r.Achievement.XPRequired > 0 && record.XP < r.Achievement.XPRequired {
		return false
	}
	return r.Condition(record)
}

// Evaluate returns the achievements satisfied by record that are not yet unlocked, in table order.
// It does not mutate the record, so calling it again on the same record yields the same result.
func (b *Rulebook) Evaluate(record domain.ProgressRecord) []domain.Achievement {
	var unlocked []domain.Achievement
	for _, rule := range b.rules {
		if record.HasAchievement(rule.Achievement.ID) {
			continue
		}
		if rule.satisfied(record) {
			unlocked = append(unlocked, rule.Achievement)
		}
	}
	return unlocked
}

func (b *Rulebook) Lookup(id string) (domain.Achievement, bool) {
	i, ok := b.byID[id]
	if !ok {
		return domain.Achievement{}, false
	}
	return b.rules[i].Achievement, true
}

func (b *Rulebook) All() []domain.Achievement {
	all := make([]domain.Achievement, 0, len(b.rules))
	for _, rule := range b.rules {
		all = append(all, rule.Achievement)
	}
	return all
}
