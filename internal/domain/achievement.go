package domain

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

func (t Tier) IsValid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold, TierPlatinum:
		return true
	}
	return false
}

// AchievementReward is granted once, when the achievement unlocks.
// Any field may be left empty.
type AchievementReward struct {
	XP      int
	Title   string
	DeityID string
}

func (r AchievementReward) IsZero() bool {
	return r.XP == 0 && r.Title == "" && r.DeityID == ""
}

type Achievement struct {
	ID          string
	Name        string
	Description string
	XPRequired  int
	Tier        Tier
	Reward      AchievementReward
}
