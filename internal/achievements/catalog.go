package achievements

import "github.com/anki0476/rigveda-explorer/internal/domain"

func defaultRules() []Rule {
	return []Rule{
		{
			Achievement: domain.Achievement{
				ID:          "first_offering",
				Name:        "First Offering",
				Description: "Collect your first deity card",
				Tier:        domain.TierBronze,
				Reward:      domain.AchievementReward{XP: 25},
			},
			Condition: MinDeities(1),
		},
		{
			Achievement: domain.Achievement{
				ID:          "pantheon_seeker",
				Name:        "Pantheon Seeker",
				Description: "Collect three deity cards",
				Tier:        domain.TierSilver,
				Reward:      domain.AchievementReward{XP: 50},
			},
			Condition: MinDeities(3),
		},
		{
			Achievement: domain.Achievement{
				ID:          "keeper_of_the_triad",
				Name:        "Keeper of the Triad",
				Description: "Collect Agni, Indra and Soma",
				Tier:        domain.TierSilver,
				Reward:      domain.AchievementReward{Title: "Hotr"},
			},
			Condition: HasDeities("agni", "indra", "soma"),
		},
		{
			Achievement: domain.Achievement{
				ID:          "pantheon_scholar",
				Name:        "Pantheon Scholar",
				Description: "Collect six deity cards",
				Tier:        domain.TierGold,
				Reward:      domain.AchievementReward{XP: 100, Title: "Rishi"},
			},
			Condition: MinDeities(6),
		},
		{
			Achievement: domain.Achievement{
				ID:          "dawn_singer",
				Name:        "Dawn Singer",
				Description: "Collect Ushas while holding at least 50 xp",
				XPRequired:  50,
				Tier:        domain.TierSilver,
			},
			Condition: HasDeities("ushas"),
		},
		{
			Achievement: domain.Achievement{
				ID:          "seasoned_seeker",
				Name:        "Seasoned Seeker",
				Description: "Reach level 3",
				Tier:        domain.TierBronze,
			},
			Condition: MinLevel(3),
		},
		{
			Achievement: domain.Achievement{
				ID:          "sage",
				Name:        "Sage",
				Description: "Reach level 5",
				Tier:        domain.TierGold,
				Reward:      domain.AchievementReward{Title: "Maharishi"},
			},
			Condition: MinLevel(5),
		},
		{
			Achievement: domain.Achievement{
				ID:          "path_walker",
				Name:        "Path Walker",
				Description: "Finish a narrative path",
				Tier:        domain.TierBronze,
				Reward:      domain.AchievementReward{XP: 30},
			},
			Condition: MinCompletedPaths(1),
		},
		{
			Achievement: domain.Achievement{
				ID:          "all_paths",
				Name:        "Walker of All Paths",
				Description: "Finish three narrative paths",
				Tier:        domain.TierPlatinum,
				Reward:      domain.AchievementReward{XP: 150, DeityID: "vishnu"},
			},
			Condition: MinCompletedPaths(3),
		},
		{
			Achievement: domain.Achievement{
				ID:          "hymn_of_creation",
				Name:        "Hymn of Creation",
				Description: "Reach the Nasadiya hymn",
				Tier:        domain.TierGold,
			},
			Condition: VisitedChapter("nasadiya"),
		},
		{
			Achievement: domain.Achievement{
				ID:          "badge_bearer",
				Name:        "Badge Bearer",
				Description: "Earn three badges",
				Tier:        domain.TierBronze,
			},
			Condition: MinBadges(3),
		},
	}
}

// DefaultRulebook returns the built-in rule table
func DefaultRulebook() *Rulebook {
	rulebook, err := NewRulebook(defaultRules()...)
	if err != nil {
		panic(err)
	}
	return rulebook
}
