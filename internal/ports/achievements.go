package ports

import (
	"net/http"

	"github.com/anki0476/rigveda-explorer/internal/app"
	"github.com/anki0476/rigveda-explorer/internal/domain"
)

type AchievementCatalog interface {
	All() []domain.Achievement
}

// MakeGetAchievementsHandler lists the catalog with the player's unlock state.
// Achievements unlocked outside the catalog are appended at the end.
func MakeGetAchievementsHandler(getSession app.GetSession, catalog AchievementCatalog) http.HandlerFunc {
	return withSession(getSession, false, func(w http.ResponseWriter, r *http.Request, session *app.Session) {
		record := session.Store.Snapshot()

		all := catalog.All()
		known := make(map[string]bool, len(all))
		achievements := make([]achievementJSON, 0, len(all))
		for _, achievement := range all {
			known[achievement.ID] = true
			achievements = append(achievements, achievementToJSON(achievement, record.HasAchievement(achievement.ID)))
		}
		for _, id := range record.Achievements {
			if !known[id] {
				achievements = append(achievements, achievementToJSON(domain.Achievement{ID: id, Name: id}, true))
			}
		}

		writeJSON(r.Context(), w, http.StatusOK, achievementsResponse{
			Success:      true,
			Achievements: achievements,
		})
	})
}
