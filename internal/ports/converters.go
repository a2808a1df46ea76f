package ports

import (
	"time"

	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/story"
)

type progressJSON struct {
	Level            int      `json:"level"`
	XP               int      `json:"xp"`
	XPToNextLevel    int      `json:"xpToNextLevel"`
	CompletedPaths   []string `json:"completedPaths"`
	CurrentChapter   string   `json:"currentChapter"`
	StoryPath        []string `json:"storyPath"`
	UnlockedBadges   []string `json:"unlockedBadges"`
	CollectedDeities []string `json:"collectedDeities"`
	Achievements     []string `json:"achievements"`
	CurrentTitle     string   `json:"currentTitle"`
	Titles           []string `json:"titles"`
}

type progressResponse struct {
	Success  bool         `json:"success"`
	Progress progressJSON `json:"progress"`
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func progressToJSON(record domain.ProgressRecord) progressJSON {
	return progressJSON{
		Level:            record.Level,
		XP:               record.XP,
		XPToNextLevel:    record.XPToNextLevel,
		CompletedPaths:   nonNil(record.CompletedPaths),
		CurrentChapter:   record.CurrentChapter,
		StoryPath:        nonNil(record.StoryPath),
		UnlockedBadges:   nonNil(record.UnlockedBadges),
		CollectedDeities: nonNil(record.CollectedDeities),
		Achievements:     nonNil(record.Achievements),
		CurrentTitle:     record.CurrentTitle,
		Titles:           nonNil(record.Titles),
	}
}

type viewJSON struct {
	ChapterID string            `json:"chapterId"`
	NotFound  bool              `json:"notFound"`
	Terminal  bool              `json:"terminal"`
	Node      *domain.StoryNode `json:"node,omitempty"`
}

type storyResponse struct {
	Success  bool         `json:"success"`
	View     viewJSON     `json:"view"`
	Progress progressJSON `json:"progress"`
}

func viewToJSON(view story.View) viewJSON {
	result := viewJSON{
		ChapterID: view.ChapterID,
		NotFound:  view.NotFound,
		Terminal:  view.Terminal,
	}
	if !view.NotFound {
		node := view.Node
		if node.Choices == nil {
			node.Choices = []domain.Choice{}
		}
		result.Node = &node
	}
	return result
}

type rewardJSON struct {
	XP      int    `json:"xp,omitempty"`
	Title   string `json:"title,omitempty"`
	DeityID string `json:"deityId,omitempty"`
}

type achievementJSON struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	XPRequired  int         `json:"xpRequired"`
	Tier        string      `json:"tier"`
	Reward      *rewardJSON `json:"reward,omitempty"`
	Unlocked    bool        `json:"unlocked"`
}

type achievementsResponse struct {
	Success      bool              `json:"success"`
	Achievements []achievementJSON `json:"achievements"`
}

func achievementToJSON(achievement domain.Achievement, unlocked bool) achievementJSON {
	result := achievementJSON{
		ID:          achievement.ID,
		Name:        achievement.Name,
		Description: achievement.Description,
		XPRequired:  achievement.XPRequired,
		Tier:        string(achievement.Tier),
		Unlocked:    unlocked,
	}
	if !achievement.Reward.IsZero() {
		result.Reward = &rewardJSON{
			XP:      achievement.Reward.XP,
			Title:   achievement.Reward.Title,
			DeityID: achievement.Reward.DeityID,
		}
	}
	return result
}

type notificationJSON struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	XP        int    `json:"xp,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type notificationsResponse struct {
	Success       bool               `json:"success"`
	Notifications []notificationJSON `json:"notifications"`
}

func notificationsToJSON(notifications []domain.Notification) []notificationJSON {
	result := make([]notificationJSON, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, notificationJSON{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			XP:        n.XP,
			CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return result
}

type assistantResponse struct {
	Success  bool   `json:"success"`
	Reply    string `json:"reply"`
	Model    string `json:"model"`
	Fallback bool   `json:"fallback"`
}
