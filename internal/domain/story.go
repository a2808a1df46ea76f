package domain

// Reward is attached to a story choice. The zero value means no reward.
type Reward struct {
	XP            int    `json:"xp,omitempty"`
	DeityID       string `json:"deityId,omitempty"`
	AchievementID string `json:"achievementId,omitempty"`
}

func (r Reward) IsZero() bool {
	return r.XP == 0 && r.DeityID == "" && r.AchievementID == ""
}

type Choice struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	Label         string `json:"label"`
	NextChapterID string `json:"nextChapterId"`
	Reward        Reward `json:"reward"`
}

// StoryNode is a chapter of the narrative graph. Nodes without choices are terminal.
type StoryNode struct {
	ID          string   `json:"id"`
	Chapter     int      `json:"chapter"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Choices     []Choice `json:"choices"`
}

func (n *StoryNode) IsTerminal() bool {
	return len(n.Choices) == 0
}

func (n *StoryNode) FindChoice(id string) (Choice, bool) {
	for _, choice := range n.Choices {
		if choice.ID == id {
			return choice, true
		}
	}
	return Choice{}, false
}
