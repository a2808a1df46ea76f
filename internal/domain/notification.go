package domain

import "time"

type NotificationType string

const (
	NotificationXP          NotificationType = "xp"
	NotificationLevelUp     NotificationType = "level-up"
	NotificationBadge       NotificationType = "badge"
	NotificationDeity       NotificationType = "deity"
	NotificationAchievement NotificationType = "achievement"
)

// Notification is an ephemeral toast. It is never persisted.
type Notification struct {
	ID        string
	Type      NotificationType
	Title     string
	Message   string
	XP        int
	CreatedAt time.Time
}
