package models

import "time"

type NotificationType string

const (
	NotificationFollow NotificationType = "follow"
	NotificationLike   NotificationType = "like"
)

type Sender struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profile_image"`
}

type Notification struct {
	ID        int64            `json:"id"`
	Sender    Sender           `json:"sender"`
	Type      NotificationType `json:"notification_type"`
	RelatedID int64            `json:"related_id"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
