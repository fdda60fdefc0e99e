package dto

import "time"

type SubjectRefDTO struct {
	Kind string `json:"kind"`
	ID   uint64 `json:"id"`
}

type NotificationDTO struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Subject     SubjectRefDTO `json:"subject"`
	RequesterID uint64        `json:"requester_id"`
	Message     string        `json:"message"`
	Status      string        `json:"status"`
	IsRead      bool          `json:"is_read"`
	CreatedAt   time.Time     `json:"created_at"`
}

type NotificationFeedDTO struct {
	List        []NotificationDTO `json:"list"`
	UnreadCount int               `json:"unread_count"`
}
