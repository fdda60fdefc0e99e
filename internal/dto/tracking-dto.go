package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type AppendTrackingEventDTO struct {
	ContainerNumber string      `json:"container_number" validate:"required,container_number"`
	SizeType        string      `json:"size_type" validate:"required"`
	Status          string      `json:"status" validate:"required"`
	Location        null.String `json:"location"`
	Remark          null.String `json:"remark"`
	EventDate       null.Time   `json:"event_date"`
}

type TrackingEventDTO struct {
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	Location    *string   `json:"location,omitempty"`
	Remark      *string   `json:"remark,omitempty"`
	EventDate   time.Time `json:"event_date"`
	CreatedAt   time.Time `json:"created_at"`
}

type ContainerDTO struct {
	Number   string             `json:"number"`
	SizeType string             `json:"size_type"`
	Events   []TrackingEventDTO `json:"events"`
}
