package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateQuoteDTO struct {
	ClientName    string      `json:"client_name" validate:"required"`
	Origin        string      `json:"origin" validate:"required"`
	Destination   string      `json:"destination" validate:"required"`
	Mode          string      `json:"mode" validate:"required,oneof=SEA AIR ROAD RAIL"`
	Direction     string      `json:"direction" validate:"required,oneof=IMP EXP"`
	ContainerType string      `json:"container_type" validate:"required"`
	GoodsDesc     null.String `json:"goods_desc"`
}

type TransitionQuoteDTO struct {
	TargetStatus string `json:"target_status" validate:"required"`
}

type QuoteDTO struct {
	ID            uint64    `json:"id"`
	ClientName    string    `json:"client_name"`
	Origin        string    `json:"origin"`
	OriginName    string    `json:"origin_name,omitempty"`
	Destination   string    `json:"destination"`
	DestName      string    `json:"destination_name,omitempty"`
	Mode          string    `json:"mode"`
	Direction     string    `json:"direction"`
	ContainerType string    `json:"container_type"`
	GoodsDesc     *string   `json:"goods_desc,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
