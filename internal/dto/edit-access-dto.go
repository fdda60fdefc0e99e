package dto

import "time"

type RequestEditDTO struct {
	Remarks string `json:"remarks" validate:"required"`
}

type EditAccessGrantDTO struct {
	RequestedBy *uint64    `json:"requested_by,omitempty"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	ApprovedBy  *uint64    `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	Used        bool       `json:"used"`
	Remarks     *string    `json:"remarks,omitempty"`
}
