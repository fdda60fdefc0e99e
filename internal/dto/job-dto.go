package dto

import "time"

type CreateJobDTO struct {
	TechnicalQuoteID uint64 `json:"technical_quote_id" validate:"required"`
}

type ConfirmDocumentDTO struct {
	Name      string `json:"name" validate:"required"`
	Uploaded  bool   `json:"uploaded"`
	Confirmed bool   `json:"confirmed"`
}

type StageDTO struct {
	Number      int        `json:"number"`
	Name        string     `json:"name"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type DocumentDTO struct {
	Name      string `json:"name"`
	Uploaded  bool   `json:"uploaded"`
	Confirmed bool   `json:"confirmed"`
}

type JobDTO struct {
	ID           uint64             `json:"id"`
	Number       string             `json:"number"`
	QuoteID      uint64             `json:"quote_id"`
	Status       string             `json:"status"`
	CurrentStage int                `json:"current_stage"`
	Stages       []StageDTO         `json:"stages"`
	Documents    []DocumentDTO      `json:"documents"`
	IsLocked     bool               `json:"is_locked"`
	Grant        EditAccessGrantDTO `json:"edit_access"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
