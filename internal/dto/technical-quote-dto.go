package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

// CreateLineItemDTO - входная строка прайсинга. Суммы на входе не
// принимаются: сервис пересчитывает их сам.
type CreateLineItemDTO struct {
	Category    string    `json:"category" validate:"required"`
	Quantity    float64   `json:"quantity" validate:"required,gt=0"`
	UnitRate    float64   `json:"unit_rate" validate:"required,gt=0"`
	Currency    string    `json:"currency" validate:"required,currency_code"`
	TaxPercents []float64 `json:"tax_percents" validate:"dive,gte=0,lte=100"`
}

type CreateTechnicalQuoteDTO struct {
	QuoteID   uint64              `json:"quote_id" validate:"required"`
	LineItems []CreateLineItemDTO `json:"line_items" validate:"required,min=1,dive"`
}

type ClientDecisionDTO struct {
	Decision string      `json:"decision" validate:"required,oneof=approve reject"`
	Remarks  null.String `json:"remarks"`
}

type LineItemDTO struct {
	Category     string    `json:"category"`
	Quantity     float64   `json:"quantity"`
	UnitRate     float64   `json:"unit_rate"`
	Currency     string    `json:"currency"`
	ExchangeRate float64   `json:"exchange_rate"`
	TaxPercents  []float64 `json:"tax_percents"`
	BaseAmount   float64   `json:"base_amount"`
	TaxAmount    float64   `json:"tax_amount"`
	TotalAmount  float64   `json:"total_amount"`
}

type CurrencySummaryDTO struct {
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
}

type TechnicalQuoteDTO struct {
	ID                uint64               `json:"id"`
	QuoteID           uint64               `json:"quote_id"`
	LineItems         []LineItemDTO        `json:"line_items"`
	Summary           []CurrencySummaryDTO `json:"summary"`
	GrandTotal        float64              `json:"grand_total"`
	ReferenceCurrency string               `json:"reference_currency"`
	Status            string               `json:"status"`
	DecisionRemarks   *string              `json:"decision_remarks,omitempty"`
	IsLocked          bool                 `json:"is_locked"`
	Grant             EditAccessGrantDTO   `json:"edit_access"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// ClientDecisionResultDTO - результат решения клиента. Повторный вызов
// после вынесенного решения не ошибка: AlreadyProcessed=true.
type ClientDecisionResultDTO struct {
	Status           string `json:"status"`
	AlreadyProcessed bool   `json:"already_processed"`
}
