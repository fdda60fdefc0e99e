package entities

import "time"

// LineItem - одна строка техкотировки. Суммы пересчитываются сервисом:
// base = rate * quantity * exchangeRate, tax = base * percent/100 по каждой
// налоговой категории, total = base + сумма налогов.
type LineItem struct {
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

// CurrencySummary - итог по одной валюте.
type CurrencySummary struct {
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
}

// TechnicalQuote - внутренняя ценовая проработка, ровно одна на котировку
// (уникальность по quote_id обеспечивается индексом в БД).
type TechnicalQuote struct {
	ID                uint64            `db:"id"`
	QuoteID           uint64            `db:"quote_id"`
	LineItems         []LineItem        `db:"line_items"`
	Summary           []CurrencySummary `db:"summary"`
	GrandTotal        float64           `db:"grand_total"`
	ReferenceCurrency string            `db:"reference_currency"`
	Status            string            `db:"status"`
	DecisionRemarks   *string           `db:"decision_remarks"`
	DecidedAt         *time.Time        `db:"decided_at"`
	IsLocked          bool              `db:"is_locked"`
	Grant             EditAccessGrant
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}
