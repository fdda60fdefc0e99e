package entities

import "time"

// SubjectRef - полиморфная ссылка уведомления на управляемую сущность.
// Kind ∈ {quote, technical_quote, job}; разрешается читающей стороной.
type SubjectRef struct {
	Kind string `json:"kind"`
	ID   uint64 `json:"id"`
}

// ReadReceipt - отметка о прочтении конкретным получателем.
type ReadReceipt struct {
	RecipientID uint64    `json:"recipient_id"`
	ReadAt      time.Time `json:"read_at"`
}

// Notification - запись рассылки по событиям протокола одноразового
// доступа. Меняется только статус и список отметок о прочтении.
type Notification struct {
	ID          string        `db:"id"`
	Type        string        `db:"type"`
	Subject     SubjectRef    `db:"subject"`
	RequesterID uint64        `db:"requester_id"`
	Message     string        `db:"message"`
	Recipients  []uint64      `db:"recipients"`
	Status      string        `db:"status"`
	Reads       []ReadReceipt `db:"reads"`
	CreatedAt   time.Time     `db:"created_at"`
}

// IsReadBy проверяет наличие отметки о прочтении для актёра.
func (n *Notification) IsReadBy(actorID uint64) bool {
	for _, r := range n.Reads {
		if r.RecipientID == actorID {
			return true
		}
	}
	return false
}
