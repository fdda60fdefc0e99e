package entities

import "time"

// Stage - этап джоба с фиксированным номером 1..N.
type Stage struct {
	Number      int        `json:"number"`
	Name        string     `json:"name"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Document - позиция чек-листа документов джоба.
type Document struct {
	Name      string `json:"name"`
	Uploaded  bool   `json:"uploaded"`
	Confirmed bool   `json:"confirmed"`
}

// Job - операционная запись перевозки, создаётся из одобренной клиентом
// техкотировки. Не более одного джоба на котировку (уникальный индекс).
type Job struct {
	ID           uint64     `db:"id"`
	Number       string     `db:"number"`
	QuoteID      uint64     `db:"quote_id"`
	Status       string     `db:"status"`
	CurrentStage int        `db:"current_stage"`
	Stages       []Stage    `db:"stages"`
	Documents    []Document `db:"documents"`
	IsLocked     bool       `db:"is_locked"`
	Grant        EditAccessGrant
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// AllDocumentsConfirmed - предусловие смены этапа.
func (j *Job) AllDocumentsConfirmed() bool {
	for _, d := range j.Documents {
		if !d.Confirmed {
			return false
		}
	}
	return true
}
