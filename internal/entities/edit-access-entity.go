package entities

import "time"

// EditAccessGrant - встроенный суб-рекорд протокола одноразового доступа.
// Инварианты: одновременно не более одного незакрытого запроса и не более
// одного неизрасходованного одобрения; used=true очищается вместе с
// полями одобрения перед приёмом нового запроса.
type EditAccessGrant struct {
	RequestedBy *uint64    `db:"edit_requested_by"`
	RequestedAt *time.Time `db:"edit_requested_at"`
	ApprovedBy  *uint64    `db:"edit_approved_by"`
	ApprovedAt  *time.Time `db:"edit_approved_at"`
	Used        bool       `db:"edit_used"`
	Remarks     *string    `db:"edit_remarks"`
}

// HasOutstandingRequest - есть запрос, ещё не одобренный.
func (g *EditAccessGrant) HasOutstandingRequest() bool {
	return g.RequestedBy != nil
}

// HasUnusedApproval - есть одобрение, ещё не израсходованное.
func (g *EditAccessGrant) HasUnusedApproval() bool {
	return g.ApprovedBy != nil && !g.Used
}

// IsHeldBy - одобрение принадлежит актёру и ещё действует.
func (g *EditAccessGrant) IsHeldBy(actorID uint64) bool {
	return g.HasUnusedApproval() && *g.ApprovedBy == actorID
}

// Consume расходует одобрение: used=true, поля одобряющего очищаются,
// чтобы грант не мог быть использован повторно и не висел в системе.
func (g *EditAccessGrant) Consume() {
	g.Used = true
	g.ApprovedBy = nil
	g.ApprovedAt = nil
}
