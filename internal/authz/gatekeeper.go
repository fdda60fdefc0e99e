package authz

// Gatekeeper - контейнер для проверок прав. Проверка способности делается
// один раз на входе в операцию сервиса, а не разбросанными сравнениями ролей.
type Gatekeeper struct{}

func NewGatekeeper() *Gatekeeper {
	return &Gatekeeper{}
}

// Can - проверка обычного пермишена с коротким замыканием для Superuser.
func (g *Gatekeeper) Can(perms map[string]bool, permission string) bool {
	if perms == nil {
		return false
	}
	if perms[Superuser] {
		return true
	}
	return perms[permission]
}

// IsSuperPrivileged - актёр, безусловно обходящий протокол одноразового
// доступа (и получающий его уведомления как одобряющий).
func (g *Gatekeeper) IsSuperPrivileged(perms map[string]bool) bool {
	if perms == nil {
		return false
	}
	return perms[Superuser] || perms[BypassEditLock]
}
