package entities

import "time"

// User - сотрудник. Аутентификация и роли приходят от коллаборатора
// идентичности; ядро хранит минимум, нужный для входа и рассылок.
type User struct {
	ID        uint64    `db:"id"`
	Fio       string    `db:"fio"`
	Login     string    `db:"login"`
	Password  string    `db:"password"`
	CreatedAt time.Time `db:"created_at"`
}
