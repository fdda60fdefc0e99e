package entities

import "time"

// Quote - клиентский запрос на расчёт перевозки. Параметры груза
// для ядра непрозрачны и хранятся как есть.
type Quote struct {
	ID            uint64    `db:"id"`
	ClientName    string    `db:"client_name"`
	Origin        string    `db:"origin"`
	Destination   string    `db:"destination"`
	Mode          string    `db:"mode"`
	Direction     string    `db:"direction"`
	ContainerType string    `db:"container_type"`
	GoodsDesc     *string   `db:"goods_desc"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
