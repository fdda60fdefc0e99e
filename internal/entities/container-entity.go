package entities

import "time"

// Container - физический контейнер внутри джоба. Создаётся первой записью
// трекинга, никогда не удаляется, история только дописывается.
type Container struct {
	ID        uint64    `db:"id"`
	JobID     uint64    `db:"job_id"`
	Number    string    `db:"number"`
	SizeType  string    `db:"size_type"`
	CreatedAt time.Time `db:"created_at"`
}

// TrackingEvent - неизменяемое событие трекинга. Ранги статусов внутри
// одного контейнера строго возрастают, повторы запрещены.
type TrackingEvent struct {
	ID          uint64    `db:"id"`
	ContainerID uint64    `db:"container_id"`
	Status      string    `db:"status"`
	StatusRank  int       `db:"status_rank"`
	Location    *string   `db:"location"`
	Remark      *string   `db:"remark"`
	EventDate   time.Time `db:"event_date"`
	CreatedAt   time.Time `db:"created_at"`
}
