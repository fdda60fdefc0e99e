package listeners

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"freight-system/internal/events"
	"freight-system/pkg/eventbus"
	"freight-system/pkg/stream"
)

// AuditStreamListener ретранслирует записи аудита во внешний поток (Kafka).
// Доставка best-effort: отказ брокера логируется шиной и не влияет на
// операцию, породившую запись.
type AuditStreamListener struct {
	publisher stream.Publisher
	topic     string
	logger    *zap.Logger
}

func NewAuditStreamListener(publisher stream.Publisher, topic string, logger *zap.Logger) *AuditStreamListener {
	return &AuditStreamListener{publisher: publisher, topic: topic, logger: logger}
}

// Register подписывает слушателя на шину событий.
func (l *AuditStreamListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.AuditRecordedEvent{}.Name(), l.Handle)
}

func (l *AuditStreamListener) Handle(ctx context.Context, event eventbus.Event) error {
	recorded, ok := event.(events.AuditRecordedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"entity_type":  recorded.Entry.EntityType,
		"entity_id":    recorded.Entry.EntityID,
		"action":       recorded.Entry.Action,
		"description":  recorded.Entry.Description,
		"performed_by": recorded.Entry.PerformedBy,
		"metadata":     recorded.Entry.Metadata,
		"created_at":   recorded.Entry.CreatedAt,
	})
	if err != nil {
		return err
	}
	return l.publisher.Publish(l.topic, payload)
}
