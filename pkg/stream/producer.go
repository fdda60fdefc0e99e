// Файл: pkg/stream/producer.go
package stream

import (
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Publisher - издатель событий во внешний поток (Kafka). Доставка
// best-effort: отказ брокера логируется и никогда не откатывает
// транзакцию, которая породила событие.
type Publisher interface {
	Publish(topic string, message []byte) error
	Close() error
}

type SaramaPublisher struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewSaramaPublisher(brokers []string, logger *zap.Logger) (*SaramaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second
	prod, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return &SaramaPublisher{producer: prod, logger: logger}, nil
}

func (p *SaramaPublisher) Publish(topic string, message []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(message),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error("Не удалось отправить сообщение в Kafka",
			zap.String("topic", topic), zap.Error(err))
		return err
	}
	p.logger.Debug("Сообщение записано в Kafka",
		zap.String("topic", topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

func (p *SaramaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher используется, когда Kafka выключена конфигом.
type NopPublisher struct{}

func (NopPublisher) Publish(topic string, message []byte) error { return nil }
func (NopPublisher) Close() error                               { return nil }
