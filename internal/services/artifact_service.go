package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"freight-system/internal/entities"
)

// ArtifactGeneratorInterface - коллаборатор генерации клиентского документа
// котировки. Генерация выполняется до смены статуса: если документ не
// собрался, отправка не состоялась.
type ArtifactGeneratorInterface interface {
	GenerateQuoteArtifact(ctx context.Context, quote *entities.Quote, tq *entities.TechnicalQuote) ([]byte, error)
}

// DeliveryServiceInterface - коллаборатор доставки документа клиенту.
// Доставка best-effort: отказ канала не откатывает смену статуса.
type DeliveryServiceInterface interface {
	DeliverQuote(ctx context.Context, quote *entities.Quote, artifact []byte) error
}

type mockArtifactGenerator struct {
	logger *zap.Logger
}

// NewMockArtifactGenerator - заглушка генератора: собирает JSON-слепок
// котировки вместо настоящего PDF. Используется, пока не подключён
// реальный рендерер документов.
func NewMockArtifactGenerator(logger *zap.Logger) ArtifactGeneratorInterface {
	return &mockArtifactGenerator{logger: logger}
}

func (g *mockArtifactGenerator) GenerateQuoteArtifact(ctx context.Context, quote *entities.Quote, tq *entities.TechnicalQuote) ([]byte, error) {
	payload := map[string]interface{}{
		"generated_at":       time.Now(),
		"client_name":        quote.ClientName,
		"origin":             quote.Origin,
		"destination":        quote.Destination,
		"mode":               quote.Mode,
		"direction":          quote.Direction,
		"line_items":         tq.LineItems,
		"summary":            tq.Summary,
		"grand_total":        tq.GrandTotal,
		"reference_currency": tq.ReferenceCurrency,
	}
	artifact, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("не удалось собрать документ котировки: %w", err)
	}

	g.logger.Info("[MOCK] Сгенерирован документ котировки",
		zap.Uint64("technicalQuoteId", tq.ID),
		zap.Int("size", len(artifact)))
	return artifact, nil
}

type mockDeliveryService struct {
	logger *zap.Logger
}

// NewMockDeliveryService - заглушка доставки: пишет факт отправки в лог.
func NewMockDeliveryService(logger *zap.Logger) DeliveryServiceInterface {
	return &mockDeliveryService{logger: logger}
}

func (d *mockDeliveryService) DeliverQuote(ctx context.Context, quote *entities.Quote, artifact []byte) error {
	d.logger.Info("[MOCK] Документ котировки отправлен клиенту",
		zap.String("client", quote.ClientName),
		zap.Int("size", len(artifact)))
	return nil
}
