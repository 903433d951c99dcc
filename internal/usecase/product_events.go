package usecase

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/google/uuid"
)

// newProductEvent собирает outbox-событие. product может быть nil для удаления.
func newProductEvent(eventType OutboxEventType, productID int64, product *domain.Product) (*OutboxEvent, error) {
	now := time.Now().UTC()
	payload := ProductEventPayload{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		ProductID:  productID,
		OccurredAt: now,
	}

	if product != nil {
		payload.Product = &ProductSnapshot{
			Name:       product.Name,
			Price:      domain.CentsToDecimal(product.Price).StringFixed(2),
			Category:   product.Category,
			Stock:      product.Stock,
			Rating:     product.Rating,
			NumReviews: product.NumReviews,
			IsActive:   product.IsActive,
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:   payload.EventID,
		EventType: eventType,
		ProductID: productID,
		Payload:   data,
		Status:    Pending,
		CreatedAt: now,
	}, nil
}
