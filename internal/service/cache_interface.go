package service

import (
	"context"

	"github.com/cypherlabdev/odds-ingestion-service/internal/models"
)

// EventCache is an interface that abstracts the raw-event fallback cache
// This allows for easier testing and mocking
type EventCache interface {
	SetEvents(ctx context.Context, key string, events []models.RawEvent) error
	GetEvents(ctx context.Context, key string) ([]models.RawEvent, error)
	Ping(ctx context.Context) error
}

// Publisher is an interface that abstracts the normalized-batch publisher
// This allows for easier testing and mocking
type Publisher interface {
	PublishNormalized(ctx context.Context, batch models.NormalizedBatch) error
}
