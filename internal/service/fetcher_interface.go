package service

import (
	"context"
	"time"

	"github.com/cypherlabdev/odds-ingestion-service/internal/models"
)

// EventFetcher is an interface that abstracts the provider client
// This allows for easier testing and mocking
type EventFetcher interface {
	FetchEvents(ctx context.Context, leagueIDs []string, startsAfter, startsBefore time.Time) ([]models.RawEvent, error)
}
