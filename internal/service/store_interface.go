package service

import (
	"context"

	"github.com/cypherlabdev/odds-ingestion-service/internal/models"
)

// GameStore is an interface that abstracts the persistent store
// This allows for easier testing and mocking
type GameStore interface {
	UpsertGames(ctx context.Context, games []models.NormalizedGame) models.UpsertResult
	UpsertOdds(ctx context.Context, odds []models.NormalizedOdd) models.UpsertResult
	UpsertGameAndOdds(ctx context.Context, batch models.NormalizedBatch) models.GameAndOddsResult
	TestConnection(ctx context.Context) bool
	GetRecentGames(ctx context.Context, limit int) ([]models.NormalizedGame, error)
	GetRecentOdds(ctx context.Context, limit int) ([]models.NormalizedOdd, error)
}
