package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-ingestion-service/internal/cache"
	"github.com/cypherlabdev/odds-ingestion-service/internal/metrics"
	"github.com/cypherlabdev/odds-ingestion-service/internal/models"
	"github.com/cypherlabdev/odds-ingestion-service/internal/normalizer"
	"github.com/cypherlabdev/odds-ingestion-service/internal/provider"
)

// RunOptions selects what one ingestion run covers.
type RunOptions struct {
	Leagues      []string
	StartsAfter  time.Time
	StartsBefore time.Time
	DryRun       bool // normalize and log only, no store writes
}

// IngestService drives the pipeline for one or more leagues: fetch,
// normalize, persist, publish. It is the single place failures are guaranteed
// to be caught and converted into a structured result.
type IngestService struct {
	fetcher   EventFetcher
	store     GameStore
	cache     EventCache // optional rate-limit fallback
	publisher Publisher  // optional downstream feed
	logger    zerolog.Logger
}

// NewIngestService creates a new ingest service. cache and publisher may be
// nil; the corresponding steps are then skipped.
func NewIngestService(
	fetcher EventFetcher,
	store GameStore,
	eventCache EventCache,
	publisher Publisher,
	logger zerolog.Logger,
) *IngestService {
	return &IngestService{
		fetcher:   fetcher,
		store:     store,
		cache:     eventCache,
		publisher: publisher,
		logger:    logger.With().Str("component", "ingest_service").Logger(),
	}
}

// Run executes one ingestion run. It never returns an error or panics; every
// outcome is a structured IngestResult with counts and timing.
func (s *IngestService) Run(ctx context.Context, opts RunOptions) (result models.IngestResult) {
	result = models.IngestResult{
		RunID:     uuid.New(),
		DryRun:    opts.DryRun,
		Leagues:   opts.Leagues,
		StartedAt: time.Now().UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("panic during ingestion run: %v", r)
		}
		result.Duration = time.Since(result.StartedAt)
		if result.Success {
			metrics.Runs.WithLabelValues("success").Inc()
		} else {
			metrics.Runs.WithLabelValues("failure").Inc()
		}
		s.logger.Info().
			Str("run_id", result.RunID.String()).
			Bool("success", result.Success).
			Bool("dry_run", result.DryRun).
			Int("events", result.EventsProcessed).
			Int("games", result.GamesNormalized).
			Int("odds", result.OddsNormalized).
			Dur("duration", result.Duration).
			Msg("ingestion run finished")
	}()

	s.logger.Info().
		Str("run_id", result.RunID.String()).
		Strs("leagues", opts.Leagues).
		Time("starts_after", opts.StartsAfter).
		Time("starts_before", opts.StartsBefore).
		Bool("dry_run", opts.DryRun).
		Msg("starting ingestion run")

	// Pre-flight connectivity check: fail fast before spending provider quota.
	if !opts.DryRun && !s.store.TestConnection(ctx) {
		result.Error = "store unreachable at pre-flight check"
		return result
	}

	events, err := s.fetchWithFallback(ctx, opts)
	if err != nil {
		result.Error = fmt.Sprintf("fetch failed: %v", err)
		return result
	}
	result.EventsProcessed = len(events)

	// One normalizer per run; the duplicate-quote counter is batch-scoped
	// and reset explicitly before use.
	norm := normalizer.NewNormalizer(s.logger)
	norm.ResetOddsTracking()
	batch := norm.NormalizeEventsBatch(events)
	result.GamesNormalized = len(batch.Games)
	result.OddsNormalized = len(batch.Odds)

	if opts.DryRun {
		s.logger.Info().
			Int("games", len(batch.Games)).
			Int("odds", len(batch.Odds)).
			Msg("dry run, skipping store writes")
		result.Success = true
		return result
	}

	writeResult := s.store.UpsertGameAndOdds(ctx, batch)
	result.GamesUpserted = writeResult.Games.Rows
	result.OddsUpserted = writeResult.Odds.Rows
	if !writeResult.OverallSuccess {
		result.Error = upsertErrorSummary(writeResult)
		return result
	}

	if s.publisher != nil && (len(batch.Games) > 0 || len(batch.Odds) > 0) {
		if err := s.publisher.PublishNormalized(ctx, batch); err != nil {
			// Downstream feed is best effort; persistence already succeeded.
			s.logger.Warn().Err(err).Msg("failed to publish normalized batch")
		}
	}

	result.Success = true
	return result
}

// fetchWithFallback fetches from the provider, caching the result. When the
// provider rate-limits it falls back to the cached copy, then to whatever
// pages were collected before the 429.
func (s *IngestService) fetchWithFallback(ctx context.Context, opts RunOptions) ([]models.RawEvent, error) {
	events, err := s.fetcher.FetchEvents(ctx, opts.Leagues, opts.StartsAfter, opts.StartsBefore)
	if err == nil {
		if s.cache != nil && len(events) > 0 {
			key := cache.EventCacheKey(opts.Leagues, opts.StartsAfter, opts.StartsBefore)
			if cacheErr := s.cache.SetEvents(ctx, key, events); cacheErr != nil {
				s.logger.Warn().Err(cacheErr).Msg("failed to cache fetched events")
			}
		}
		return events, nil
	}

	if errors.Is(err, provider.ErrRateLimited) {
		if s.cache != nil {
			key := cache.EventCacheKey(opts.Leagues, opts.StartsAfter, opts.StartsBefore)
			cached, cacheErr := s.cache.GetEvents(ctx, key)
			if cacheErr == nil {
				s.logger.Warn().
					Int("events", len(cached)).
					Msg("provider rate limited, using cached events")
				return cached, nil
			}
			s.logger.Warn().Err(cacheErr).Msg("rate limited and no cached events available")
		}

		// The fetcher returns the pages collected before the 429; a partial
		// window beats failing the run outright.
		if len(events) > 0 {
			s.logger.Warn().
				Int("events", len(events)).
				Msg("rate limited mid-fetch, continuing with partial result")
			return events, nil
		}
	}

	return nil, err
}

func upsertErrorSummary(result models.GameAndOddsResult) string {
	var parts []string
	if len(result.Games.Errors) > 0 {
		parts = append(parts, "games: "+strings.Join(result.Games.Errors, "; "))
	}
	if len(result.Odds.Errors) > 0 {
		parts = append(parts, "odds: "+strings.Join(result.Odds.Errors, "; "))
	}
	if len(parts) == 0 {
		return "upsert failed"
	}
	return "upsert failed: " + strings.Join(parts, " | ")
}
