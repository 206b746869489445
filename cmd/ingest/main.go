package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/odds-ingestion-service/internal/cache"
	"github.com/cypherlabdev/odds-ingestion-service/internal/config"
	"github.com/cypherlabdev/odds-ingestion-service/internal/messaging"
	"github.com/cypherlabdev/odds-ingestion-service/internal/models"
	"github.com/cypherlabdev/odds-ingestion-service/internal/provider"
	"github.com/cypherlabdev/odds-ingestion-service/internal/service"
	"github.com/cypherlabdev/odds-ingestion-service/internal/store"
)

const dateFormat = "2006-01-02"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		testMode   bool
		insertMode bool
		leagues    string
		start      string
		end        string
		verbose    bool
		configPath string
	)

	flag.BoolVar(&testMode, "test", false, "fetch and normalize without writing to the store")
	flag.BoolVar(&insertMode, "insert", false, "fetch, normalize and persist")
	flag.StringVar(&leagues, "league", "ALL", "league code(s), comma separated, or ALL")
	flag.StringVar(&leagues, "l", "ALL", "shorthand for --league")
	flag.StringVar(&start, "start", "", "window start date (YYYY-MM-DD, default today)")
	flag.StringVar(&start, "s", "", "shorthand for --start")
	flag.StringVar(&end, "end", "", "window end date (YYYY-MM-DD, default start+7d)")
	flag.StringVar(&end, "e", "", "shorthand for --end")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	flag.BoolVar(&verbose, "v", false, "shorthand for --verbose")
	flag.StringVar(&configPath, "config", "", "path to config file (default config/config.yaml if present)")
	flag.Parse()

	if insertMode && testMode {
		fmt.Fprintln(os.Stderr, "choose one of --test or --insert")
		return 1
	}
	dryRun := !insertMode

	if configPath == "" {
		if _, err := os.Stat("config/config.yaml"); err == nil {
			configPath = "config/config.yaml"
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger := setupLogger(cfg.Logging)

	// Missing credentials abort the run before any work is attempted. A dry
	// run never touches the store, so only the provider key is required.
	if cfg.Provider.APIKey == "" {
		logger.Error().Msg("provider API key is required")
		return 1
	}
	if !dryRun {
		if err := cfg.Validate(); err != nil {
			logger.Error().Err(err).Msg("invalid configuration")
			return 1
		}
	}

	leagueIDs, err := resolveLeagues(leagues)
	if err != nil {
		logger.Error().Err(err).Msg("invalid league selection")
		return 1
	}

	startsAfter, startsBefore, err := resolveWindow(start, end)
	if err != nil {
		logger.Error().Err(err).Msg("invalid date range")
		return 1
	}

	ctx := context.Background()

	fetcher := provider.NewClient(cfg.Provider.ToClientConfig(), logger)

	var gameStore service.GameStore
	if !dryRun {
		pgStore, err := store.NewStore(cfg.Postgres.ToStoreConfig(), logger)
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to store")
			return 1
		}
		defer pgStore.Close()

		if err := pgStore.InitSchema(ctx); err != nil {
			logger.Error().Err(err).Msg("failed to initialize schema")
			return 1
		}
		gameStore = pgStore
	}

	var eventCache service.EventCache
	redisCache := cache.NewRedisEventCache(cfg.Redis.ToCacheConfig(), logger)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, rate-limit fallback disabled")
	} else {
		eventCache = redisCache
	}

	var publisher service.Publisher
	if cfg.Kafka.Enabled && !dryRun {
		kafkaPublisher := messaging.NewKafkaPublisher(cfg.Kafka.ToPublisherConfig(), logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	ingestService := service.NewIngestService(fetcher, gameStore, eventCache, publisher, logger)

	result := ingestService.Run(ctx, service.RunOptions{
		Leagues:      leagueIDs,
		StartsAfter:  startsAfter,
		StartsBefore: startsBefore,
		DryRun:       dryRun,
	})

	if !result.Success {
		fmt.Printf("FAILED: %s (events=%d, duration=%s)\n",
			result.Error, result.EventsProcessed, result.Duration.Round(time.Millisecond))
		return 1
	}

	fmt.Printf("OK: events=%d games=%d odds=%d upserted_games=%d upserted_odds=%d duration=%s\n",
		result.EventsProcessed, result.GamesNormalized, result.OddsNormalized,
		result.GamesUpserted, result.OddsUpserted, result.Duration.Round(time.Millisecond))
	return 0
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "odds-ingestion").Logger()
}

// resolveLeagues expands ALL and validates explicit selections.
func resolveLeagues(selection string) ([]string, error) {
	selection = strings.TrimSpace(selection)
	if strings.EqualFold(selection, "ALL") {
		return models.SupportedLeagues, nil
	}

	var leagueIDs []string
	for _, raw := range strings.Split(selection, ",") {
		league := strings.ToUpper(strings.TrimSpace(raw))
		if league == "" {
			continue
		}
		if !models.IsSupportedLeague(league) {
			return nil, fmt.Errorf("unsupported league %q (supported: %s)",
				league, strings.Join(models.SupportedLeagues, ", "))
		}
		leagueIDs = append(leagueIDs, league)
	}
	if len(leagueIDs) == 0 {
		return nil, fmt.Errorf("no leagues selected")
	}
	return leagueIDs, nil
}

// resolveWindow parses the date range, defaulting to the next seven days.
func resolveWindow(start, end string) (time.Time, time.Time, error) {
	startsAfter := time.Now().UTC().Truncate(24 * time.Hour)
	if start != "" {
		parsed, err := time.Parse(dateFormat, start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		startsAfter = parsed
	}

	startsBefore := startsAfter.AddDate(0, 0, 7)
	if end != "" {
		parsed, err := time.Parse(dateFormat, end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		startsBefore = parsed
	}

	if !startsBefore.After(startsAfter) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date must be after start date")
	}
	return startsAfter, startsBefore, nil
}
