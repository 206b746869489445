package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the ingestion pipeline. Registered on the default registry so
// an embedding process can expose them via promhttp.
var (
	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "odds_ingestion_pages_fetched_total",
		Help: "Number of provider pages fetched.",
	})

	EventsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "odds_ingestion_events_fetched_total",
		Help: "Number of raw events fetched from the provider.",
	})

	ProviderRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "odds_ingestion_provider_retries_total",
		Help: "Number of retried provider requests.",
	})

	RateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "odds_ingestion_rate_limit_hits_total",
		Help: "Number of provider 429 responses.",
	})

	GamesUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "odds_ingestion_games_upserted_total",
		Help: "Number of game rows written to the store.",
	})

	OddsUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "odds_ingestion_odds_upserted_total",
		Help: "Number of odds rows written to the store.",
	})

	UpsertErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "odds_ingestion_upsert_errors_total",
		Help: "Number of failed upsert batches.",
	})

	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "odds_ingestion_runs_total",
		Help: "Number of ingestion runs by result.",
	}, []string{"result"})
)
