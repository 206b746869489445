package models

import (
	"time"

	"github.com/google/uuid"
)

// SupportedLeagues is the fixed set of league codes the pipeline ingests when
// no explicit league selection is given.
var SupportedLeagues = []string{"NBA", "NCAAB", "WNBA", "NFL", "NCAAF", "MLB", "NHL", "UFC"}

// IsSupportedLeague reports whether the league code is in SupportedLeagues.
func IsSupportedLeague(league string) bool {
	for _, l := range SupportedLeagues {
		if l == league {
			return true
		}
	}
	return false
}

// UpsertResult reports the outcome of one bulk write against the store.
type UpsertResult struct {
	Success bool     `json:"success"`
	Rows    int      `json:"rows"`
	Errors  []string `json:"errors,omitempty"`
}

// GameAndOddsResult reports the games-then-odds write sequence.
type GameAndOddsResult struct {
	Games          UpsertResult `json:"games"`
	Odds           UpsertResult `json:"odds"`
	OverallSuccess bool         `json:"overall_success"`
}

// IngestResult is the structured summary every orchestrator run produces,
// including failed ones.
type IngestResult struct {
	RunID           uuid.UUID     `json:"run_id"`
	Success         bool          `json:"success"`
	DryRun          bool          `json:"dry_run"`
	Leagues         []string      `json:"leagues"`
	EventsProcessed int           `json:"events_processed"`
	GamesNormalized int           `json:"games_normalized"`
	OddsNormalized  int           `json:"odds_normalized"`
	GamesUpserted   int           `json:"games_upserted"`
	OddsUpserted    int           `json:"odds_upserted"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
	Error           string        `json:"error,omitempty"`
}
