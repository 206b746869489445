package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawEvent is one event record as returned by the odds provider. The provider
// schema is not stable across sports, so the nested sections are kept loosely
// typed and consumed through the normalizer's field-fallback tables.
type RawEvent struct {
	EventID  string                    `json:"eventID"`
	LeagueID string                    `json:"leagueID"`
	SportID  string                    `json:"sportID"`
	Teams    map[string]map[string]any `json:"teams"`
	Status   map[string]any            `json:"status"`
	Results  map[string]any            `json:"results,omitempty"`
	Odds     map[string]map[string]any `json:"odds"`
}

// EventsResponse is the provider's paginated envelope for the events endpoint.
type EventsResponse struct {
	Success    bool       `json:"success"`
	Data       []RawEvent `json:"data"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// GameStatus is the normalized lifecycle state of a game.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusLive      GameStatus = "live"
	StatusFinal     GameStatus = "final"
	StatusCancelled GameStatus = "cancelled"
	StatusPostponed GameStatus = "postponed"
)

// Settled reports whether the game has started or finished, i.e. whether its
// odds are frozen.
func (s GameStatus) Settled() bool {
	return s == StatusLive || s == StatusFinal
}

// NormalizedGame is one game in the fixed relational schema. ID is the
// provider event identifier and is the conflict key for upsert.
type NormalizedGame struct {
	ID           string     `json:"id"`
	Sport        string     `json:"sport"`
	League       string     `json:"league"`
	HomeTeamKey  string     `json:"home_team_key"`
	AwayTeamKey  string     `json:"away_team_key"`
	HomeTeamName string     `json:"home_team_name"`
	AwayTeamName string     `json:"away_team_name"`
	GameTime     time.Time  `json:"game_time"`
	Status       GameStatus `json:"status"`
	HomeScore    *int       `json:"home_score,omitempty"`
	AwayScore    *int       `json:"away_score,omitempty"`
}

// SportsbookQuote is one sportsbook's price and deep link for an odd.
type SportsbookQuote struct {
	Odds string `json:"odds,omitempty"`
	Link string `json:"link,omitempty"`
}

// NormalizedOdd is one sportsbook quote for one market/side/line on one game.
type NormalizedOdd struct {
	EventID       string                     `json:"event_id"`
	Sportsbook    string                     `json:"sportsbook"`
	MarketName    string                     `json:"market_name"`
	BetTypeID     string                     `json:"bet_type_id"`
	OddID         string                     `json:"odd_id"`
	PlayerID      string                     `json:"player_id,omitempty"`
	PeriodID      string                     `json:"period_id,omitempty"`
	SideID        string                     `json:"side_id,omitempty"`
	BookOdds      *int                       `json:"book_odds,omitempty"`
	CloseBookOdds *decimal.Decimal           `json:"close_book_odds,omitempty"`
	Line          *decimal.Decimal           `json:"line,omitempty"`
	Score         *string                    `json:"score,omitempty"`
	ByBookmaker   map[string]SportsbookQuote `json:"by_bookmaker,omitempty"`
}

// NormalizedBatch is the output of one normalization run.
type NormalizedBatch struct {
	Games []NormalizedGame `json:"games"`
	Odds  []NormalizedOdd  `json:"odds"`
}

// KafkaNormalizedBatchMessage is the envelope published to the
// normalized_odds topic for downstream consumers.
type KafkaNormalizedBatchMessage struct {
	BatchID   string          `json:"batch_id"`
	Batch     NormalizedBatch `json:"batch"`
	Timestamp time.Time       `json:"timestamp"`
}
