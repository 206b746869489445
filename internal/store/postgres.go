package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/odds-ingestion-service/internal/metrics"
	"github.com/cypherlabdev/odds-ingestion-service/internal/models"
)

// oddsBatchSize bounds one odds statement to respect query/payload limits.
const oddsBatchSize = 100

// StoreConfig holds Postgres configuration.
type StoreConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store writes normalized games and odds to Postgres. Conflict resolution is
// delegated to the database: games are keyed on id, current odds upsert
// newest-wins, opening odds insert earliest-wins. The store never takes
// application-level locks; concurrent ingestion runs race and the statements
// below decide the outcome atomically.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewStore opens a Postgres connection pool and verifies it.
func NewStore(config StoreConfig, logger zerolog.Logger) (*Store, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}, nil
}

// InitSchema creates the games, odds and opening_odds tables if they do not
// exist.
func (s *Store) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS games (
		id VARCHAR(255) PRIMARY KEY,
		sport VARCHAR(50) NOT NULL,
		league VARCHAR(50) NOT NULL,
		home_team_key VARCHAR(50) NOT NULL,
		away_team_key VARCHAR(50) NOT NULL,
		home_team_name VARCHAR(255) NOT NULL,
		away_team_name VARCHAR(255) NOT NULL,
		game_time TIMESTAMPTZ NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'scheduled',
		home_score INTEGER,
		away_score INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_games_league_time ON games(league, game_time);

	CREATE TABLE IF NOT EXISTS odds (
		id SERIAL PRIMARY KEY,
		event_id VARCHAR(255) NOT NULL REFERENCES games(id),
		sportsbook VARCHAR(255) NOT NULL,
		market_name VARCHAR(255),
		bet_type_id VARCHAR(255),
		odd_id VARCHAR(255) NOT NULL,
		player_id VARCHAR(255),
		period_id VARCHAR(255),
		side_id VARCHAR(255),
		book_odds INTEGER,
		close_book_odds DECIMAL(10, 2),
		line DECIMAL(10, 2),
		score VARCHAR(255),
		by_bookmaker JSONB,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(event_id, odd_id, sportsbook)
	);

	CREATE INDEX IF NOT EXISTS idx_odds_event ON odds(event_id);

	CREATE TABLE IF NOT EXISTS opening_odds (
		id SERIAL PRIMARY KEY,
		event_id VARCHAR(255) NOT NULL REFERENCES games(id),
		sportsbook VARCHAR(255) NOT NULL,
		market_name VARCHAR(255),
		bet_type_id VARCHAR(255),
		odd_id VARCHAR(255) NOT NULL,
		player_id VARCHAR(255),
		period_id VARCHAR(255),
		side_id VARCHAR(255),
		book_odds INTEGER,
		close_book_odds DECIMAL(10, 2),
		line DECIMAL(10, 2),
		score VARCHAR(255),
		by_bookmaker JSONB,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(event_id, odd_id, sportsbook)
	);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Info().Msg("schema initialized")
	return nil
}

// UpsertGames writes all games in a single conflict-aware statement keyed on
// id. The statement's own atomicity governs partial application.
func (s *Store) UpsertGames(ctx context.Context, games []models.NormalizedGame) models.UpsertResult {
	if len(games) == 0 {
		return models.UpsertResult{Success: true}
	}

	placeholders := make([]string, 0, len(games))
	args := make([]any, 0, len(games)*11)
	for i, game := range games {
		base := i * 11
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10, base+11,
		))
		args = append(args,
			game.ID, game.Sport, game.League,
			game.HomeTeamKey, game.AwayTeamKey,
			game.HomeTeamName, game.AwayTeamName,
			game.GameTime, string(game.Status),
			nullableInt(game.HomeScore), nullableInt(game.AwayScore),
		)
	}

	query := fmt.Sprintf(`
	INSERT INTO games (
		id, sport, league, home_team_key, away_team_key,
		home_team_name, away_team_name, game_time, status,
		home_score, away_score
	) VALUES %s
	ON CONFLICT (id) DO UPDATE SET
		sport = EXCLUDED.sport,
		league = EXCLUDED.league,
		home_team_key = EXCLUDED.home_team_key,
		away_team_key = EXCLUDED.away_team_key,
		home_team_name = EXCLUDED.home_team_name,
		away_team_name = EXCLUDED.away_team_name,
		game_time = EXCLUDED.game_time,
		status = EXCLUDED.status,
		home_score = EXCLUDED.home_score,
		away_score = EXCLUDED.away_score,
		updated_at = NOW()
	`, strings.Join(placeholders, ", "))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		metrics.UpsertErrors.Inc()
		s.logger.Error().Err(err).Int("games", len(games)).Msg("games upsert failed")
		return models.UpsertResult{Errors: []string{err.Error()}}
	}

	rows := rowsAffected(res)
	metrics.GamesUpserted.Add(float64(rows))

	s.logger.Info().Int("rows", rows).Msg("upserted games")
	return models.UpsertResult{Success: true, Rows: rows}
}

// UpsertOdds writes odds in batches of oddsBatchSize. Each batch is attempted
// independently; batch failures are collected, not fatal to the siblings.
//
// Every batch is gated on game status inside the statement itself: a row
// whose game is already live or final is silently dropped by the join, so
// settled games never receive odds mutations, even when concurrent runs race.
func (s *Store) UpsertOdds(ctx context.Context, odds []models.NormalizedOdd) models.UpsertResult {
	if len(odds) == 0 {
		return models.UpsertResult{Success: true}
	}

	result := models.UpsertResult{}
	for start := 0; start < len(odds); start += oddsBatchSize {
		end := start + oddsBatchSize
		if end > len(odds) {
			end = len(odds)
		}
		batch := dedupeOddsRows(odds[start:end])

		rows, err := s.upsertOddsBatch(ctx, "odds", batch, conflictUpdate)
		if err != nil {
			metrics.UpsertErrors.Inc()
			s.logger.Error().
				Err(err).
				Int("batch_start", start).
				Int("batch_size", len(batch)).
				Msg("odds batch upsert failed")
			result.Errors = append(result.Errors, fmt.Sprintf("batch %d: %v", start/oddsBatchSize, err))
			continue
		}
		result.Rows += rows

		// Same rows into the opening odds table, earliest-wins: existing
		// rows are left untouched.
		if _, err := s.upsertOddsBatch(ctx, "opening_odds", batch, conflictIgnore); err != nil {
			metrics.UpsertErrors.Inc()
			s.logger.Error().
				Err(err).
				Int("batch_start", start).
				Msg("opening odds batch upsert failed")
			result.Errors = append(result.Errors, fmt.Sprintf("opening batch %d: %v", start/oddsBatchSize, err))
		}
	}

	metrics.OddsUpserted.Add(float64(result.Rows))
	result.Success = len(result.Errors) == 0

	s.logger.Info().
		Int("input", len(odds)).
		Int("rows", result.Rows).
		Int("errors", len(result.Errors)).
		Msg("upserted odds")

	return result
}

type conflictAction int

const (
	conflictUpdate conflictAction = iota // newest quote wins
	conflictIgnore                       // earliest quote wins
)

// upsertOddsBatch writes one batch as a single atomic statement. The VALUES
// list is joined against games so only rows for unsettled games survive, and
// the conflict clause resolves duplicate logical odds without a read-first
// race.
func (s *Store) upsertOddsBatch(ctx context.Context, table string, odds []models.NormalizedOdd, action conflictAction) (int, error) {
	if len(odds) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(odds)*13)
	for _, odd := range odds {
		args = append(args,
			odd.EventID, odd.Sportsbook, odd.MarketName, odd.BetTypeID,
			odd.OddID, odd.PlayerID, odd.PeriodID, odd.SideID,
			nullableInt(odd.BookOdds), nullableDecimal(odd.CloseBookOdds),
			nullableDecimal(odd.Line), nullableString(odd.Score),
			bookQuotesJSON(odd.ByBookmaker),
		)
	}

	query := buildOddsUpsertQuery(table, len(odds), action)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

// buildOddsUpsertQuery renders the statement for a batch of rows odds rows:
// a VALUES insert joined against games so settled games drop out inside the
// database, with the conflict policy chosen per table.
func buildOddsUpsertQuery(table string, rows int, action conflictAction) string {
	placeholders := make([]string, 0, rows)
	for i := 0; i < rows; i++ {
		base := i * 13
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d::text, $%d::text, $%d::text, $%d::text, $%d::text, $%d::text, $%d::text, $%d::text, $%d::integer, $%d::numeric, $%d::numeric, $%d::text, $%d::jsonb)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10, base+11, base+12, base+13,
		))
	}

	conflict := `DO NOTHING`
	if action == conflictUpdate {
		conflict = `DO UPDATE SET
		market_name = EXCLUDED.market_name,
		bet_type_id = EXCLUDED.bet_type_id,
		player_id = EXCLUDED.player_id,
		period_id = EXCLUDED.period_id,
		side_id = EXCLUDED.side_id,
		book_odds = EXCLUDED.book_odds,
		close_book_odds = EXCLUDED.close_book_odds,
		line = EXCLUDED.line,
		score = EXCLUDED.score,
		by_bookmaker = EXCLUDED.by_bookmaker,
		recorded_at = NOW()`
	}

	return fmt.Sprintf(`
	INSERT INTO %s (
		event_id, sportsbook, market_name, bet_type_id, odd_id,
		player_id, period_id, side_id, book_odds, close_book_odds,
		line, score, by_bookmaker
	)
	SELECT v.event_id, v.sportsbook, v.market_name, v.bet_type_id, v.odd_id,
		v.player_id, v.period_id, v.side_id, v.book_odds, v.close_book_odds,
		v.line, v.score, v.by_bookmaker
	FROM (VALUES %s) AS v(
		event_id, sportsbook, market_name, bet_type_id, odd_id,
		player_id, period_id, side_id, book_odds, close_book_odds,
		line, score, by_bookmaker
	)
	JOIN games g ON g.id = v.event_id AND g.status NOT IN ('live', 'final')
	ON CONFLICT (event_id, odd_id, sportsbook) %s
	`, table, strings.Join(placeholders, ", "), conflict)
}

// UpsertGameAndOdds sequences games before odds because odds rows carry a
// foreign key to games. A failed games upsert skips the odds write entirely.
func (s *Store) UpsertGameAndOdds(ctx context.Context, batch models.NormalizedBatch) models.GameAndOddsResult {
	result := models.GameAndOddsResult{}

	result.Games = s.UpsertGames(ctx, batch.Games)
	if !result.Games.Success {
		s.logger.Error().
			Strs("errors", result.Games.Errors).
			Msg("games upsert failed, skipping odds")
		return result
	}

	result.Odds = s.UpsertOdds(ctx, batch.Odds)
	result.OverallSuccess = result.Games.Success && result.Odds.Success
	return result
}

// TestConnection verifies store reachability for the pre-flight check.
func (s *Store) TestConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error().Err(err).Msg("store connection check failed")
		return false
	}
	return true
}

// GetRecentGames returns the most recently updated games, for diagnostics.
func (s *Store) GetRecentGames(ctx context.Context, limit int) ([]models.NormalizedGame, error) {
	query := `
	SELECT id, sport, league, home_team_key, away_team_key,
		home_team_name, away_team_name, game_time, status,
		home_score, away_score
	FROM games
	ORDER BY updated_at DESC
	LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent games: %w", err)
	}
	defer rows.Close()

	var games []models.NormalizedGame
	for rows.Next() {
		var game models.NormalizedGame
		var status string
		var homeScore, awayScore sql.NullInt64
		if err := rows.Scan(
			&game.ID, &game.Sport, &game.League,
			&game.HomeTeamKey, &game.AwayTeamKey,
			&game.HomeTeamName, &game.AwayTeamName,
			&game.GameTime, &status, &homeScore, &awayScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		game.Status = models.GameStatus(status)
		game.HomeScore = intPtr(homeScore)
		game.AwayScore = intPtr(awayScore)
		games = append(games, game)
	}
	return games, rows.Err()
}

// GetRecentOdds returns the most recently recorded odds, for diagnostics.
func (s *Store) GetRecentOdds(ctx context.Context, limit int) ([]models.NormalizedOdd, error) {
	query := `
	SELECT event_id, sportsbook, market_name, bet_type_id, odd_id,
		player_id, period_id, side_id, book_odds, close_book_odds,
		line, score, by_bookmaker
	FROM odds
	ORDER BY recorded_at DESC
	LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent odds: %w", err)
	}
	defer rows.Close()

	var odds []models.NormalizedOdd
	for rows.Next() {
		var odd models.NormalizedOdd
		var marketName, betTypeID, playerID, periodID, sideID, score sql.NullString
		var bookOdds sql.NullInt64
		var closeBookOdds, line sql.NullString
		var byBookmaker []byte
		if err := rows.Scan(
			&odd.EventID, &odd.Sportsbook, &marketName, &betTypeID, &odd.OddID,
			&playerID, &periodID, &sideID, &bookOdds, &closeBookOdds,
			&line, &score, &byBookmaker,
		); err != nil {
			return nil, fmt.Errorf("failed to scan odds row: %w", err)
		}
		odd.MarketName = marketName.String
		odd.BetTypeID = betTypeID.String
		odd.PlayerID = playerID.String
		odd.PeriodID = periodID.String
		odd.SideID = sideID.String
		odd.BookOdds = intPtr(bookOdds)
		odd.CloseBookOdds = decimalPtr(closeBookOdds)
		odd.Line = decimalPtr(line)
		odd.Score = stringPtr(score)
		if len(byBookmaker) > 0 {
			_ = json.Unmarshal(byBookmaker, &odd.ByBookmaker)
		}
		odds = append(odds, odd)
	}
	return odds, rows.Err()
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// dedupeOddsRows drops rows that repeat the conflict key within one batch;
// Postgres rejects a statement that updates the same row twice.
func dedupeOddsRows(odds []models.NormalizedOdd) []models.NormalizedOdd {
	seen := make(map[string]bool, len(odds))
	deduped := make([]models.NormalizedOdd, 0, len(odds))
	for _, odd := range odds {
		key := odd.EventID + "|" + odd.OddID + "|" + odd.Sportsbook
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, odd)
	}
	return deduped
}

func rowsAffected(res sql.Result) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableDecimal(v *decimal.Decimal) any {
	if v == nil {
		return nil
	}
	return v.String()
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func bookQuotesJSON(quotes map[string]models.SportsbookQuote) any {
	if len(quotes) == 0 {
		return nil
	}
	data, err := json.Marshal(quotes)
	if err != nil {
		return nil
	}
	return data
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func decimalPtr(v sql.NullString) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil
	}
	return &d
}
