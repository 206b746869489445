package normalizer

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/odds-ingestion-service/internal/models"
)

// setupTestNormalizer creates a normalizer with a silent logger
func setupTestNormalizer() *Normalizer {
	return NewNormalizer(zerolog.Nop())
}

// rawEvent builds a well-formed raw event for tests
func rawEvent(eventID, league, home, away string) models.RawEvent {
	return models.RawEvent{
		EventID:  eventID,
		LeagueID: league,
		SportID:  "BASEBALL",
		Teams: map[string]map[string]any{
			"home": {"names": map[string]any{"long": home}, "score": float64(0)},
			"away": {"names": map[string]any{"long": away}},
		},
		Status: map[string]any{
			"startsAt":     "2026-09-01T23:05:00Z",
			"displayShort": "Scheduled",
		},
		Odds: map[string]map[string]any{},
	}
}

func oddsRecord(oddID, marketName, bookOdds string) map[string]any {
	return map[string]any{
		"oddID":      oddID,
		"marketName": marketName,
		"betTypeID":  "ml",
		"sideID":     "home",
		"bookOdds":   bookOdds,
	}
}

// TestNormalizeEventsBatch_Success tests normalizing well-formed events
func TestNormalizeEventsBatch_Success(t *testing.T) {
	n := setupTestNormalizer()

	event := rawEvent("evt-1", "MLB", "New York Yankees", "Boston Red Sox")
	event.Odds = map[string]map[string]any{
		"odd-1": oddsRecord("odd-1", "Moneyline", "+150"),
	}

	batch := n.NormalizeEventsBatch([]models.RawEvent{event})

	require.Len(t, batch.Games, 1)
	require.Len(t, batch.Odds, 1)

	game := batch.Games[0]
	assert.Equal(t, "evt-1", game.ID)
	assert.Equal(t, "baseball", game.Sport)
	assert.Equal(t, "MLB", game.League)
	assert.Equal(t, "New York Yankees", game.HomeTeamName)
	assert.Equal(t, "new_york_yankees", game.HomeTeamKey)
	assert.Equal(t, "boston_red_sox", game.AwayTeamKey)
	assert.Equal(t, models.StatusScheduled, game.Status)
	assert.Equal(t, time.Date(2026, 9, 1, 23, 5, 0, 0, time.UTC), game.GameTime)

	odd := batch.Odds[0]
	assert.Equal(t, "evt-1", odd.EventID)
	assert.Equal(t, "odd-1", odd.OddID)
	assert.Equal(t, "Moneyline", odd.MarketName)
	require.NotNil(t, odd.BookOdds)
	assert.Equal(t, 150, *odd.BookOdds)
	require.NotNil(t, odd.CloseBookOdds)
	assert.True(t, odd.CloseBookOdds.Equal(decimal.NewFromFloat(2.5)))
}

// TestNormalizeEventsBatch_MalformedEventIsolated tests that a single bad
// event does not abort the batch
func TestNormalizeEventsBatch_MalformedEventIsolated(t *testing.T) {
	n := setupTestNormalizer()

	events := make([]models.RawEvent, 0, 10)
	for i := 0; i < 10; i++ {
		event := rawEvent(fmtEventID(i), "NBA", "Team Home", "Team Away")
		if i == 4 {
			// Malformed nested team object
			event.Teams = nil
		}
		events = append(events, event)
	}

	batch := n.NormalizeEventsBatch(events)

	assert.Len(t, batch.Games, 9)
	for _, game := range batch.Games {
		assert.NotEqual(t, fmtEventID(4), game.ID)
	}
}

func fmtEventID(i int) string {
	return "evt-" + string(rune('a'+i))
}

// TestNormalizeOddsData_DedupCap tests that at most two quotes per oddID are
// kept across a batch, first seen wins
func TestNormalizeOddsData_DedupCap(t *testing.T) {
	n := setupTestNormalizer()

	// Four events, each quoting the same logical odd once.
	events := make([]models.RawEvent, 0, 4)
	for i := 0; i < 4; i++ {
		event := rawEvent(fmtEventID(i), "NBA", "Home", "Away")
		event.Odds = map[string]map[string]any{
			"shared-odd": oddsRecord("shared-odd", "Moneyline", "-110"),
		}
		events = append(events, event)
	}

	batch := n.NormalizeEventsBatch(events)

	require.Len(t, batch.Odds, 2)
	// First-seen order: the surviving quotes belong to the first two events.
	assert.Equal(t, fmtEventID(0), batch.Odds[0].EventID)
	assert.Equal(t, fmtEventID(1), batch.Odds[1].EventID)
}

// TestNormalizeOddsData_DedupCapWithinEvent tests that when one event quotes
// the same logical odd three or more times, exactly two survive and survivor
// selection is deterministic
func TestNormalizeOddsData_DedupCapWithinEvent(t *testing.T) {
	rawOdds := map[string]map[string]any{
		"entry-d": oddsRecord("shared-odd", "Moneyline", "-105"),
		"entry-a": oddsRecord("shared-odd", "Moneyline", "-110"),
		"entry-c": oddsRecord("shared-odd", "Moneyline", "-115"),
		"entry-b": oddsRecord("shared-odd", "Moneyline", "-120"),
	}

	for run := 0; run < 20; run++ {
		n := setupTestNormalizer()
		odds := n.NormalizeOddsData("evt-1", rawOdds)

		require.Len(t, odds, 2)
		// Entries are visited in key order, so the first two keys win on
		// every run.
		require.NotNil(t, odds[0].BookOdds)
		require.NotNil(t, odds[1].BookOdds)
		assert.Equal(t, -110, *odds[0].BookOdds)
		assert.Equal(t, -120, *odds[1].BookOdds)
	}
}

// TestResetOddsTracking tests the counter is batch-scoped, not cleared per
// event, and clears on explicit reset
func TestResetOddsTracking(t *testing.T) {
	n := setupTestNormalizer()

	odds := map[string]map[string]any{
		"o1": oddsRecord("o1", "Moneyline", "-110"),
	}

	assert.Len(t, n.NormalizeOddsData("evt-1", odds), 1)
	assert.Len(t, n.NormalizeOddsData("evt-2", odds), 1)
	// Third occurrence in the same batch is dropped.
	assert.Len(t, n.NormalizeOddsData("evt-3", odds), 0)

	n.ResetOddsTracking()
	assert.Len(t, n.NormalizeOddsData("evt-4", odds), 1)
}

// TestNormalizeGame_TeamNameFallbacks tests the ordered accessor chain and
// the Unknown Team placeholder
func TestNormalizeGame_TeamNameFallbacks(t *testing.T) {
	n := setupTestNormalizer()

	event := rawEvent("evt-1", "NHL", "x", "x")
	event.Teams = map[string]map[string]any{
		"home": {"teamName": "Oilers"},
		"away": {"nothing_recognizable": true},
	}

	batch := n.NormalizeEventsBatch([]models.RawEvent{event})

	require.Len(t, batch.Games, 1)
	assert.Equal(t, "Oilers", batch.Games[0].HomeTeamName)
	assert.Equal(t, "Unknown Team", batch.Games[0].AwayTeamName)
	assert.Equal(t, "unknown_team", batch.Games[0].AwayTeamKey)
}

// TestNormalizeGame_MissingTimeDefaultsToNow tests the game-time default
func TestNormalizeGame_MissingTimeDefaultsToNow(t *testing.T) {
	n := setupTestNormalizer()

	event := rawEvent("evt-1", "NFL", "Home", "Away")
	event.Status = map[string]any{"startsAt": "not a timestamp"}

	before := time.Now().UTC()
	batch := n.NormalizeEventsBatch([]models.RawEvent{event})
	after := time.Now().UTC()

	require.Len(t, batch.Games, 1)
	gameTime := batch.Games[0].GameTime
	assert.False(t, gameTime.Before(before))
	assert.False(t, gameTime.After(after))
}

// TestNormalizeGame_Scores tests that missing scores stay nil, not zero
func TestNormalizeGame_Scores(t *testing.T) {
	n := setupTestNormalizer()

	event := rawEvent("evt-1", "NBA", "Home", "Away")
	event.Teams["home"]["score"] = float64(101)
	delete(event.Teams["away"], "score")

	batch := n.NormalizeEventsBatch([]models.RawEvent{event})

	require.Len(t, batch.Games, 1)
	require.NotNil(t, batch.Games[0].HomeScore)
	assert.Equal(t, 101, *batch.Games[0].HomeScore)
	assert.Nil(t, batch.Games[0].AwayScore)
}

// TestExtractStatus tests status mapping and its scheduled default
func TestExtractStatus(t *testing.T) {
	tests := []struct {
		name   string
		status map[string]any
		want   models.GameStatus
	}{
		{"completed flag", map[string]any{"completed": true, "started": true}, models.StatusFinal},
		{"started flag", map[string]any{"started": true}, models.StatusLive},
		{"cancelled flag", map[string]any{"cancelled": true, "completed": true}, models.StatusCancelled},
		{"delayed flag", map[string]any{"delayed": true}, models.StatusPostponed},
		{"display string", map[string]any{"displayShort": "Final"}, models.StatusFinal},
		{"unmapped string degrades", map[string]any{"displayShort": "weird"}, models.StatusScheduled},
		{"nil section", nil, models.StatusScheduled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractStatus(tt.status))
		})
	}
}

// TestSlugifyTeamName tests the team key slugification rules
func TestSlugifyTeamName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"basic", "New York Yankees", "new_york_yankees"},
		{"punctuation stripped", "St. Louis Cardinals", "st_louis_cardinals"},
		{"extra whitespace", "  Los   Angeles  Lakers ", "los_angeles_lakers"},
		{"non-ascii stripped", "Montréal Canadiens", "montral_canadiens"},
		{"truncated to 50", strings.Repeat("a", 60), strings.Repeat("a", 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SlugifyTeamName(tt.in))
		})
	}
}

// TestTruncate_RuneBoundary tests that clamping never splits a multibyte
// character
func TestTruncate_RuneBoundary(t *testing.T) {
	// "é" is two bytes, so a byte-index cut at 255 would land inside it.
	name := strings.Repeat("a", 254) + "é"
	assert.Equal(t, 256, len(name))

	got := truncate(name, 255)

	assert.Equal(t, strings.Repeat("a", 254), got)
	assert.True(t, utf8.ValidString(got))

	// Short strings pass through untouched.
	assert.Equal(t, "Montréal", truncate("Montréal", 255))
}

// TestParseAmericanOdds tests American odds parsing from strings and numbers
func TestParseAmericanOdds(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *int
	}{
		{"positive with plus", "+150", intPtr(150)},
		{"negative", "-110", intPtr(-110)},
		{"plain number string", "200", intPtr(200)},
		{"float input", float64(-105), intPtr(-105)},
		{"zero is invalid", "0", nil},
		{"garbage", "abc", nil},
		{"empty", "", nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmericanOdds(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

// TestAmericanToDecimal tests the American to decimal odds conversion
func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		american int
		want     string
		ok       bool
	}{
		{"plus 150", 150, "2.5", true},
		{"minus 110", -110, "1.91", true},
		{"minus 200", -200, "1.5", true},
		{"plus 100", 100, "2", true},
		{"zero invalid", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AmericanToDecimal(tt.american)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				want, err := decimal.NewFromString(tt.want)
				require.NoError(t, err)
				assert.True(t, want.Equal(got), "want %s got %s", want, got)
			}
		})
	}
}

// TestNormalizeOdd_UnparseableValuesBecomeNil tests numeric leniency
func TestNormalizeOdd_UnparseableValuesBecomeNil(t *testing.T) {
	n := setupTestNormalizer()

	odds := n.NormalizeOddsData("evt-1", map[string]map[string]any{
		"o1": {
			"oddID":      "o1",
			"marketName": "Spread",
			"bookOdds":   "not-odds",
			"bookSpread": "garbage",
		},
	})

	require.Len(t, odds, 1)
	assert.Nil(t, odds[0].BookOdds)
	assert.Nil(t, odds[0].CloseBookOdds)
	assert.Nil(t, odds[0].Line)
}

// TestNormalizeOdd_BookQuotesAndLine tests sparse per-book quotes and line
// extraction
func TestNormalizeOdd_BookQuotesAndLine(t *testing.T) {
	n := setupTestNormalizer()

	odds := n.NormalizeOddsData("evt-1", map[string]map[string]any{
		"o1": {
			"oddID":      "o1",
			"marketName": "Spread",
			"bookOdds":   "-110",
			"bookSpread": "-3.5",
			"byBookmaker": map[string]any{
				"fanduel":    map[string]any{"odds": "-108", "deepLink": "https://fd.example/bet"},
				"draftkings": map[string]any{"odds": "-112"},
				"empty":      map[string]any{},
			},
		},
	})

	require.Len(t, odds, 1)
	odd := odds[0]
	require.NotNil(t, odd.Line)
	assert.True(t, odd.Line.Equal(decimal.NewFromFloat(-3.5)))

	require.Len(t, odd.ByBookmaker, 2)
	assert.Equal(t, "-108", odd.ByBookmaker["fanduel"].Odds)
	assert.Equal(t, "https://fd.example/bet", odd.ByBookmaker["fanduel"].Link)
	assert.Equal(t, "-112", odd.ByBookmaker["draftkings"].Odds)
}

// TestNormalizeOdd_DefaultSportsbook tests the sportsbook default
func TestNormalizeOdd_DefaultSportsbook(t *testing.T) {
	n := setupTestNormalizer()

	odds := n.NormalizeOddsData("evt-1", map[string]map[string]any{
		"o1": oddsRecord("o1", "Moneyline", "-110"),
	})

	require.Len(t, odds, 1)
	assert.Equal(t, "consensus", odds[0].Sportsbook)
}

// TestSportForLeague tests league to sport mapping and its default
func TestSportForLeague(t *testing.T) {
	assert.Equal(t, "basketball", sportForLeague("NBA"))
	assert.Equal(t, "hockey", sportForLeague("nhl"))
	assert.Equal(t, "other", sportForLeague("CRICKET"))
}

func intPtr(i int) *int {
	return &i
}
