package normalizer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/odds-ingestion-service/internal/models"
)

const (
	// maxQuotesPerOddID caps how many quotes are kept for one logical odd
	// within a batch. First seen wins.
	maxQuotesPerOddID = 2

	maxTeamKeyLength = 50
	maxFieldLength   = 255

	// defaultSportsbook is used when the provider does not disambiguate
	// quotes per book.
	defaultSportsbook = "consensus"

	unknownTeamName = "Unknown Team"
)

// leagueSports maps provider league codes to sports. Unmapped codes degrade
// to "other".
var leagueSports = map[string]string{
	"NBA":   "basketball",
	"NCAAB": "basketball",
	"WNBA":  "basketball",
	"NFL":   "football",
	"NCAAF": "football",
	"MLB":   "baseball",
	"NHL":   "hockey",
	"UFC":   "mma",
}

// statusLookup maps provider status strings to the normalized enum.
// Unrecognized inputs degrade to scheduled.
var statusLookup = map[string]models.GameStatus{
	"scheduled":   models.StatusScheduled,
	"upcoming":    models.StatusScheduled,
	"live":        models.StatusLive,
	"in_progress": models.StatusLive,
	"inprogress":  models.StatusLive,
	"final":       models.StatusFinal,
	"completed":   models.StatusFinal,
	"finished":    models.StatusFinal,
	"cancelled":   models.StatusCancelled,
	"canceled":    models.StatusCancelled,
	"postponed":   models.StatusPostponed,
	"delayed":     models.StatusPostponed,
}

// Ordered accessor chains for fields whose name and location vary across
// provider payloads. Paths are dot-separated walks into the raw maps.
var (
	teamNamePaths  = []string{"names.long", "names.medium", "names.short", "name", "teamName", "displayName"}
	scorePaths     = []string{"score", "points"}
	startTimePaths = []string{"startsAt", "startTime", "startDate", "scheduled"}
	linePaths      = []string{"bookSpread", "closeSpread", "bookOverUnder", "closeOverUnder", "spread", "overUnder", "line"}
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9_]`)

// Normalizer maps raw provider events into the fixed relational schema. The
// only mutable state is the per-batch oddID counter used to cap duplicate
// quotes; one Normalizer must not be shared across overlapping batches.
type Normalizer struct {
	oddIDCounts map[string]int
	logger      zerolog.Logger
}

// NewNormalizer creates a new normalizer with empty odds tracking.
func NewNormalizer(logger zerolog.Logger) *Normalizer {
	return &Normalizer{
		oddIDCounts: make(map[string]int),
		logger:      logger.With().Str("component", "normalizer").Logger(),
	}
}

// ResetOddsTracking clears the batch-scoped oddID counter. Callers must
// invoke this before processing a logically distinct batch; the counter is
// never cleared implicitly per event.
func (n *Normalizer) ResetOddsTracking() {
	n.oddIDCounts = make(map[string]int)
}

// NormalizeEventsBatch normalizes a batch of raw events. A malformed event is
// logged and skipped; it never aborts the rest of the batch.
func (n *Normalizer) NormalizeEventsBatch(events []models.RawEvent) models.NormalizedBatch {
	batch := models.NormalizedBatch{
		Games: make([]models.NormalizedGame, 0, len(events)),
		Odds:  make([]models.NormalizedOdd, 0),
	}

	for i, event := range events {
		game, odds, err := n.normalizeEvent(event)
		if err != nil {
			n.logger.Warn().
				Err(err).
				Int("index", i).
				Str("event_id", event.EventID).
				Msg("skipping malformed event")
			continue
		}
		batch.Games = append(batch.Games, *game)
		batch.Odds = append(batch.Odds, odds...)
	}

	n.logger.Info().
		Int("events", len(events)).
		Int("games", len(batch.Games)).
		Int("odds", len(batch.Odds)).
		Msg("normalized events batch")

	return batch
}

// normalizeEvent builds one game and its odds rows. The recover guard keeps a
// single pathological payload from taking down the batch.
func (n *Normalizer) normalizeEvent(event models.RawEvent) (game *models.NormalizedGame, odds []models.NormalizedOdd, err error) {
	defer func() {
		if r := recover(); r != nil {
			game, odds = nil, nil
			err = fmt.Errorf("panic normalizing event: %v", r)
		}
	}()

	game, err = n.normalizeGame(event)
	if err != nil {
		return nil, nil, err
	}

	odds = n.NormalizeOddsData(event.EventID, event.Odds)
	return game, odds, nil
}

// normalizeGame maps the event header into a NormalizedGame.
func (n *Normalizer) normalizeGame(event models.RawEvent) (*models.NormalizedGame, error) {
	if event.EventID == "" {
		return nil, fmt.Errorf("event has no eventID")
	}
	if len(event.Teams) == 0 {
		return nil, fmt.Errorf("event %s has no teams section", event.EventID)
	}

	homeName := extractString(anyMap(event.Teams["home"]), teamNamePaths, unknownTeamName)
	awayName := extractString(anyMap(event.Teams["away"]), teamNamePaths, unknownTeamName)

	game := &models.NormalizedGame{
		ID:           event.EventID,
		Sport:        sportForLeague(event.LeagueID),
		League:       event.LeagueID,
		HomeTeamKey:  SlugifyTeamName(homeName),
		AwayTeamKey:  SlugifyTeamName(awayName),
		HomeTeamName: truncate(homeName, maxFieldLength),
		AwayTeamName: truncate(awayName, maxFieldLength),
		GameTime:     n.extractGameTime(event),
		Status:       extractStatus(event.Status),
		HomeScore:    extractScore(anyMap(event.Teams["home"])),
		AwayScore:    extractScore(anyMap(event.Teams["away"])),
	}

	return game, nil
}

// NormalizeOddsData maps the event's odds section into NormalizedOdd rows,
// skipping quotes beyond the second occurrence of the same oddID across the
// current batch.
func (n *Normalizer) NormalizeOddsData(eventID string, rawOdds map[string]map[string]any) []models.NormalizedOdd {
	if len(rawOdds) == 0 {
		return nil
	}

	// Ranging over the map directly would make the duplicate cap keep an
	// arbitrary pair of quotes; sorted keys keep survivor selection and emit
	// order stable across runs.
	keys := make([]string, 0, len(rawOdds))
	for key := range rawOdds {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	odds := make([]models.NormalizedOdd, 0, len(rawOdds))
	for _, key := range keys {
		record := rawOdds[key]
		oddID := stringField(record, "oddID")
		if oddID == "" {
			oddID = key
		}

		if n.oddIDCounts[oddID] >= maxQuotesPerOddID {
			n.logger.Debug().
				Str("odd_id", oddID).
				Msg("duplicate quote cap reached, skipping")
			continue
		}

		odd := n.normalizeOdd(eventID, oddID, record)
		if odd == nil {
			continue
		}

		n.oddIDCounts[oddID]++
		odds = append(odds, *odd)
	}

	return odds
}

// normalizeOdd maps one provider odds record. Unparseable numeric fields
// become nil, never an error.
func (n *Normalizer) normalizeOdd(eventID, oddID string, record map[string]any) *models.NormalizedOdd {
	bookOdds := ParseAmericanOdds(firstOf(record, "bookOdds", "odds"))

	odd := &models.NormalizedOdd{
		EventID:       eventID,
		Sportsbook:    truncate(stringFieldDefault(record, "sportsbook", defaultSportsbook), maxFieldLength),
		MarketName:    truncate(stringField(record, "marketName"), maxFieldLength),
		BetTypeID:     truncate(stringField(record, "betTypeID"), maxFieldLength),
		OddID:         truncate(oddID, maxFieldLength),
		PlayerID:      truncate(stringField(record, "playerID"), maxFieldLength),
		PeriodID:      truncate(stringField(record, "periodID"), maxFieldLength),
		SideID:        truncate(stringField(record, "sideID"), maxFieldLength),
		BookOdds:      bookOdds,
		CloseBookOdds: americanToDecimalPtr(bookOdds),
		Line:          extractLine(record),
		ByBookmaker:   extractBookQuotes(record),
	}

	if score := stringField(record, "score"); score != "" {
		s := truncate(score, maxFieldLength)
		odd.Score = &s
	}

	return odd
}

// extractGameTime parses the event start time, trying the fallback paths in
// order. A missing or unparseable time defaults to now with a warning.
func (n *Normalizer) extractGameTime(event models.RawEvent) time.Time {
	raw := extractString(event.Status, startTimePaths, "")
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.UTC()
		}
		if t, err := time.Parse("2006-01-02T15:04:05Z", raw); err == nil {
			return t.UTC()
		}
	}

	n.logger.Warn().
		Str("event_id", event.EventID).
		Str("raw_time", raw).
		Msg("missing or unparseable game time, defaulting to now")
	return time.Now().UTC()
}

// extractStatus derives the game status from the provider status section,
// preferring explicit lifecycle booleans over the display string.
func extractStatus(status map[string]any) models.GameStatus {
	if status == nil {
		return models.StatusScheduled
	}

	if b, ok := status["cancelled"].(bool); ok && b {
		return models.StatusCancelled
	}
	if b, ok := status["delayed"].(bool); ok && b {
		return models.StatusPostponed
	}
	if b, ok := status["completed"].(bool); ok && b {
		return models.StatusFinal
	}
	if b, ok := status["started"].(bool); ok && b {
		return models.StatusLive
	}

	for _, path := range []string{"displayShort", "display", "status"} {
		if raw := extractString(status, []string{path}, ""); raw != "" {
			if mapped, ok := statusLookup[strings.ToLower(raw)]; ok {
				return mapped
			}
		}
	}

	return models.StatusScheduled
}

// extractScore reads a team's score. Missing scores stay nil, not zero.
func extractScore(team map[string]any) *int {
	for _, path := range scorePaths {
		v := lookupPath(team, path)
		if v == nil {
			continue
		}
		if i, ok := toInt(v); ok {
			return &i
		}
	}
	return nil
}

// extractLine reads the spread or total line, trying the fallback paths in
// order.
func extractLine(record map[string]any) *decimal.Decimal {
	for _, path := range linePaths {
		v := lookupPath(record, path)
		if v == nil {
			continue
		}
		if d, ok := toDecimal(v); ok {
			return &d
		}
	}
	return nil
}

// extractBookQuotes reads the sparse per-sportsbook odds/link pairs.
func extractBookQuotes(record map[string]any) map[string]models.SportsbookQuote {
	byBook := anyMap(record["byBookmaker"])
	if len(byBook) == 0 {
		return nil
	}

	quotes := make(map[string]models.SportsbookQuote, len(byBook))
	for book, v := range byBook {
		entry := anyMap(v)
		if entry == nil {
			continue
		}
		quote := models.SportsbookQuote{
			Odds: extractString(entry, []string{"odds", "bookOdds"}, ""),
			Link: extractString(entry, []string{"deepLink", "link"}, ""),
		}
		if quote.Odds == "" && quote.Link == "" {
			continue
		}
		quotes[book] = quote
	}

	if len(quotes) == 0 {
		return nil
	}
	return quotes
}

// SlugifyTeamName converts a display name into a storage-safe team key:
// lowercase, whitespace to underscores, stripped to [a-z0-9_], at most 50
// characters.
func SlugifyTeamName(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "_")
	slug = nonSlugChars.ReplaceAllString(slug, "")
	return truncate(slug, maxTeamKeyLength)
}

// ParseAmericanOdds parses an American-odds value from a string or number.
// Zero and unparseable inputs return nil.
func ParseAmericanOdds(v any) *int {
	var odds int
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "+"))
		if s == "" {
			return nil
		}
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return nil
		}
		odds = parsed
	case float64:
		odds = int(t)
	case int:
		odds = t
	default:
		return nil
	}

	if odds == 0 {
		return nil
	}
	return &odds
}

// AmericanToDecimal converts American odds to decimal odds, rounded to two
// places: positive odds/100 + 1, negative 100/|odds| + 1. Zero returns false.
func AmericanToDecimal(american int) (decimal.Decimal, bool) {
	if american == 0 {
		return decimal.Decimal{}, false
	}

	hundred := decimal.NewFromInt(100)
	one := decimal.NewFromInt(1)
	d := decimal.NewFromInt(int64(american))

	var result decimal.Decimal
	if american > 0 {
		result = d.Div(hundred).Add(one)
	} else {
		result = hundred.Div(d.Abs()).Add(one)
	}
	return result.Round(2), true
}

func americanToDecimalPtr(american *int) *decimal.Decimal {
	if american == nil {
		return nil
	}
	d, ok := AmericanToDecimal(*american)
	if !ok {
		return nil
	}
	return &d
}

func sportForLeague(league string) string {
	if sport, ok := leagueSports[strings.ToUpper(league)]; ok {
		return sport
	}
	return "other"
}

// extractString walks the fallback paths in order and returns the first
// non-empty string, else the fallback.
func extractString(m map[string]any, paths []string, fallback string) string {
	for _, path := range paths {
		v := lookupPath(m, path)
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return fallback
}

// lookupPath walks a dot-separated path into nested maps.
func lookupPath(m map[string]any, path string) any {
	if m == nil {
		return nil
	}
	parts := strings.Split(path, ".")
	var current any = m
	for _, part := range parts {
		node := anyMap(current)
		if node == nil {
			return nil
		}
		current = node[part]
	}
	return current
}

// anyMap coerces loosely-typed nested sections into map[string]any.
func anyMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	default:
		return nil
	}
}

func stringField(record map[string]any, field string) string {
	if s, ok := record[field].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func stringFieldDefault(record map[string]any, field, fallback string) string {
	if s := stringField(record, field); s != "" {
		return s
	}
	return fallback
}

func firstOf(record map[string]any, fields ...string) any {
	for _, field := range fields {
		if v, ok := record[field]; ok && v != nil {
			return v
		}
	}
	return nil
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t).Round(2), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "+"))
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d.Round(2), true
	default:
		return decimal.Decimal{}, false
	}
}

// truncate clamps a string to the storage column width, cutting on a rune
// boundary so a multibyte character is never split into invalid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for i := max; i > 0; i-- {
		if utf8.RuneStart(s[i]) {
			return s[:i]
		}
	}
	return ""
}
