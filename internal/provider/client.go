package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-ingestion-service/internal/metrics"
	"github.com/cypherlabdev/odds-ingestion-service/internal/models"
)

// ErrRateLimited is returned when the provider answers 429. It is surfaced
// immediately, without retrying, so the caller can fall back to cached data
// instead of hammering the provider.
var ErrRateLimited = errors.New("provider rate limited")

// HTTPError is a non-2xx provider response that survived the retry policy.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// ClientConfig holds provider client configuration.
type ClientConfig struct {
	BaseURL        string        // e.g., "https://api.sportsgameodds.com/v2"
	APIKey         string        // sent as X-Api-Key on every request
	Timeout        time.Duration // per-request timeout
	MaxRetries     int           // retry cap for transient failures
	RetryBaseDelay time.Duration // backoff is base * 2^attempt
	MaxPages       int           // hard ceiling on pages per fetch
	MaxEvents      int           // hard ceiling on accumulated events per fetch
	PageLimit      int           // requested page size
}

// Client fetches paginated event/odds data from the provider.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new provider client.
func NewClient(config ClientConfig, logger zerolog.Logger) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger.With().Str("component", "provider_client").Logger(),
	}
}

// FetchEvents fetches all event pages for the given leagues and start-time
// window. Multiple leagues are comma-joined into a single provider call.
// Pagination follows the provider cursor until no cursor is returned, an
// empty page is returned, or a safety ceiling (pages or total events) is hit.
//
// Error policy:
//   - 429 returns ErrRateLimited immediately, with whatever was collected.
//   - other 4xx and 5xx (after retries) abort pagination and return the
//     partial result without an error; the cause is logged.
//   - transport failures that exhaust the retry budget are propagated.
func (c *Client) FetchEvents(ctx context.Context, leagueIDs []string, startsAfter, startsBefore time.Time) ([]models.RawEvent, error) {
	if len(leagueIDs) == 0 {
		return nil, fmt.Errorf("at least one league is required")
	}

	leagueParam := strings.Join(leagueIDs, ",")
	var events []models.RawEvent
	cursor := ""

	for page := 0; page < c.config.MaxPages; page++ {
		resp, err := c.fetchPage(ctx, leagueParam, startsAfter, startsBefore, cursor)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				metrics.RateLimitHits.Inc()
				c.logger.Warn().
					Str("leagues", leagueParam).
					Int("page", page).
					Msg("provider rate limited, aborting fetch")
				return events, ErrRateLimited
			}

			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				// Client data problems and persistent server errors are not
				// fatal to the run: keep the pages already collected.
				c.logger.Error().
					Err(err).
					Str("leagues", leagueParam).
					Int("page", page).
					Int("events_collected", len(events)).
					Msg("provider request failed, returning partial result")
				return events, nil
			}

			return events, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}

		metrics.PagesFetched.Inc()
		metrics.EventsFetched.Add(float64(len(resp.Data)))

		c.logger.Debug().
			Str("leagues", leagueParam).
			Int("page", page).
			Int("events", len(resp.Data)).
			Bool("has_cursor", resp.NextCursor != "").
			Msg("fetched provider page")

		events = append(events, resp.Data...)

		if resp.NextCursor == "" || len(resp.Data) == 0 {
			break
		}
		if len(events) >= c.config.MaxEvents {
			c.logger.Warn().
				Int("events", len(events)).
				Int("max_events", c.config.MaxEvents).
				Msg("event ceiling reached, stopping pagination")
			break
		}
		cursor = resp.NextCursor
	}

	c.logger.Info().
		Str("leagues", leagueParam).
		Int("events", len(events)).
		Msg("fetch complete")

	return events, nil
}

// fetchPage issues a single page request, retrying transient failures with
// exponential backoff.
func (c *Client) fetchPage(ctx context.Context, leagues string, startsAfter, startsBefore time.Time, cursor string) (*models.EventsResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.ProviderRetries.Inc()
			delay := c.config.RetryBaseDelay * time.Duration(1<<(attempt-1))
			c.logger.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("retrying provider request")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := c.doRequest(ctx, leagues, startsAfter, startsBefore, cursor)
		if err == nil {
			return resp, nil
		}

		// 429 and non-retryable status codes bypass the retry loop.
		if errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode < 500 {
			return nil, err
		}

		lastErr = err
	}

	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}

// doRequest performs one HTTP round trip and classifies the response.
func (c *Client) doRequest(ctx context.Context, leagues string, startsAfter, startsBefore time.Time, cursor string) (*models.EventsResponse, error) {
	endpoint, err := url.Parse(c.config.BaseURL + "/events")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	query := endpoint.Query()
	query.Set("leagueID", leagues)
	query.Set("startsAfter", startsAfter.Format("2006-01-02"))
	query.Set("startsBefore", startsBefore.Format("2006-01-02"))
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if c.config.PageLimit > 0 {
		query.Set("limit", fmt.Sprintf("%d", c.config.PageLimit))
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncateBody(body)}
	}

	var eventsResp models.EventsResponse
	if err := json.Unmarshal(body, &eventsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !eventsResp.Success {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: "provider reported success=false"}
	}

	return &eventsResp, nil
}

// truncateBody keeps error messages readable when the provider returns HTML.
func truncateBody(body []byte) string {
	const max = 200
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
