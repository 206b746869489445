package messaging

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/odds-ingestion-service/internal/models"
)

// TestNewKafkaPublisher tests publisher creation
func TestNewKafkaPublisher(t *testing.T) {
	config := KafkaPublisherConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "normalized_odds",
	}

	publisher := NewKafkaPublisher(config, zerolog.Nop())

	assert.NotNil(t, publisher)
	assert.NotNil(t, publisher.writer)
	assert.Equal(t, config.Topic, publisher.writer.Topic)

	publisher.Close()
}

// TestPublishNormalized_MessageFormat tests the message envelope format
func TestPublishNormalized_MessageFormat(t *testing.T) {
	gameTime := time.Date(2026, 9, 2, 23, 5, 0, 0, time.UTC)
	batch := models.NormalizedBatch{
		Games: []models.NormalizedGame{
			{
				ID:           "evt-123",
				Sport:        "BASEBALL",
				League:       "MLB",
				HomeTeamKey:  "new_york_yankees",
				AwayTeamKey:  "boston_red_sox",
				HomeTeamName: "New York Yankees",
				AwayTeamName: "Boston Red Sox",
				GameTime:     gameTime,
				Status:       models.StatusScheduled,
			},
		},
		Odds: []models.NormalizedOdd{
			{
				EventID:    "evt-123",
				Sportsbook: "consensus",
				MarketName: "Moneyline",
				OddID:      "points-home-ml",
			},
		},
	}

	kafkaMsg := models.KafkaNormalizedBatchMessage{
		BatchID:   "batch-123",
		Batch:     batch,
		Timestamp: time.Now().UTC(),
	}

	msgBytes, err := json.Marshal(kafkaMsg)
	require.NoError(t, err)
	assert.NotEmpty(t, msgBytes)

	// Verify message can be unmarshaled by a downstream consumer
	var parsed models.KafkaNormalizedBatchMessage
	err = json.Unmarshal(msgBytes, &parsed)
	assert.NoError(t, err)
	assert.Equal(t, kafkaMsg.BatchID, parsed.BatchID)
	assert.Equal(t, len(batch.Games), len(parsed.Batch.Games))
	assert.Equal(t, len(batch.Odds), len(parsed.Batch.Odds))
	assert.Equal(t, "evt-123", parsed.Batch.Games[0].ID)
	assert.Equal(t, gameTime, parsed.Batch.Games[0].GameTime)
}

// TestClose tests closing the publisher
func TestClose(t *testing.T) {
	publisher := NewKafkaPublisher(KafkaPublisherConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "normalized_odds",
	}, zerolog.Nop())

	assert.NoError(t, publisher.Close())
}
