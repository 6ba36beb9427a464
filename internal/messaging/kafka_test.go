package messaging

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopstream/recommender/pkg/models"
)

func TestInteractionMessage_Serialization(t *testing.T) {
	message := InteractionMessage{
		Interaction: models.Interaction{
			UserID:          "user-1",
			ProductID:       "PROD00042",
			InteractionType: models.InteractionPurchase,
			Timestamp:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			SessionID:       "sess-9",
		},
		Timestamp: time.Now(),
	}

	messageBytes, err := json.Marshal(message)
	require.NoError(t, err)
	assert.NotEmpty(t, messageBytes)

	var decoded InteractionMessage
	require.NoError(t, json.Unmarshal(messageBytes, &decoded))

	assert.Equal(t, message.Interaction.UserID, decoded.Interaction.UserID)
	assert.Equal(t, message.Interaction.ProductID, decoded.Interaction.ProductID)
	assert.Equal(t, message.Interaction.InteractionType, decoded.Interaction.InteractionType)
	assert.True(t, message.Interaction.Timestamp.Equal(decoded.Interaction.Timestamp))
	assert.Equal(t, message.Interaction.SessionID, decoded.Interaction.SessionID)
}

func TestInteractionMessage_UnknownFieldsIgnored(t *testing.T) {
	payload := []byte(`{
		"interaction": {
			"user_id": "user-2",
			"product_id": "PROD00001",
			"interaction_type": "view",
			"timestamp": "2026-08-01T12:00:00Z"
		},
		"timestamp": "2026-08-01T12:00:01Z",
		"schema_version": 2
	}`)

	var decoded InteractionMessage
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "user-2", decoded.Interaction.UserID)
	assert.Equal(t, models.InteractionView, decoded.Interaction.InteractionType)
}
