package services

import (
	"net/http"
	"testing"

	"github.com/hwinelin/backoffice-functions/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateChangePayload(state string, resourceID int64) *models.WebhookPayload {
	p := &models.WebhookPayload{EventType: stateChangeEventType}
	p.Data.CurrentState = state
	p.Data.Resource.ID = resourceID
	return p
}

func TestClassifyPayloadTerminalStates(t *testing.T) {
	for state := range terminalTransferStates {
		trigger, terminal := ClassifyPayload(stateChangePayload(state, 12345))
		require.Nil(t, terminal, "state %s should proceed", state)
		assert.Equal(t, int64(12345), trigger.TransferID)
		assert.Equal(t, "webhook", trigger.Source)
		assert.False(t, trigger.Force)
	}
}

func TestClassifyPayloadIgnoresNonTerminalStates(t *testing.T) {
	for _, state := range []string{"incoming_payment_waiting", "processing", "cancelled", ""} {
		trigger, terminal := ClassifyPayload(stateChangePayload(state, 12345))
		require.NotNil(t, terminal, "state %q should be ignored", state)
		assert.Zero(t, trigger.TransferID)
		assert.True(t, terminal.Success)
		assert.Equal(t, http.StatusOK, terminal.StatusCode)
		assert.Contains(t, terminal.Message, "ignored")
	}
}

func TestClassifyPayloadRejectsEventWithoutResourceID(t *testing.T) {
	_, terminal := ClassifyPayload(stateChangePayload("outgoing_payment_sent", 0))
	require.NotNil(t, terminal)
	assert.False(t, terminal.Success)
	assert.Equal(t, http.StatusBadRequest, terminal.StatusCode)
}

func TestClassifyPayloadManualTrigger(t *testing.T) {
	trigger, terminal := ClassifyPayload(&models.WebhookPayload{TransferID: 777, Force: true})
	require.Nil(t, terminal)
	assert.Equal(t, int64(777), trigger.TransferID)
	assert.True(t, trigger.Force)
	assert.Equal(t, "manual", trigger.Source)
}

func TestClassifyPayloadRejectsUnrecognizedShape(t *testing.T) {
	_, terminal := ClassifyPayload(&models.WebhookPayload{})
	require.NotNil(t, terminal)
	assert.False(t, terminal.Success)
	assert.Equal(t, http.StatusBadRequest, terminal.StatusCode)

	_, terminal = ClassifyPayload(&models.WebhookPayload{EventType: "balances#credit"})
	require.NotNil(t, terminal)
	assert.Equal(t, http.StatusBadRequest, terminal.StatusCode)
}
