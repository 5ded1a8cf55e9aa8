package outbox

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btspay/transfer-ledger/internal/domain/audit"
	"github.com/btspay/transfer-ledger/internal/domain/journal"
	"github.com/btspay/transfer-ledger/internal/domain/shared"
)

func newTestEvent(t *testing.T) *audit.Event {
	t.Helper()
	txn, err := journal.NewTransaction(uuid.New(), shared.TransactionKindDeposit, 1000, shared.PaymentMethodKkiapay, "")
	require.NoError(t, err)
	return audit.NewEvent(txn, "corr-1")
}

func TestNewMessage(t *testing.T) {
	event := newTestEvent(t)

	msg, err := NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.TransactionID, msg.TransactionID)
	assert.Equal(t, event.AccountID, msg.AccountID)
	assert.Equal(t, shared.OutboxStatusPending, msg.Status)
	assert.Equal(t, 0, msg.Attempts)
	assert.Nil(t, msg.LastAttemptAt)

	decoded, err := msg.Event()
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
}

func TestMessage_StatusTransitions(t *testing.T) {
	msg, err := NewMessage(newTestEvent(t))
	require.NoError(t, err)

	msg.IncrementAttempts()
	assert.Equal(t, 1, msg.Attempts)
	assert.NotNil(t, msg.LastAttemptAt)

	msg.MarkAsProcessed()
	assert.Equal(t, shared.OutboxStatusProcessed, msg.Status)

	msg.MarkAsFailed()
	assert.Equal(t, shared.OutboxStatusFailedToPublish, msg.Status)
}

func TestMessage_Event_CorruptPayload(t *testing.T) {
	msg, err := NewMessage(newTestEvent(t))
	require.NoError(t, err)

	t.Run("Garbage", func(t *testing.T) {
		broken := *msg
		broken.Payload = json.RawMessage(`not json`)

		_, err := broken.Event()
		assert.Error(t, err)
	})

	t.Run("FailsValidation", func(t *testing.T) {
		broken := *msg
		broken.Payload = json.RawMessage(`{"amount":-1}`)

		_, err := broken.Event()
		var corrupt audit.ErrCorruptEvent
		assert.ErrorAs(t, err, &corrupt)
	})
}
