package auditor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/btspay/transfer-ledger/internal/config"
	"github.com/btspay/transfer-ledger/internal/domain/audit"
	"github.com/btspay/transfer-ledger/internal/domain/outbox"
	"github.com/btspay/transfer-ledger/internal/domain/shared"
)

func newPendingMessage(t *testing.T, event *audit.Event) *outbox.Message {
	t.Helper()
	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)
	msg.ID = 101
	return msg
}

func TestEventPublisher_PublishEvent(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("PublishesKeyedByAccountAndMarksProcessed", func(t *testing.T) {
		outboxRepo := new(MockOutboxRepository)
		producer := new(MockMessagePublisher)
		publisher := NewEventPublisher(logger, outboxRepo, producer)

		event := newTestEvent()
		msg := newPendingMessage(t, event)

		producer.On("Publish", ctx, event.AccountID.String(), mock.MatchedBy(func(v interface{}) bool {
			e, ok := v.(*audit.Event)
			return ok && e.EventID == event.EventID
		})).Return(nil)
		outboxRepo.On("UpdateStatus", ctx, msg.ID, shared.OutboxStatusProcessed).Return(nil)

		err := publisher.PublishEvent(ctx, msg)
		assert.NoError(t, err)
		producer.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("CorruptPayloadParkedAsFailedToPublish", func(t *testing.T) {
		outboxRepo := new(MockOutboxRepository)
		producer := new(MockMessagePublisher)
		publisher := NewEventPublisher(logger, outboxRepo, producer)

		msg := &outbox.Message{
			ID:        102,
			Payload:   json.RawMessage(`{"event_id":"00000000-0000-0000-0000-000000000000"}`),
			Status:    shared.OutboxStatusPending,
			CreatedAt: time.Now(),
		}
		outboxRepo.On("UpdateStatus", ctx, msg.ID, shared.OutboxStatusFailedToPublish).Return(nil)

		err := publisher.PublishEvent(ctx, msg)
		assert.Error(t, err)
		outboxRepo.AssertExpectations(t)
		producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BrokerFailureLeavesMessagePending", func(t *testing.T) {
		outboxRepo := new(MockOutboxRepository)
		producer := new(MockMessagePublisher)
		publisher := NewEventPublisher(logger, outboxRepo, producer)

		event := newTestEvent()
		msg := newPendingMessage(t, event)
		producer.On("Publish", ctx, event.AccountID.String(), mock.Anything).Return(errors.New("broker unreachable"))

		err := publisher.PublishEvent(ctx, msg)
		assert.Error(t, err)
		outboxRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func TestPoller_ProcessPendingMessages(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	cfg := &config.OutboxConfig{
		PollingInterval:  time.Second,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}

	t.Run("PublishesEachPendingMessage", func(t *testing.T) {
		outboxRepo := new(MockOutboxRepository)
		publisher := new(mockEventPublisher)
		poller := NewPoller(cfg, outboxRepo, publisher, logger)

		first := newPendingMessage(t, newTestEvent())
		second := newPendingMessage(t, newTestEvent())
		second.ID = 202
		outboxRepo.On("GetPending", ctx, cfg.BatchSize).Return([]*outbox.Message{first, second}, nil)
		publisher.On("PublishEvent", ctx, first).Return(nil)
		publisher.On("PublishEvent", ctx, second).Return(nil)

		err := poller.processPendingMessages(ctx)
		assert.NoError(t, err)
		publisher.AssertExpectations(t)
	})

	t.Run("FailureIncrementsAttempts", func(t *testing.T) {
		outboxRepo := new(MockOutboxRepository)
		publisher := new(mockEventPublisher)
		poller := NewPoller(cfg, outboxRepo, publisher, logger)

		msg := newPendingMessage(t, newTestEvent())
		msg.Attempts = 0
		outboxRepo.On("GetPending", ctx, cfg.BatchSize).Return([]*outbox.Message{msg}, nil)
		publisher.On("PublishEvent", ctx, msg).Return(errors.New("publish failed"))
		outboxRepo.On("IncrementAttempts", ctx, msg.ID).Return(nil)

		err := poller.processPendingMessages(ctx)
		assert.NoError(t, err)
		outboxRepo.AssertCalled(t, "IncrementAttempts", ctx, msg.ID)
		outboxRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MaxRetriesParksMessage", func(t *testing.T) {
		outboxRepo := new(MockOutboxRepository)
		publisher := new(mockEventPublisher)
		poller := NewPoller(cfg, outboxRepo, publisher, logger)

		msg := newPendingMessage(t, newTestEvent())
		msg.Attempts = cfg.MaxRetryAttempts - 1
		outboxRepo.On("GetPending", ctx, cfg.BatchSize).Return([]*outbox.Message{msg}, nil)
		publisher.On("PublishEvent", ctx, msg).Return(errors.New("publish failed"))
		outboxRepo.On("IncrementAttempts", ctx, msg.ID).Return(nil)
		outboxRepo.On("UpdateStatus", ctx, msg.ID, shared.OutboxStatusFailedToPublish).Return(nil)

		err := poller.processPendingMessages(ctx)
		assert.NoError(t, err)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("EmptyBatchIsQuiet", func(t *testing.T) {
		outboxRepo := new(MockOutboxRepository)
		publisher := new(mockEventPublisher)
		poller := NewPoller(cfg, outboxRepo, publisher, logger)

		outboxRepo.On("GetPending", ctx, cfg.BatchSize).Return([]*outbox.Message{}, nil)

		err := poller.processPendingMessages(ctx)
		assert.NoError(t, err)
		publisher.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
	})
}
