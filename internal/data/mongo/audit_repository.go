// Package mongo provides the MongoDB implementation of the audit trail
// repository. Archived journal events are immutable; the collection only
// grows.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/btspay/transfer-ledger/internal/domain/audit"
)

const (
	// AuditCollectionName is the name of the audit trail collection
	AuditCollectionName = "audit_events"
)

// AuditRepository implements the audit.Repository interface for MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) audit.Repository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Archive stores an event after validating its shape. Re-archiving an
// event ID that already exists returns ErrDuplicateEvent so redelivered
// Kafka messages stay idempotent.
func (r *AuditRepository) Archive(ctx context.Context, event *audit.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	collection := r.db.Collection(AuditCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"event_id": event.EventID})
	if err != nil {
		r.logger.Error("Failed to check for existing audit event",
			"event_id", event.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing audit event: %w", err)
	}
	if count > 0 {
		return audit.ErrDuplicateEvent{EventID: event.EventID}
	}

	if _, err := collection.InsertOne(ctx, event); err != nil {
		r.logger.Error("Failed to archive audit event",
			"event_id", event.EventID.String(),
			"transaction_id", event.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to archive audit event: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves all archived events for one transaction,
// oldest first, so the full status history reads top to bottom
func (r *AuditRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*audit.Event, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"transaction_id": transactionID}
	opts := options.Find().SetSort(bson.M{"occurred_at": 1})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get audit events",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get audit events: %w", err)
	}
	defer cursor.Close(ctx)

	events, err := r.decodeAll(ctx, cursor)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, audit.ErrEventNotFound{TransactionID: transactionID}
	}

	return events, nil
}

// GetByTimeRange retrieves paginated events within [from, to], newest first
func (r *AuditRepository) GetByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*audit.Event, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{
		"occurred_at": bson.M{
			"$gte": from,
			"$lte": to,
		},
	}
	opts := options.Find().
		SetSort(bson.M{"occurred_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get audit events by time range",
			"from", from,
			"to", to,
			"error", err)
		return nil, fmt.Errorf("failed to get audit events by time range: %w", err)
	}
	defer cursor.Close(ctx)

	return r.decodeAll(ctx, cursor)
}

// CountByTimeRange counts events within [from, to]
func (r *AuditRepository) CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{
		"occurred_at": bson.M{
			"$gte": from,
			"$lte": to,
		},
	}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count audit events", "error", err)
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}

	return count, nil
}

// decodeAll drains the cursor, validating every document so corrupt
// records fail loudly instead of flowing onward
func (r *AuditRepository) decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]*audit.Event, error) {
	var events []*audit.Event
	for cursor.Next(ctx) {
		var event audit.Event
		if err := cursor.Decode(&event); err != nil {
			r.logger.Error("Failed to decode audit event", "error", err)
			return nil, fmt.Errorf("failed to decode audit event: %w", err)
		}
		if err := event.Validate(); err != nil {
			r.logger.Error("Archived audit event failed validation", "error", err)
			return nil, err
		}
		events = append(events, &event)
	}

	if err := cursor.Err(); err != nil {
		r.logger.Error("Error iterating over audit events", "error", err)
		return nil, fmt.Errorf("error iterating over audit events: %w", err)
	}

	return events, nil
}
