// Package queue manages the pending-operation queue: mutations recorded
// while offline, replayed against the remote store when connectivity returns.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rsoares/grimorio/internal/client/storage"
	"github.com/rsoares/grimorio/internal/models"
)

// Service is the append-only pending-operation log.
type Service struct {
	store  storage.OperationStore
	logger *slog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewService creates a queue service over the given operation store.
func NewService(store storage.OperationStore, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Enqueue records a mutation for later replay and returns its id. The id
// combines the timestamp with a random component so that two operations
// enqueued in the same millisecond never collide.
func (s *Service) Enqueue(ctx context.Context, opType models.OperationType, payload any, userID string) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal operation payload: %w", err)
	}

	ts := s.now().UnixMilli()
	id := fmt.Sprintf("%d-%s", ts, uuid.New().String()[:8])

	op := &models.PendingOperation{
		ID:        id,
		Type:      opType,
		UserID:    userID,
		Timestamp: ts,
		Data:      data,
	}

	if err := s.store.SaveOperation(ctx, op); err != nil {
		return "", fmt.Errorf("failed to save operation: %w", err)
	}

	s.logger.Debug("operation enqueued", "id", id, "type", opType, "user_id", userID)

	return id, nil
}

// ListForUser returns the user's queued operations, timestamp ascending.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*models.PendingOperation, error) {
	ops, err := s.store.ListOperations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	return ops, nil
}

// Rewrite replaces a queued operation's payload in place, keeping its id,
// type and position in the replay order.
func (s *Service) Rewrite(ctx context.Context, op *models.PendingOperation, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal operation payload: %w", err)
	}

	updated := *op
	updated.Data = data

	if err := s.store.SaveOperation(ctx, &updated); err != nil {
		return fmt.Errorf("failed to rewrite operation: %w", err)
	}

	s.logger.Debug("operation rewritten", "id", op.ID, "type", op.Type)

	return nil
}

// Remove deletes an operation from the queue. Called only after its replay
// was confirmed by the remote store. Idempotent.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.store.DeleteOperation(ctx, id); err != nil {
		return fmt.Errorf("failed to remove operation: %w", err)
	}
	return nil
}

// PendingCount returns the number of operations still waiting for replay.
func (s *Service) PendingCount(ctx context.Context, userID string) (int, error) {
	count, err := s.store.CountOperations(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count operations: %w", err)
	}
	return count, nil
}
