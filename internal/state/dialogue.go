package state

import (
	"context"
	"encoding/json"
	"fmt"

	"photostudio-bot/internal/models"

	"go.uber.org/zap"
)

const (
	pendingKeyPrefix    = "pending_booking_"
	rescheduleKeyPrefix = "resched_"
)

func pendingKey(userID int64) string    { return fmt.Sprintf("%s%d", pendingKeyPrefix, userID) }
func rescheduleKey(userID int64) string { return fmt.Sprintf("%s%d", rescheduleKeyPrefix, userID) }

// DialogueStore хранит черновики записи и отметки переноса в KV в виде JSON.
// Испорченное значение считается отсутствующим.
type DialogueStore struct {
	kv     KV
	logger *zap.Logger
}

func NewDialogueStore(kv KV, logger *zap.Logger) *DialogueStore {
	return &DialogueStore{kv: kv, logger: logger}
}

func (s *DialogueStore) LoadPending(ctx context.Context, userID int64) (*models.PendingReservation, error) {
	var p models.PendingReservation
	ok, err := s.load(ctx, pendingKey(userID), &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (s *DialogueStore) SavePending(ctx context.Context, userID int64, p models.PendingReservation) error {
	return s.save(ctx, pendingKey(userID), p)
}

func (s *DialogueStore) ClearPending(ctx context.Context, userID int64) error {
	return s.kv.Delete(ctx, pendingKey(userID))
}

func (s *DialogueStore) LoadReschedule(ctx context.Context, userID int64) (*models.RescheduleIntent, error) {
	var r models.RescheduleIntent
	ok, err := s.load(ctx, rescheduleKey(userID), &r)
	if err != nil || !ok {
		return nil, err
	}
	if r.BookingID == 0 {
		return nil, nil
	}
	return &r, nil
}

func (s *DialogueStore) SaveReschedule(ctx context.Context, userID int64, r models.RescheduleIntent) error {
	return s.save(ctx, rescheduleKey(userID), r)
}

func (s *DialogueStore) ClearReschedule(ctx context.Context, userID int64) error {
	return s.kv.Delete(ctx, rescheduleKey(userID))
}

func (s *DialogueStore) load(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok || raw == "" {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("Испорченное состояние диалога, игнорируем",
			zap.Error(err),
			zap.String("key", key),
		)
		return false, nil
	}
	return true, nil
}

func (s *DialogueStore) save(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, string(raw))
}
