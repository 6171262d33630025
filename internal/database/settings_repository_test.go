package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSettingsRepositoryUpsert(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewSettingsRepository(db, zap.NewNop())
	ctx := context.Background()

	_, ok, err := repo.Get(ctx, "pending_booking_42")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "pending_booking_42", `{"date":"2025-03-08","hour":14}`))
	require.NoError(t, repo.Set(ctx, "pending_booking_42", `{"date":"2025-03-09","hour":11}`))

	v, ok, err := repo.Get(ctx, "pending_booking_42")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"date":"2025-03-09","hour":11}`, v)

	require.NoError(t, repo.Delete(ctx, "pending_booking_42"))
	require.NoError(t, repo.Delete(ctx, "pending_booking_42"))
	_, ok, err = repo.Get(ctx, "pending_booking_42")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingsRepositoryGetError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingsRepository(db, zap.NewNop())
	boom := errors.New("timeout")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM settings WHERE key = $1`)).
		WithArgs("portfolio_categories").
		WillReturnError(boom)

	_, _, err := repo.Get(context.Background(), "portfolio_categories")
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositorySetError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingsRepository(db, zap.NewNop())
	boom := errors.New("read-only transaction")

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (key) DO UPDATE SET value = excluded.value`)).
		WithArgs("admin_ids", sqlmock.AnyArg()).
		WillReturnError(boom)

	err := repo.Set(context.Background(), "admin_ids", "[101,202]")
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
