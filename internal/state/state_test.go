package state

import (
	"context"
	"testing"

	"photostudio-bot/internal/config"
	"photostudio-bot/internal/models"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisKV(client, "photostudio:", zap.NewNop()), mr
}

func TestDialogueStoreRoundTrip(t *testing.T) {
	kvs := map[string]KV{"memory": NewMemoryKV()}
	kvs["redis"], _ = newRedisKV(t)

	for name, kv := range kvs {
		t.Run(name, func(t *testing.T) {
			s := NewDialogueStore(kv, zap.NewNop())
			ctx := context.Background()

			p, err := s.LoadPending(ctx, 42)
			require.NoError(t, err)
			assert.Nil(t, p)

			lat, lon := 53.2, 50.1
			want := models.PendingReservation{Date: "2025-03-08", Hour: 14, Slug: "family", LocLat: &lat, LocLon: &lon}
			require.NoError(t, s.SavePending(ctx, 42, want))

			p, err = s.LoadPending(ctx, 42)
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, want, *p)

			other, err := s.LoadPending(ctx, 7)
			require.NoError(t, err)
			assert.Nil(t, other)

			require.NoError(t, s.SaveReschedule(ctx, 42, models.RescheduleIntent{BookingID: 9, OldStart: "2025-03-08T14:00:00Z"}))
			r, err := s.LoadReschedule(ctx, 42)
			require.NoError(t, err)
			require.NotNil(t, r)
			assert.Equal(t, int64(9), r.BookingID)

			require.NoError(t, s.ClearPending(ctx, 42))
			require.NoError(t, s.ClearReschedule(ctx, 42))
			p, _ = s.LoadPending(ctx, 42)
			r, _ = s.LoadReschedule(ctx, 42)
			assert.Nil(t, p)
			assert.Nil(t, r)
		})
	}
}

func TestDialogueStoreWireFormat(t *testing.T) {
	kv, mr := newRedisKV(t)
	s := NewDialogueStore(kv, zap.NewNop())

	require.NoError(t, s.SavePending(context.Background(), 42, models.PendingReservation{Date: "2025-03-08", Hour: 14, AwaitingLocation: true}))

	raw, err := mr.Get("photostudio:pending_booking_42")
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-03-08","hour":14,"await_loc":true}`, raw)
	assert.Zero(t, mr.TTL("photostudio:pending_booking_42"))
}

func TestDialogueStoreCorruptValue(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "pending_booking_42", "{not json"))
	require.NoError(t, kv.Set(ctx, "resched_42", `{"bid":0}`))

	s := NewDialogueStore(kv, zap.NewNop())
	p, err := s.LoadPending(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, p)

	r, err := s.LoadReschedule(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestCategoryStoreSeedsDefaults(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	s := NewCategoryStore(kv, nil, zap.NewNop())

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 10)
	assert.Equal(t, models.Category{Label: "💕 Love Story", Slug: "love_story"}, cats[1])

	raw, ok, _ := kv.Get(ctx, "portfolio_categories")
	assert.True(t, ok)
	assert.Contains(t, raw, `"slug":"wedding_church"`)

	require.NoError(t, s.Set(ctx, []models.Category{{Label: "Студия", Slug: "studio"}}))
	cats, err = s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Category{{Label: "Студия", Slug: "studio"}}, cats)
}

func TestCategoryStoreConfigDefaultsAndCorruption(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "portfolio_categories", "[]"))

	s := NewCategoryStore(kv, []config.CategoryItem{{Text: "Пейзаж", Slug: "landscape"}}, zap.NewNop())
	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Category{{Label: "Пейзаж", Slug: "landscape"}}, cats)
}

func TestAdminDirectory(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "admin_known_ids", "30, junk,10"))

	d := NewAdminDirectory(kv, []int64{20}, []string{"@Studio_Owner"}, zap.NewNop())
	assert.True(t, d.IsAdmin("", 20))
	assert.True(t, d.IsAdmin("studio_owner", 99))
	assert.False(t, d.IsAdmin("", 99))
	assert.False(t, d.IsAdmin("someone", 99))

	d.Remember(ctx, 99)
	d.Remember(ctx, 99)
	assert.Equal(t, []int64{10, 20, 30, 99}, d.All(ctx))

	raw, _, _ := kv.Get(ctx, "admin_known_ids")
	assert.Equal(t, "10,30,99", raw)
}

func TestNewKVBackends(t *testing.T) {
	kv, err := NewKV(config.State{Backend: "memory"}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryKV{}, kv)

	_, err = NewKV(config.State{Backend: "etcd"}, nil, zap.NewNop())
	assert.Error(t, err)
}
