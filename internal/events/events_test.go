package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/odyssey-engine/pkg/command"
	"github.com/jwebster45206/odyssey-engine/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testChange(id uuid.UUID) session.Change {
	return session.Change{
		SessionID: id,
		Action:    command.ActMove,
		World:     "Avalonia",
		Location:  "Old Town",
		At:        time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestBroadcaster_StateChanged(t *testing.T) {
	client := setupTestRedis(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()
	id := uuid.New()

	sub := client.Subscribe(ctx, Channel(id))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	b := NewBroadcaster(client, logger)
	require.NoError(t, b.StateChanged(ctx, testChange(id)))

	select {
	case msg := <-sub.Channel():
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, EventTypeStateChanged, ev.Type)
		assert.Equal(t, id.String(), ev.GameID)
		assert.Equal(t, command.ActMove, ev.Data.Action)
		assert.Equal(t, "Old Town", ev.Data.Location)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestBroadcaster_ClosedClient(t *testing.T) {
	client := setupTestRedis(t)
	require.NoError(t, client.Close())

	b := NewBroadcaster(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, b.StateChanged(context.Background(), testChange(uuid.New())))
}

func TestLocal_KeepsLatest(t *testing.T) {
	l := NewLocal(1)
	ctx := context.Background()
	id := uuid.New()

	first := testChange(id)
	second := testChange(id)
	second.Location = "Market"

	require.NoError(t, l.StateChanged(ctx, first))
	require.NoError(t, l.StateChanged(ctx, second))

	got := <-l.C()
	assert.Equal(t, "Market", got.Location)
	assert.Empty(t, l.C())
}

type failing struct{ err error }

func (f failing) StateChanged(context.Context, session.Change) error { return f.err }

func TestMulti(t *testing.T) {
	l := NewLocal(4)
	boom := errors.New("boom")
	m := Multi{l, nil, failing{err: boom}}

	err := m.StateChanged(context.Background(), testChange(uuid.New()))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, l.C(), 1)
}
