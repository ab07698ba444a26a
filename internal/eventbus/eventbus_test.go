package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_DeliversMatchingEvents(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	got := make(chan *Envelope, 4)
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{EventMapSaved}}, func(ctx context.Context, ev *Envelope) {
		got <- ev
	})
	require.NoError(t, err)

	saved, err := NewEnvelope(EventMapSaved, MapSaved{Name: "tower", Bricks: 3})
	require.NoError(t, err)
	deleted, err := NewEnvelope(EventMapDeleted, MapDeleted{Name: "tower"})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), deleted))
	require.NoError(t, bus.Publish(context.Background(), saved))

	select {
	case ev := <-got:
		assert.Equal(t, EventMapSaved, ev.EventType)
		assert.Equal(t, DefaultSource, ev.Source)
		assert.NotEmpty(t, ev.ID)

		var payload MapSaved
		require.NoError(t, ev.Decode(&payload))
		assert.Equal(t, "tower", payload.Name)
		assert.Equal(t, 3, payload.Bricks)
	case <-time.After(2 * time.Second):
		t.Fatal("событие не доставлено")
	}

	select {
	case ev := <-got:
		t.Fatalf("лишнее событие: %s", ev.EventType)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()

	got := make(chan struct{}, 1)
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		got <- struct{}{}
	})
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, _ := NewEnvelope(EventMapDeleted, MapDeleted{Name: "x"})
	require.NoError(t, bus.Publish(context.Background(), ev))

	select {
	case <-got:
		t.Fatal("после отписки события не приходят")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBus_Close(t *testing.T) {
	bus := NewMemoryBus(0)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close(), "повторное закрытие безопасно")

	ev, _ := NewEnvelope(EventMapDeleted, MapDeleted{Name: "x"})
	assert.ErrorIs(t, bus.Publish(context.Background(), ev), ErrClosed)
}

func TestMetricsExporter_Collect(t *testing.T) {
	bus := NewMemoryBus(8)
	defer bus.Close()

	reg := prometheus.NewRegistry()
	me, err := NewMetricsExporter(bus, reg)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ev, _ := NewEnvelope(EventMapValidated, MapValidated{Bricks: i})
		require.NoError(t, bus.Publish(context.Background(), ev))
	}

	prev := me.Collect(Stats{})
	assert.Equal(t, uint64(3), prev.Published)
	assert.Equal(t, 3.0, testutil.ToFloat64(me.published))

	me.Collect(prev)
	assert.Equal(t, 3.0, testutil.ToFloat64(me.published), "повторный сбор не удваивает счётчик")

	_, err = NewMetricsExporter(bus, reg)
	assert.Error(t, err, "повторная регистрация в том же реестре")
}
