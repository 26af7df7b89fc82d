package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscriber(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var received []*Event
	unsubscribe := bus.Subscribe(AccountsChanged, func(e *Event) {
		received = append(received, e)
	})
	defer unsubscribe()

	bus.Publish(AccountsChanged, "store", map[string]interface{}{"file": "investments.json"})

	require.Len(t, received, 1)
	assert.Equal(t, AccountsChanged, received[0].Type)
	assert.Equal(t, "store", received[0].Module)
	assert.Equal(t, "investments.json", received[0].Data["file"])
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestPublishSkipsOtherTypes(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var count int
	defer bus.Subscribe(ItemsChanged, func(*Event) { count++ })()

	bus.Publish(AccountsChanged, "store", nil)
	assert.Zero(t, count)

	bus.Publish(ItemsChanged, "store", nil)
	assert.Equal(t, 1, count)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var count int
	unsubscribe := bus.Subscribe(AccountsChanged, func(*Event) { count++ })

	bus.Publish(AccountsChanged, "store", nil)
	unsubscribe()
	bus.Publish(AccountsChanged, "store", nil)
	// Safe to call twice.
	unsubscribe()

	assert.Equal(t, 1, count)
}

func TestMultipleSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var a, b int
	defer bus.Subscribe(BackupCompleted, func(*Event) { a++ })()
	defer bus.Subscribe(BackupCompleted, func(*Event) { b++ })()

	bus.Publish(BackupCompleted, "reliability", nil)

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}
