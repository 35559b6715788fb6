package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string
	d.Subscribe(EventChatUpdated, func(_ context.Context, e Event) error {
		got = append(got, e.View)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		t.Fatal("wrong type delivered")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventChatUpdated, "user-support", "", nil)))
	assert.Equal(t, []string{"user-support"}, got)
}

func TestPublishRunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	calls := 0
	d.Subscribe(EventChatUpdated, func(context.Context, Event) error {
		calls++
		return errors.New("slow consumer")
	})
	d.Subscribe(EventChatUpdated, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), New(EventChatUpdated, "v", "", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow consumer")
	assert.Equal(t, 2, calls)
}

func TestUnsubscribe(t *testing.T) {
	d := NewInMemoryDispatcher()
	calls := 0
	first := d.Subscribe(EventChatUpdated, func(context.Context, Event) error {
		calls++
		return nil
	})
	d.Subscribe(EventChatUpdated, func(context.Context, Event) error {
		calls += 10
		return nil
	})

	first()
	first()
	require.NoError(t, d.Publish(context.Background(), New(EventChatUpdated, "v", "", nil)))
	assert.Equal(t, 10, calls)
}

func TestNewStampsEvent(t *testing.T) {
	e := New(EventTicketRead, "admin-support", "t1", nil)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, "t1", e.TicketID)
}
