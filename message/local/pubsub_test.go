package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan *Delivery) *Delivery {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
		return nil
	}
}

func TestPubSub_FanOut(t *testing.T) {
	ps := NewPubSub(4)
	ctx := context.Background()
	a, cancelA, err := ps.Subscribe(ctx, "bots.damage_actor")
	require.NoError(t, err)
	defer cancelA()
	b, cancelB, err := ps.Subscribe(ctx, "bots.damage_actor", "bots.play_sound")
	require.NoError(t, err)
	defer cancelB()

	require.NoError(t, ps.Publish(ctx, "bots.damage_actor", "hit"))
	assert.Equal(t, "hit", receive(t, a).Payload)
	assert.Equal(t, "hit", receive(t, b).Payload)

	require.NoError(t, ps.Publish(ctx, "bots.play_sound", "growl"))
	d := receive(t, b)
	assert.Equal(t, "bots.play_sound", d.Channel)
	assert.Len(t, a, 0)
}

func TestPubSub_DropsWhenFull(t *testing.T) {
	ps := NewPubSub(1)
	ctx := context.Background()
	_, cancel, err := ps.Subscribe(ctx, "c")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "c", "1"))
	require.NoError(t, ps.Publish(ctx, "c", "2"))
	assert.Equal(t, int64(1), ps.Dropped())
}

func TestPubSub_CancelClosesAndUnsubscribes(t *testing.T) {
	ps := NewPubSub(1)
	ch, cancel, err := ps.Subscribe(context.Background(), "c", "d")
	require.NoError(t, err)
	assert.Equal(t, 1, ps.Subscribers("c"))

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, ps.Subscribers("c"))
	assert.Zero(t, ps.Subscribers("d"))
	assert.NoError(t, ps.Publish(context.Background(), "c", "late"))
}
