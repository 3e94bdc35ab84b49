package live

import (
	"testing"
	"time"

	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	events, cancel := hub.Subscribe("p1")
	other, cancelOther := hub.Subscribe("p2")
	defer cancelOther()

	hub.Publish(models.EngagementEvent{PostID: "p1", UserID: "u1", Action: models.ActionLike})

	select {
	case evt := <-events:
		assert.Equal(t, "u1", evt.UserID)
		assert.Equal(t, models.ActionLike, evt.Action)
	case <-time.After(time.Second):
		t.Fatal("событие не доставлено")
	}

	select {
	case evt := <-other:
		t.Fatalf("чужое событие: %+v", evt)
	default:
	}

	assert.Equal(t, 1, hub.Subscribers("p1"))
	cancel()
	cancel()
	assert.Equal(t, 0, hub.Subscribers("p1"))

	_, ok := <-events
	assert.False(t, ok, "канал закрыт после отписки")
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	events, cancel := hub.Subscribe("p1")
	defer cancel()

	for i := 0; i < bufferSize+10; i++ {
		hub.Publish(models.EngagementEvent{PostID: "p1"})
	}
	assert.Len(t, events, bufferSize)
}

func TestHubStop(t *testing.T) {
	hub := NewHub()
	events, cancel := hub.Subscribe("p1")
	hub.Stop()
	cancel()

	_, ok := <-events
	require.False(t, ok)

	late, _ := hub.Subscribe("p1")
	_, ok = <-late
	assert.False(t, ok, "после остановки подписка сразу закрыта")
}
