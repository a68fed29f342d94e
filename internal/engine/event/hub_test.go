package event_test

import (
	"testing"
	"time"

	"github.com/kode4food/caravan/topic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmesh/maestro/internal/engine/event"
	"github.com/workmesh/maestro/pkg/api"
)

func TestHubFansOutToConsumers(t *testing.T) {
	hub := event.NewHub()
	defer hub.Close()

	first := hub.NewConsumer()
	defer first.Close()
	second := hub.NewConsumer()
	defer second.Close()

	hub.Publish(api.EventTypeRunStarted, "run-1", "plan-1", nil)

	for _, consumer := range []topic.Consumer[*api.Event]{first, second} {
		select {
		case ev := <-consumer.Receive():
			require.NotNil(t, ev)
			assert.Equal(t, api.EventTypeRunStarted, ev.Type)
			assert.Equal(t, api.RunID("run-1"), ev.RunID)
			assert.Equal(t, api.PlanID("plan-1"), ev.PlanID)
			assert.False(t, ev.Timestamp.IsZero())
		case <-time.After(time.Second):
			t.Fatal("consumer did not receive event")
		}
	}
}

func TestHubCloseIsIdempotent(t *testing.T) {
	hub := event.NewHub()
	hub.Close()
	hub.Close()
}
