package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/workmesh/maestro/internal/engine"
	"github.com/workmesh/maestro/internal/planner"
	"github.com/workmesh/maestro/pkg/api"
)

type (
	// Chat publishes notifications to a Redis channel that the team's chat
	// bridge subscribes to
	Chat struct {
		client  redis.UniversalClient
		channel string
	}

	// ChatMessage is the envelope published to the channel
	ChatMessage struct {
		RunID   api.RunID `json:"run_id,omitempty"`
		Text    string    `json:"text"`
		SentAt  time.Time `json:"sent_at"`
		Channel string    `json:"channel"`
	}
)

// NewChat creates the chat connector over an injected Redis client. The
// default channel applies when a step does not name one
func NewChat(client redis.UniversalClient, channel string) *Chat {
	return &Chat{client: client, channel: channel}
}

func (c *Chat) Name() string {
	return "chat"
}

// Register contributes the send_chat_message handler
func (c *Chat) Register(r *engine.Registry) error {
	return r.Register(planner.ActionSendChat, c.send)
}

func (c *Chat) send(ctx context.Context, params api.Args) (api.Args, error) {
	text := params.GetString("message", "")
	if text == "" {
		return nil, badParam(
			planner.ActionSendChat, "message", "expected non-empty string",
		)
	}
	channel := params.GetString("channel", c.channel)

	runID, _ := api.RunIDFrom(ctx)
	msg := &ChatMessage{
		RunID:   runID,
		Text:    text,
		SentAt:  time.Now().UTC(),
		Channel: channel,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	if err := c.client.Publish(ctx, channel, data).Err(); err != nil {
		return nil, fmt.Errorf("failed to publish chat message: %w", err)
	}

	return api.Args{
		"channel": channel,
		"bytes":   len(data),
	}, nil
}
