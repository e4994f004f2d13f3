package sync

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agora-sh/agora/internal/types"
)

// ChatWriter is the write side of the chat API consumed by the sender.
type ChatWriter interface {
	CreateMessage(ctx context.Context, channel, body string) (types.Message, error)
	DeleteMessage(ctx context.Context, id int64) error
}

// Sender handles optimistic message sends and password-gated deletes.
// A send shows up immediately as a pending placeholder, then is replaced
// by the server-created message or discarded on failure.
type Sender struct {
	client ChatWriter
	store  *StreamStore
	author string
}

// NewSender creates a sender writing into the given stream store.
// author is the local display name shown on placeholders.
func NewSender(client ChatWriter, store *StreamStore, author string) *Sender {
	return &Sender{client: client, store: store, author: author}
}

// Send posts a message. The placeholder is added before the call and
// resolved or discarded when it completes. Send errors are returned to
// the caller: chat writes surface failures, unlike poll reads.
func (s *Sender) Send(ctx context.Context, channel, body string) (types.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return types.Message{}, ErrEmptyBody
	}
	pending := types.PendingMessage{
		Ref:       uuid.NewString(),
		ChannelID: channel,
		Author:    s.author,
		Body:      body,
		QueuedAt:  time.Now().UnixMilli(),
	}
	s.store.AddPending(pending)

	msg, err := s.client.CreateMessage(ctx, channel, body)
	if err != nil {
		s.store.FailPending(channel, pending.Ref)
		return types.Message{}, err
	}
	s.store.ResolvePending(channel, pending.Ref, msg)
	return msg, nil
}

// Delete removes a message server-side, then from local state. The
// identity's password gates the call; a mismatch comes back as an API
// error for inline display.
func (s *Sender) Delete(ctx context.Context, channel string, messageID int64) error {
	if err := s.client.DeleteMessage(ctx, messageID); err != nil {
		return err
	}
	s.store.Remove(channel, messageID)
	return nil
}
