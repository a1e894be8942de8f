package broadcast

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/pkg/errors"
)

const (
	EventPlayerJoined    = "PLAYER_JOINED"
	EventPlayerAnswered  = "PLAYER_ANSWERED"
	EventGameStarted     = "GAME_STARTED"
	EventQuestionStarted = "QUESTION_STARTED"
	EventGameFinished    = "GAME_FINISHED"
)

// Publisher delivers an event to every subscriber of a channel. Delivery is
// best effort: callers log a returned error and carry on.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

type PublisherFunc func(ctx context.Context, channel, event string, payload any) error

func (f PublisherFunc) Publish(ctx context.Context, channel, event string, payload any) error {
	return f(ctx, channel, event, payload)
}

// Envelope is the wire format shared by websocket clients and the Redis relay.
type Envelope struct {
	Type    string          `json:"type"`
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

func NewEnvelope(channel, event string, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s payload", event)
	}
	return &Envelope{Type: event, Channel: channel, Payload: raw, SentAt: time.Now().UTC()}, nil
}

func (e *Envelope) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal envelope")
	}
	return data, nil
}

func DecodeEnvelope(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal envelope")
	}
	return &e, nil
}

// Fanout publishes to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, channel, event string, payload any) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, channel, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
