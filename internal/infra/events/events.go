package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Publisher delivers a domain event under a routing pattern such as "order.created".
type Publisher interface {
	Publish(ctx context.Context, pattern string, data any) error
}

// Envelope is the wire shape shared by every transport.
type Envelope struct {
	Pattern    string    `json:"pattern"`
	Data       any       `json:"data"`
	ID         string    `json:"id,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewEnvelope(pattern string, data any) Envelope {
	return Envelope{Pattern: pattern, Data: data, ID: uuid.NewString(), OccurredAt: time.Now().UTC()}
}

// FanOut publishes to every non-nil publisher and joins their errors.
type FanOut []Publisher

var _ Publisher = FanOut(nil)

func NewFanOut(pubs ...Publisher) FanOut {
	out := make(FanOut, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (f FanOut) Publish(ctx context.Context, pattern string, data any) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, pattern, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
