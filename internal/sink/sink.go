package sink

import (
	"context"
	"errors"

	"github.com/global-trade-alert/ms-teams-push/internal/card"
)

// ErrDelivery wraps every failed webhook post.
var ErrDelivery = errors.New("deliver message")

// Delivery is the accepted response from a sink.
type Delivery struct {
	StatusCode int
	Body       string
}

// Sink is the minimal interface all sinks must implement.
type Sink interface {
	Name() string
	Send(ctx context.Context, msg card.Message) (*Delivery, error)
}
