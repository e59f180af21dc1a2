package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoTransport is returned when no delivery strategy is configured.
var ErrNoTransport = errors.New("no mail transport configured")

// Message is a single outgoing email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Chain tries its senders in order until one succeeds.
type Chain struct {
	senders []Sender
	logger  *slog.Logger
}

// NewChain builds a Chain over the given senders.
func NewChain(logger *slog.Logger, senders ...Sender) *Chain {
	return &Chain{senders: senders, logger: logger}
}

func (c *Chain) Name() string {
	return "chain"
}

// Send delivers msg through the first sender that accepts it.
func (c *Chain) Send(ctx context.Context, msg Message) error {
	if len(c.senders) == 0 {
		return ErrNoTransport
	}
	if msg.To == "" {
		return fmt.Errorf("mail recipient is required")
	}

	var errs []error
	for _, s := range c.senders {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		err := s.Send(ctx, msg)
		if err == nil {
			return nil
		}
		c.logger.Warn("mail transport failed", slog.String("transport", s.Name()), slog.String("error", err.Error()))
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	return errors.Join(errs...)
}
