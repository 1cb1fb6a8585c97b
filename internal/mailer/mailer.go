// Package mailer dispatches welcome notifications. The SMTP transport does
// real network I/O; the console transport backs simulate mode and always
// succeeds without touching the network.
package mailer

import (
	"context"
	"log/slog"
)

// Invite is one welcome notification: a text+HTML message with a calendar
// attachment.
type Invite struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
	Calendar string
}

// Transport sends invites over one concrete channel.
type Transport interface {
	// Channel names the delivery channel for audit records ("email", "console").
	Channel() string
	Send(ctx context.Context, invite Invite) error
}

// Console is the simulate-mode transport: it records the send in the log and
// reports success.
type Console struct {
	logger *slog.Logger
}

func NewConsole(logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Console{logger: logger}
}

func (c *Console) Channel() string { return "console" }

func (c *Console) Send(ctx context.Context, invite Invite) error {
	c.logger.InfoContext(ctx, "simulated notification",
		"to", invite.To,
		"subject", invite.Subject,
	)
	return nil
}
