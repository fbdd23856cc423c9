package bot

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yuya-takeyama/lark-dept-bot/internal/lark"
)

// Dispatcher sends replies. Each reply gets exactly one attempt; failures
// are logged and reported as false, never retried.
type Dispatcher struct {
	sender MessageSender
	logger zerolog.Logger
}

// NewDispatcher creates a new reply dispatcher
func NewDispatcher(sender MessageSender, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		logger: logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Send posts text to the chat and reports whether it was accepted
func (d *Dispatcher) Send(ctx context.Context, token, chatID, text string) bool {
	if err := d.sender.SendText(ctx, token, chatID, text); err != nil {
		d.logger.Error().
			Err(err).
			Str("chat_id", chatID).
			Bool("permission_error", lark.IsPermissionError(err)).
			Msg("Failed to send reply")
		return false
	}

	d.logger.Info().Str("chat_id", chatID).Int("length", len(text)).Msg("Reply sent")
	return true
}
