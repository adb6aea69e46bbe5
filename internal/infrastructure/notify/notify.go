// Package notify delivers price alert SMS messages.
//
// Three adapters implement ports.Notifier: Twilio's REST API, AWS SNS direct
// SMS and a log-only notifier for local development. NOTIFIER selects one.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/airiscab/ridefare/internal/core/ports"
)

var _ ports.Notifier = (*LogNotifier)(nil)

// LogNotifier writes the message to the log instead of sending it.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notifier").Logger()}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Send(_ context.Context, to, body string) error {
	n.log.Info().Str("to", to).Str("body", body).Msg("sms (not sent)")
	return nil
}
