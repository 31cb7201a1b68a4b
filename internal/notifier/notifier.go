// Package notifier delivers human-readable alerts. Delivery is always
// best-effort: the engine logs failures and moves on.
package notifier

// Notifier sends a text message to the configured channel.
type Notifier interface {
	Send(text string) error
}

// Noop discards every message. Used when Telegram is not configured.
type Noop struct{}

func (Noop) Send(string) error { return nil }
