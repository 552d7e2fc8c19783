// Package notification fans one notification out over several channels.
//
// Define a Notification:
//
//	type OrderPlaced struct{ Order models.Order }
//	func (n *OrderPlaced) Via() []string { return []string{notification.Mail, notification.Slack} }
//	func (n *OrderPlaced) ToMail() *mail.Message { ... }
//	func (n *OrderPlaced) ToSlack() notification.SlackMessage { ... }
//
// Send:
//
//	err := notifier.Send(ctx, "ops@vastra.in", &OrderPlaced{Order: order})
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/vastra/pkg/http"
	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/mail"
)

// Channel names.
const (
	Mail      = "mail"
	Slack     = "slack"
	Broadcast = "broadcast"
)

// ErrChannelDisabled is returned for a channel that has no configuration.
// Send skips such channels silently.
var ErrChannelDisabled = errors.New("notification: channel not configured")

// ------------------- Channel payloads -------------------

// SlackMessage is an incoming-webhook payload.
type SlackMessage struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SlackAttachment is a single Slack message attachment block.
type SlackAttachment struct {
	Color  string `json:"color,omitempty"` // "good" | "warning" | "danger"
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

// ------------------- Notification interfaces -------------------

// Notification is the interface every notification must satisfy.
type Notification interface {
	Via() []string
}

// Mailable supports the mail channel. The recipient passed to Send is
// added when the message has none.
type Mailable interface {
	ToMail() *mail.Message
}

// Slackable supports the Slack channel.
type Slackable interface {
	ToSlack() SlackMessage
}

// Broadcastable supports pushing to live dashboards.
type Broadcastable interface {
	ToBroadcast() (event string, data any)
}

// Broadcaster is satisfied by the websocket hub.
type Broadcaster interface {
	Publish(event string, data any) error
}

// ------------------- Notifier -------------------

// Notifier holds the channel backends. Any of them may be nil/empty, in
// which case that channel is skipped.
type Notifier struct {
	Mailer   *mail.Mailer
	SlackURL string
	HTTP     *http.Client
	Hub      Broadcaster
}

// Send dispatches n through every channel it names and joins the failures.
func (nt *Notifier) Send(ctx context.Context, to string, n Notification) error {
	var errs []error
	for _, channel := range n.Via() {
		err := nt.dispatch(ctx, to, channel, n)
		if errors.Is(err, ErrChannelDisabled) {
			logger.WithCtx(ctx).Debug("notification: channel skipped", "channel", channel)
			continue
		}
		if err != nil {
			logger.WithCtx(ctx).Error("notification: channel failed", "channel", channel, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", channel, err))
		}
	}
	return errors.Join(errs...)
}

func (nt *Notifier) dispatch(ctx context.Context, to, channel string, n Notification) error {
	switch channel {
	case Mail:
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		if nt.Mailer == nil || to == "" {
			return ErrChannelDisabled
		}
		msg := m.ToMail()
		if len(msg.Recipients()) == 0 {
			msg.To(to)
		}
		return nt.Mailer.Send(ctx, msg)

	case Slack:
		s, ok := n.(Slackable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Slackable", n)
		}
		if nt.SlackURL == "" {
			return ErrChannelDisabled
		}
		return nt.sendSlack(ctx, s.ToSlack())

	case Broadcast:
		b, ok := n.(Broadcastable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Broadcastable", n)
		}
		if nt.Hub == nil {
			return ErrChannelDisabled
		}
		event, data := b.ToBroadcast()
		return nt.Hub.Publish(event, data)

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

func (nt *Notifier) sendSlack(ctx context.Context, msg SlackMessage) error {
	client := nt.HTTP
	if client == nil {
		client = http.Default
	}
	resp, err := client.Post(nt.SlackURL).Body(msg).Send(ctx)
	if err != nil {
		return err
	}
	return resp.Throw()
}
