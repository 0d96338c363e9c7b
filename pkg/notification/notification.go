// Package notification fans a Notification out over its channels.
//
// Define a Notification:
//
//	type Approved struct{ Req models.Request }
//	func (n Approved) Via() []string { return []string{notification.ChannelMail} }
//	func (n Approved) ToMail() notification.MailData {
//	    return notification.MailData{Subject: "Request Approved", Text: "..."}
//	}
//
// Send:
//
//	err := dispatcher.Send(ctx, "alice@gmail.com", Approved{Req: req})
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/supplydesk/pkg/http"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
	"github.com/shashiranjanraj/supplydesk/pkg/mail"
	"github.com/shashiranjanraj/supplydesk/pkg/metrics"
)

const (
	ChannelMail  = "mail"
	ChannelSlack = "slack"
)

// ErrDelivery matches every *DeliveryError.
var ErrDelivery = errors.New("notification delivery failed")

// DeliveryError reports one channel that could not deliver to Recipient.
type DeliveryError struct {
	Channel   string
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notification: %s to %s: %v", e.Channel, e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }

// ------------------- Channel data structs -------------------

// MailData carries the data needed to send an email notification.
type MailData struct {
	To       string // overrides the notifiable address if set
	FromName string
	Subject  string
	Text     string
}

// SlackData carries a Slack incoming-webhook payload.
type SlackData struct {
	Text        string
	Attachments []SlackAttachment
}

type SlackAttachment struct {
	Color  string `json:"color,omitempty"` // "good" | "warning" | "danger"
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

// ------------------- Notification interface -------------------

type Notification interface {
	// Via returns the channel names to deliver on.
	Via() []string
}

type Mailable interface {
	ToMail() MailData
}

type Slackable interface {
	ToSlack() SlackData
}

// ------------------- Dispatcher -------------------

// Dispatcher delivers notifications synchronously.
type Dispatcher struct {
	mail         mail.Transport
	slackWebhook string
}

// NewDispatcher sends mail through transport (the package-level mail
// transport when nil) and Slack messages to slackWebhook (Slack disabled
// when empty).
func NewDispatcher(transport mail.Transport, slackWebhook string) *Dispatcher {
	return &Dispatcher{mail: transport, slackWebhook: slackWebhook}
}

// SlackEnabled reports whether a webhook is configured.
func (d *Dispatcher) SlackEnabled() bool { return d.slackWebhook != "" }

// Send delivers n on every channel it asks for. Each failing channel
// contributes a *DeliveryError; they are joined into the returned error.
func (d *Dispatcher) Send(ctx context.Context, address string, n Notification) error {
	var errs []error
	for _, channel := range n.Via() {
		err := d.dispatch(ctx, address, channel, n)
		metrics.RecordNotification(channel, err)
		if err != nil {
			logger.WithCtx(ctx).Error("notification: channel failed",
				"channel", channel, "recipient", address, "error", err)
			errs = append(errs, &DeliveryError{Channel: channel, Recipient: address, Err: err})
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) dispatch(ctx context.Context, address, channel string, n Notification) error {
	switch channel {
	case ChannelMail:
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("%T does not implement Mailable", n)
		}
		return d.sendMail(ctx, address, m.ToMail())

	case ChannelSlack:
		s, ok := n.(Slackable)
		if !ok {
			return fmt.Errorf("%T does not implement Slackable", n)
		}
		return d.sendSlack(ctx, s.ToSlack())

	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
}

// ------------------- Mail channel -------------------

func (d *Dispatcher) sendMail(ctx context.Context, address string, m MailData) error {
	to := m.To
	if to == "" {
		to = address
	}

	msg := mail.To(to).Subject(m.Subject).FromName(m.FromName).Text(m.Text)
	if d.mail != nil {
		msg = msg.Via(d.mail)
	}
	return msg.Send(ctx)
}

// ------------------- Slack channel -------------------

type slackPayload struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

func (d *Dispatcher) sendSlack(ctx context.Context, s SlackData) error {
	if d.slackWebhook == "" {
		return fmt.Errorf("slack webhook URL not configured")
	}

	resp, err := http.Post(d.slackWebhook).
		Body(slackPayload{Text: s.Text, Attachments: s.Attachments}).
		Timeout(5*time.Second).
		Retry(2, 250*time.Millisecond).
		Send(ctx)
	if err != nil {
		return err
	}
	return resp.Throw()
}
