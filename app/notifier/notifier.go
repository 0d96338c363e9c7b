// Package notifier formats requester-facing messages and hands them to the
// notification dispatcher. It runs after the store has committed; a
// delivery failure is returned to the caller but never undoes the write.
package notifier

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/supplydesk/app/models"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
	"github.com/shashiranjanraj/supplydesk/pkg/notification"
	"github.com/shashiranjanraj/supplydesk/pkg/workerpool"
)

// Role says who a message is sent on behalf of. It changes the sender
// display name only.
type Role string

const (
	RoleSystem Role = "System"
	RoleAdmin  Role = "Admin"
)

// SenderName is the From display name used for role.
func (r Role) SenderName() string {
	if r == RoleAdmin {
		return "SupplyDesk Admin"
	}
	return "SupplyDesk"
}

// Message is one ready-to-send notice.
type Message struct {
	Recipient string
	Role      Role
	Context   models.Request
	Subject   string
	Body      string
}

// Sender is satisfied by *notification.Dispatcher.
type Sender interface {
	Send(ctx context.Context, address string, n notification.Notification) error
	SlackEnabled() bool
}

// Background runs work after the caller has returned. *workerpool.Pool
// satisfies it.
type Background interface {
	Submit(ctx context.Context, name string, fn workerpool.Task) error
}

type Notifier struct {
	sender     Sender
	background Background
}

func New(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

// InBackground makes AnnounceSubmission return immediately and post from bg.
func (n *Notifier) InBackground(bg Background) *Notifier {
	n.background = bg
	return n
}

// Notify mails subject and body to recipient. Errors are
// *notification.DeliveryError values (errors.Is ErrDelivery).
func (n *Notifier) Notify(ctx context.Context, recipient string, role Role, req models.Request, subject, body string) error {
	return n.Send(ctx, Message{Recipient: recipient, Role: role, Context: req, Subject: subject, Body: body})
}

func (n *Notifier) Send(ctx context.Context, m Message) error {
	err := n.sender.Send(ctx, m.Recipient, mailNotice(m))
	log := logger.WithCtx(ctx)
	if err != nil {
		log.Warn("notice not delivered", "recipient", m.Recipient, "subject", m.Subject, "error", err)
		return err
	}
	log.Info("notice sent", "recipient", m.Recipient, "role", m.Role, "subject", m.Subject, "request_id", m.Context.ID)
	return nil
}

// AnnounceSubmission posts a new request to the admins' Slack channel when
// one is configured. Failures are logged only.
func (n *Notifier) AnnounceSubmission(ctx context.Context, req models.Request) {
	if !n.sender.SlackEnabled() {
		return
	}

	announce := func(ctx context.Context) error {
		return n.sender.Send(ctx, "admins", slackNotice{req: req})
	}
	if n.background != nil {
		err := n.background.Submit(ctx, "slack_announce", announce)
		if err == nil {
			return
		}
		logger.WithCtx(ctx).Warn("announcement queue unavailable, posting inline", "id", req.ID, "error", err)
	}
	if err := announce(ctx); err != nil {
		logger.WithCtx(ctx).Warn("submission not announced on slack", "id", req.ID, "error", err)
	}
}

// ─── builders ────────────────────────────────────────────────────────────────

// Submission confirms a new request to its requester.
func Submission(req models.Request, item string, quantity int) Message {
	return Message{
		Recipient: req.Email,
		Role:      RoleSystem,
		Context:   req,
		Subject:   "Request Submission",
		Body:      fmt.Sprintf("Request details:\nName: %s\nItem: %s\nQuantity: %d", req.Name, item, quantity),
	}
}

// StatusChange tells the requester their request is now req.Status.
func StatusChange(req models.Request) Message {
	return Message{
		Recipient: req.Email,
		Role:      RoleAdmin,
		Context:   req,
		Subject:   "Request " + string(req.Status),
		Body: fmt.Sprintf("Your request has been %s.\n\nRequest Details:\nDescription: %s",
			req.Status.Lower(), req.Description.Text()),
	}
}

// AdminMessage carries free text from an administrator. There is no real
// request behind it, so the context record is a placeholder.
func AdminMessage(email, text string) Message {
	return Message{
		Recipient: email,
		Role:      RoleAdmin,
		Context: models.Request{
			Name:        "User",
			Email:       email,
			Description: models.PlainDescription("Admin Message"),
		},
		Subject: "Message from Admin",
		Body:    text,
	}
}

// ─── notifications ───────────────────────────────────────────────────────────

type mailNotice Message

func (m mailNotice) Via() []string { return []string{notification.ChannelMail} }

func (m mailNotice) ToMail() notification.MailData {
	return notification.MailData{
		FromName: m.Role.SenderName(),
		Subject:  m.Subject,
		Text:     m.Body,
	}
}

type slackNotice struct {
	req models.Request
}

func (s slackNotice) Via() []string { return []string{notification.ChannelSlack} }

func (s slackNotice) ToSlack() notification.SlackData {
	return notification.SlackData{
		Text: fmt.Sprintf("New supply request #%d from %s", s.req.ID, s.req.Name),
		Attachments: []notification.SlackAttachment{{
			Color:  "warning",
			Title:  s.req.Email,
			Text:   s.req.Description.Text(),
			Footer: string(s.req.Status),
		}},
	}
}
