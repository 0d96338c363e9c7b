package mail

import (
	"context"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunTransport sends through the Mailgun HTTP API.
type MailgunTransport struct {
	mg       *mailgun.MailgunImpl
	from     string
	fromName string
}

// NewMailgunTransport builds a transport for domain. apiBase may be empty to
// use Mailgun's default US endpoint.
func NewMailgunTransport(domain, apiKey, apiBase, from, fromName string) *MailgunTransport {
	mg := mailgun.NewMailgun(domain, apiKey)
	if apiBase != "" {
		mg.SetAPIBase(apiBase)
	}
	return &MailgunTransport{mg: mg, from: from, fromName: fromName}
}

func (t *MailgunTransport) Name() string { return "mailgun" }

func (t *MailgunTransport) Send(ctx context.Context, e Envelope) error {
	name := t.fromName
	if e.FromName != "" {
		name = e.FromName
	}

	var msg *mailgun.Message
	if e.HTML {
		msg = t.mg.NewMessage(fromHeader(name, t.from), e.Subject, "", e.To...)
		msg.SetHtml(e.Body)
	} else {
		msg = t.mg.NewMessage(fromHeader(name, t.from), e.Subject, e.Body, e.To...)
	}
	for _, cc := range e.CC {
		msg.AddCC(cc)
	}
	for _, bcc := range e.BCC {
		msg.AddBCC(bcc)
	}

	_, _, err := t.mg.Send(ctx, msg)
	return err
}
