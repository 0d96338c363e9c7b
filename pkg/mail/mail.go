// Package mail sends plain-text or HTML email through a pluggable Transport.
//
// Usage:
//
//	mail.To("alice@gmail.com").
//	    Subject("Request Submission").
//	    Text("Request details: ...").
//	    Send(ctx)
//
// The package-level transport is chosen by MAIL_DRIVER (smtp | mailgun | log)
// when Boot is called; tests swap it with SetTransport.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNoRecipients is returned when a message has no To address.
var ErrNoRecipients = errors.New("mail: message has no recipients")

// Envelope is the transport-neutral form of an outgoing email.
type Envelope struct {
	From     string
	FromName string
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	Body     string
	HTML     bool
}

// Transport delivers an Envelope.
type Transport interface {
	Name() string
	Send(ctx context.Context, e Envelope) error
}

var (
	mu        sync.RWMutex
	transport Transport = NewLogTransport(nil)
)

// SetTransport replaces the package-level transport.
func SetTransport(t Transport) {
	mu.Lock()
	transport = t
	mu.Unlock()
}

// Current returns the package-level transport.
func Current() Transport {
	mu.RLock()
	defer mu.RUnlock()
	return transport
}

// ------------------- Message -------------------

// Message is a fluent builder for an email.
type Message struct {
	env Envelope
	via Transport
}

// To sets the primary recipients.
func To(addresses ...string) *Message {
	return &Message{env: Envelope{To: addresses}}
}

func (m *Message) CC(addresses ...string) *Message {
	m.env.CC = append(m.env.CC, addresses...)
	return m
}

func (m *Message) BCC(addresses ...string) *Message {
	m.env.BCC = append(m.env.BCC, addresses...)
	return m
}

func (m *Message) Subject(s string) *Message {
	m.env.Subject = s
	return m
}

// FromName overrides the sender display name of the transport.
func (m *Message) FromName(name string) *Message {
	m.env.FromName = name
	return m
}

// Body sets an HTML body.
func (m *Message) Body(html string) *Message {
	m.env.Body = html
	m.env.HTML = true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.env.Body = text
	m.env.HTML = false
	return m
}

// Via sends this message through t instead of the package-level transport.
func (m *Message) Via(t Transport) *Message {
	m.via = t
	return m
}

// Envelope returns a copy of what Send would deliver.
func (m *Message) Envelope() Envelope { return m.env }

// Send delivers the message.
func (m *Message) Send(ctx context.Context) error {
	if len(m.env.To) == 0 {
		return ErrNoRecipients
	}
	t := m.via
	if t == nil {
		t = Current()
	}
	if err := t.Send(ctx, m.env); err != nil {
		return fmt.Errorf("mail: %s: %w", t.Name(), err)
	}
	return nil
}

// fromHeader renders `Name <addr>` or just addr.
func fromHeader(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", name, addr)
}

func recipients(e Envelope) []string {
	all := make([]string, 0, len(e.To)+len(e.CC)+len(e.BCC))
	all = append(all, e.To...)
	all = append(all, e.CC...)
	return append(all, e.BCC...)
}

// buildRaw renders the RFC 5322 message used by SMTP.
func buildRaw(from string, e Envelope) []byte {
	contentType := "text/plain"
	if e.HTML {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(e.To, ", ") + "\r\n")
	if len(e.CC) > 0 {
		b.WriteString("Cc: " + strings.Join(e.CC, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + e.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(e.Body)
	return []byte(b.String())
}
