package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/shashiranjanraj/supplydesk/config"
)

// SMTP holds connection credentials.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// SMTPFromConfig reads MAIL_HOST, MAIL_PORT, MAIL_USERNAME, MAIL_PASSWORD,
// MAIL_FROM and MAIL_FROM_NAME.
func SMTPFromConfig() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", "smtp.mailtrap.io"),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "supplies@ceat.com"),
		FromName: config.Get("MAIL_FROM_NAME", "SupplyDesk"),
	}
}

type SMTPTransport struct {
	cfg SMTP
}

func NewSMTPTransport(cfg SMTP) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Name() string { return "smtp" }

// Send uses implicit TLS on port 465 and STARTTLS (via net/smtp) otherwise.
// net/smtp has no context support; ctx is only checked before dialing.
func (t *SMTPTransport) Send(ctx context.Context, e Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := t.cfg
	if cfg.Username == "" {
		return fmt.Errorf("MAIL_USERNAME not configured")
	}

	name := cfg.FromName
	if e.FromName != "" {
		name = e.FromName
	}
	raw := buildRaw(fromHeader(name, cfg.From), e)

	addr := cfg.Host + ":" + cfg.Port
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	if cfg.Port == "465" {
		return sendTLS(addr, auth, cfg.From, recipients(e), raw, cfg.Host)
	}
	return smtp.SendMail(addr, auth, cfg.From, recipients(e), raw)
}

func sendTLS(addr string, auth smtp.Auth, from string, to []string, raw []byte, host string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
