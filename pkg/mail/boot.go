package mail

import (
	"fmt"

	"github.com/shashiranjanraj/supplydesk/config"
)

// FromConfig builds the transport named by MAIL_DRIVER.
func FromConfig() (Transport, error) {
	switch driver := config.MailDriver(); driver {
	case "smtp":
		return NewSMTPTransport(SMTPFromConfig()), nil
	case "mailgun":
		domain, key := config.MailgunDomain(), config.MailgunAPIKey()
		if domain == "" || key == "" {
			return nil, fmt.Errorf("mail: MAILGUN_DOMAIN and MAILGUN_API_KEY are required for the mailgun driver")
		}
		smtpCfg := SMTPFromConfig()
		return NewMailgunTransport(domain, key, config.Get("MAILGUN_API_BASE", ""), smtpCfg.From, smtpCfg.FromName), nil
	case "log":
		return NewLogTransport(nil), nil
	default:
		return nil, fmt.Errorf("mail: unsupported MAIL_DRIVER %q", driver)
	}
}

// Boot installs the configured transport as the package-level one.
func Boot() (Transport, error) {
	t, err := FromConfig()
	if err != nil {
		return nil, err
	}
	SetTransport(t)
	return t, nil
}
