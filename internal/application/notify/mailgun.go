package notify

import (
	"context"

	"github.com/mailgun/mailgun-go/v3"
)

// MailgunClient sends plain-text email through Mailgun.
type MailgunClient struct {
	mg   *mailgun.MailgunImpl
	from string
}

// NewMailgunClient builds a client for domain. apiBase overrides the API root
// (e.g. the EU region or a test server); empty keeps the library default.
func NewMailgunClient(domain, apiKey, mailFrom, apiBase string) *MailgunClient {
	mg := mailgun.NewMailgun(domain, apiKey)
	if apiBase != "" {
		mg.SetAPIBase(apiBase)
	}
	if mailFrom == "" {
		mailFrom = defaultMailFrom
	}
	return &MailgunClient{mg: mg, from: brandName + " <" + mailFrom + ">"}
}

func (c *MailgunClient) Send(ctx context.Context, to, subject, body string) error {
	msg := c.mg.NewMessage(c.from, subject, body, to)
	msg.SetHtml(EmailLayout(subject, body))
	_, _, err := c.mg.Send(ctx, msg)
	return err
}
