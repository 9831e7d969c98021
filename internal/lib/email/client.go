// Package email renders the embedded HTML templates and sends them through Resend.
package email

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Naenyn/FeedbackPortlet/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

const defaultFrom = "Feedback Portlet <feedback@resend.dev>"

// emailSender is the part of the Resend API the client uses.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Client struct {
	emails emailSender
	from   string
	logger *zerolog.Logger
}

func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	from := cfg.Integration.EmailFrom
	if from == "" {
		from = defaultFrom
	}

	return &Client{
		emails: resend.NewClient(cfg.Integration.ResendAPIKey).Emails,
		from:   from,
		logger: logger,
	}
}

// Render executes the named template with data.
func Render(templateName Template, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, string(templateName)+".html", data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", templateName)
	}
	return body.String(), nil
}

// SendEmail renders templateName with data and sends it to every recipient
// in a single message.
func (c *Client) SendEmail(ctx context.Context, to []string, subject string, templateName Template, data any) error {
	if len(to) == 0 {
		return errors.New("no email recipients")
	}

	html, err := Render(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      to,
		Subject: subject,
		Html:    html,
	}

	sent, err := c.emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug().
		Str("template", string(templateName)).
		Str("email_id", sent.Id).
		Int("recipients", len(to)).
		Msg("email sent")

	return nil
}
