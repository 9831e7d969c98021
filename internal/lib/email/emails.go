package email

import (
	"context"
	"fmt"

	"github.com/Naenyn/FeedbackPortlet/internal/model"
)

// SendDigestEmail mails the rendered digest to recipients.
func (c *Client) SendDigestEmail(ctx context.Context, to []string, digest *model.Digest) error {
	subject := fmt.Sprintf("Feedback digest %s to %s",
		digest.From.UTC().Format("2006-01-02"),
		digest.To.UTC().Format("2006-01-02"),
	)

	return c.SendEmail(ctx, to, subject, TemplateDigest, digest)
}
