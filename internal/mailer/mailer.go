package mailer

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Sender delivers account-flow emails. Sends are fire-and-forget: the
// boolean reports whether the provider accepted the message, and callers
// decide how much they care.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) bool
}

// SESMailer sends through Amazon SES v2.
type SESMailer struct {
	client   *sesv2.Client
	from     string
	fromName string
}

// New builds an SES-backed mailer, or a log-only mailer when no from
// address is configured.
func New(ctx context.Context, region, from, fromName string) Sender {
	if from == "" {
		log.Println("mailer disabled: no from address configured")
		return noopMailer{}
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		log.Printf("mailer disabled: aws config: %v", err)
		return noopMailer{}
	}

	log.Printf("mailer enabled from=%s region=%s", from, region)
	return &SESMailer{client: sesv2.NewFromConfig(cfg), from: from, fromName: fromName}
}

// Send delivers one email.
func (m *SESMailer) Send(ctx context.Context, to, subject, htmlBody string) bool {
	from := m.from
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", m.fromName, m.from)
	}

	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("mailer send failed to=%s: %v", to, err)
		return false
	}
	return true
}

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, to, subject, htmlBody string) bool {
	log.Printf("mailer noop send to=%s subject=%q", to, subject)
	return true
}
