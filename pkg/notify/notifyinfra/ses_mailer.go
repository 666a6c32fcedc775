package notifyinfra

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/workforce/pkg/notify"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESMailer implementa notify.Mailer sobre Amazon SES
type SESMailer struct {
	client *sesv2.Client
	from   string
}

// NewSESMailer crea un nuevo mailer sobre SES
func NewSESMailer(client *sesv2.Client, fromAddress, fromName string) notify.Mailer {
	return &SESMailer{
		client: client,
		from:   fmt.Sprintf("%s <%s>", fromName, fromAddress),
	}
}

// Send envía un correo de texto plano
func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	return nil
}
