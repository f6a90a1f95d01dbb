// Package mailer delivers password reset links.
package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/MrSnakeDoc/serene/internal/logger"
)

const resetSubject = "Reset your Serene password"

// Mailer sends account emails
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

func resetBody(link string) string {
	return fmt.Sprintf("Someone asked to reset the password of your Serene account.\n\n"+
		"Open this link to choose a new one:\n%s\n\n"+
		"If it wasn't you, ignore this email.", link)
}

// LogMailer writes the link to the log. Used when no sender is configured.
type LogMailer struct {
	log logger.Logger
}

func NewLogMailer(log logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.log.Info("password reset requested",
		logger.String("to", to),
		logger.String("link", link))
	return nil
}

// sesAPI is the part of the SES client we use
type sesAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends plain text mail through Amazon SES
type SESMailer struct {
	client sesAPI
	sender string
}

// NewSESMailer loads the default AWS credential chain for region
func NewSESMailer(ctx context.Context, region, sender string) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &SESMailer{client: ses.NewFromConfig(cfg), sender: sender}, nil
}

func (m *SESMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(resetSubject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(resetBody(link))},
			},
		},
		Source: aws.String(m.sender),
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}
