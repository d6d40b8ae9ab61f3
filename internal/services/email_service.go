package services

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"

	"github.com/BradenHooton/leadintake/internal/models"
	"github.com/BradenHooton/leadintake/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"gopkg.in/gomail.v2"
)

// EmailSender delivers a single rendered message
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// AWSSESEmailSender sends emails using AWS SES
type AWSSESEmailSender struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewAWSSESEmailSender creates a new AWS SES email sender
func NewAWSSESEmailSender(ctx context.Context, region, fromAddress string, logger *slog.Logger) (*AWSSESEmailSender, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailSender{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

func (s *AWSSESEmailSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody)},
				Text: &types.Content{Data: aws.String(textBody)},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}

	s.logger.Info("email sent via SES",
		slog.String("email", logger.SanitizedEmail(to)),
		slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

// SMTPEmailSender sends through a plain SMTP relay
type SMTPEmailSender struct {
	dialer      *gomail.Dialer
	fromAddress string
}

func NewSMTPEmailSender(host string, port int, user, password, fromAddress string) *SMTPEmailSender {
	return &SMTPEmailSender{
		dialer:      gomail.NewDialer(host, port, user, password),
		fromAddress: fromAddress,
	}
}

// Send ignores ctx: gomail has no cancellation, so the dialer's own timeouts apply.
func (s *SMTPEmailSender) Send(_ context.Context, to, subject, htmlBody, textBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.fromAddress)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}
	return nil
}

// LogEmailSender only logs. Used in development and when no provider is set.
type LogEmailSender struct {
	logger *slog.Logger
}

func NewLogEmailSender(logger *slog.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger}
}

func (s *LogEmailSender) Send(_ context.Context, to, subject, _, _ string) error {
	s.logger.Info("email suppressed (log provider)",
		slog.String("email", logger.SanitizedEmail(to)),
		slog.String("subject", subject))
	return nil
}

const confirmationSubject = "We received your submission"

var confirmationHTML = htmltemplate.Must(htmltemplate.New("confirmation_html").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h1>Thank you, {{.FirstName}} {{.LastName}}</h1>
        <p>We received your information and an attorney will review your case.</p>
        <p>Someone from our team will reach out to you at {{.Email}}.</p>
        <p style="color: #666; font-size: 12px;">This is an automated message. Please do not reply to this email.</p>
    </div>
</body>
</html>
`))

var confirmationText = texttemplate.Must(texttemplate.New("confirmation_text").Parse(`Thank you, {{.FirstName}} {{.LastName}}

We received your information and an attorney will review your case.
Someone from our team will reach out to you at {{.Email}}.

This is an automated message. Please do not reply to this email.
`))

// ConfirmationNotifier emails the submitter after their lead is stored.
type ConfirmationNotifier struct {
	sender EmailSender
}

func NewConfirmationNotifier(sender EmailSender) *ConfirmationNotifier {
	return &ConfirmationNotifier{sender: sender}
}

func (n *ConfirmationNotifier) Name() string { return "confirmation_email" }

func (n *ConfirmationNotifier) NotifyLeadSubmitted(ctx context.Context, lead *models.Lead) error {
	htmlBody, textBody, err := renderConfirmation(lead)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, lead.Email, confirmationSubject, htmlBody, textBody)
}

func renderConfirmation(lead *models.Lead) (string, string, error) {
	var html, text bytes.Buffer
	if err := confirmationHTML.Execute(&html, lead); err != nil {
		return "", "", fmt.Errorf("render confirmation html: %w", err)
	}
	if err := confirmationText.Execute(&text, lead); err != nil {
		return "", "", fmt.Errorf("render confirmation text: %w", err)
	}
	return html.String(), text.String(), nil
}
