package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService delivers training-assignment emails via Amazon SES. It is
// the Notifier used by the assignment lifecycle.
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. With no from address
// configured the service runs disabled and skips all sends, which keeps
// local development working without AWS credentials.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{
			appBaseURL: appBaseURL,
			enabled:    false,
			debug:      debug,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// TrainingLink builds the magic link embedded in the assignment email.
// The token is the entire authorization for unauthenticated completion.
func (s *EmailService) TrainingLink(token string) string {
	return fmt.Sprintf("%s/training/take?token=%s", s.appBaseURL, token)
}

// SendAssignmentEmail sends the training-assignment email with the
// magic link for one assignment
func (s *EmailService) SendAssignmentEmail(ctx context.Context, toEmail, moduleTitle, token, townshipName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): assignment %q to %s", moduleTitle, toEmail)
		return nil
	}

	trainingURL := s.TrainingLink(token)
	if s.debug {
		log.Printf("[DEBUG] Training link generated: %s", trainingURL)
	}

	subject := fmt.Sprintf("%s - Cyber Awareness Training Assignment", townshipName)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a5ae2; color: white; padding: 30px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9fafb; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 15px 30px; background-color: #000; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; font-weight: bold; }
		.footer { text-align: center; margin-top: 30px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Cyber Awareness Training</h1>
		</div>
		<div class="content">
			<h2>Hello!</h2>
			<p>You have been assigned the following training module:</p>
			<p><strong>%s</strong></p>
			<p>This training is required for %s. Please complete it at your earliest convenience.</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Start Training</a>
			</p>
			<p><small>Or copy and paste this link into your browser:</small></p>
			<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
			<p style="margin-top: 30px;"><strong>What to expect:</strong></p>
			<ul>
				<li>Watch the training video</li>
				<li>Complete a short quiz</li>
				<li>Your results will be recorded automatically</li>
			</ul>
		</div>
		<div class="footer">
			<p>This is an automated message from %s Cyber Awareness Training.</p>
			<p>If you believe you received this email in error, please contact your administrator.</p>
		</div>
	</div>
</body>
</html>
`, moduleTitle, townshipName, trainingURL, trainingURL, townshipName)

	textBody := fmt.Sprintf(`Hello!

You have been assigned the following training module:

%s

This training is required for %s. Please complete it at your earliest convenience.

Start the training here:
%s

What to expect:
- Watch the training video
- Complete a short quiz
- Your results will be recorded automatically

---
This is an automated message from %s Cyber Awareness Training.
If you believe you received this email in error, please contact your administrator.
`, moduleTitle, townshipName, trainingURL, townshipName)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
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
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
