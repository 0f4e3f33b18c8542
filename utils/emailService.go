package utils

import (
	"context"
	"fmt"
	"html"

	"fstop/models"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Mailer sends transactional email through SendGrid.
type Mailer struct {
	client mailSender
	from   *mail.Email
	log    *zap.Logger
}

// NewMailer returns nil when no API key is configured, which disables email.
func NewMailer(apiKey, from string, log *zap.Logger) *Mailer {
	if apiKey == "" {
		return nil
	}
	return &Mailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("F-Stop to Success", from),
		log:    log,
	}
}

// SendEmail sends one HTML message to a single recipient.
func (m *Mailer) SendEmail(ctx context.Context, toName, toAddr, subject, htmlBody string) error {
	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail(toName, toAddr), "", htmlBody)
	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	m.log.Debug("email sent", zap.String("to", toAddr), zap.String("subject", subject))
	return nil
}

// EnrollmentConfirmed tells a newly enrolled identity that the course is unlocked.
func (m *Mailer) EnrollmentConfirmed(ctx context.Context, rec *models.EnrollmentRecord, courseID string) error {
	if rec.Email == "" {
		return nil
	}
	name := "there"
	if rec.DisplayName != nil && *rec.DisplayName != "" {
		name = *rec.DisplayName
	}
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your enrollment is confirmed and your course is now unlocked.</p>
		<div class="info-box">
			<strong>Next Steps:</strong> Open your dashboard to start the first module.
		</div>
		<p style="color:#999;font-size:12px">Course reference: %s</p>
	`, html.EscapeString(name), html.EscapeString(courseID))

	return m.SendEmail(ctx, name, rec.Email, "You're enrolled!", getEmailTemplate("Welcome to the course", body))
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #111111; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #111111; line-height: 1.6; }
			.info-box { background: #F3F0E8; padding: 15px; border-radius: 4px; border-left: 4px solid #C9A227; margin: 20px 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>F-STOP TO SUCCESS</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; F-Stop to Success. All rights reserved.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}
