package utils

import (
	"fmt"
	"ielts/config"
	"log"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Template names stored on failed attempts so the sweep can re-render.
const (
	TemplatePasswordSetup      = "password-setup"
	TemplateEnrollmentRejected = "enrollment-rejected" // not wired to the reject path yet
)

// EmailResult reports the outcome of a dispatch. Retryable tells the
// caller whether recording the failure for the sweep makes sense.
type EmailResult struct {
	Success   bool
	MessageID string
	Error     error
	Retryable bool
}

// MailTransport delivers a rendered message. Tests swap in a stub.
type MailTransport interface {
	Send(to, subject, htmlBody string) error
}

// Transport overrides the config-selected transport when non-nil.
var Transport MailTransport

func activeTransport() MailTransport {
	if Transport != nil {
		return Transport
	}
	if config.AppConfig != nil && config.AppConfig.SendGridKey != "" {
		return sendGridTransport{}
	}
	return smtpTransport{}
}

// SendTemplateEmail renders the named template and delivers it with a
// bounded in-process retry. Failures after the last attempt come back
// as a retryable result; the caller decides whether to persist them.
func SendTemplateEmail(to, template string, data map[string]string) EmailResult {
	subject, html, err := RenderTemplate(template, data)
	if err != nil {
		return EmailResult{Success: false, Error: err, Retryable: false}
	}

	attempts := 1
	if config.AppConfig != nil && config.AppConfig.EmailAttempts > 0 {
		attempts = config.AppConfig.EmailAttempts
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(time.Duration(i) * 500 * time.Millisecond)
		}
		if lastErr = activeTransport().Send(to, subject, html); lastErr == nil {
			return EmailResult{Success: true, MessageID: uuid.NewString()}
		}
		log.Printf("Error sending %s email to %s (attempt %d/%d): %v", template, to, i+1, attempts, lastErr)
	}

	return EmailResult{Success: false, Error: lastErr, Retryable: true}
}

// RenderTemplate returns the subject and HTML body for a template name.
func RenderTemplate(template string, data map[string]string) (string, string, error) {
	switch template {
	case TemplatePasswordSetup:
		subject := "Set up your IELTS Academy account"
		body := fmt.Sprintf(`
			<p>Dear %s,</p>
			<p>Great news! Your enrollment in <strong>%s</strong> has been approved.</p>
			<p>Click the button below to set your password and activate your account. The link is valid for 24 hours.</p>
			<a href="%s" class="btn">Set Your Password</a>
			<div class="info-box">
				If the button does not work, copy this link into your browser:<br>%s
			</div>
		`, data["name"], data["course"], data["link"], data["link"])
		return subject, wrapEmailBody("Welcome to IELTS Academy!", body), nil

	case TemplateEnrollmentRejected:
		subject := "Update on your IELTS Academy application"
		body := fmt.Sprintf(`
			<p>Dear %s,</p>
			<p>Unfortunately we could not confirm your enrollment in <strong>%s</strong> at this time.</p>
			<p>If you believe this is a mistake, please reply to this email with your payment reference.</p>
		`, data["name"], data["course"])
		return subject, wrapEmailBody("Application Update", body), nil
	}

	return "", "", fmt.Errorf("unknown email template: %s", template)
}

// wrapEmailBody wraps content in the shared HTML shell
func wrapEmailBody(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B2A4A; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B2A4A; line-height: 1.6; }
			.content h2 { color: #1B2A4A; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #E3342F; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #E3342F; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>IELTS ACADEMY</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 IELTS Academy. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// smtpTransport sends through Gmail SMTP with the configured app password.
type smtpTransport struct{}

func (smtpTransport) Send(to, subject, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: IELTS Academy <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join([]string{to}, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	return smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{to}, []byte(msg))
}

// sendGridTransport sends through the SendGrid API when a key is configured.
type sendGridTransport struct{}

func (sendGridTransport) Send(to, subject, htmlBody string) error {
	from := mail.NewEmail("IELTS Academy", config.AppConfig.EmailSender)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid responded with status %d", resp.StatusCode)
	}
	return nil
}
