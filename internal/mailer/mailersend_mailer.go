package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendVoteOTP(toEmail, toName, code string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Your voting OTP"
	text := fmt.Sprintf("Your one-time password is: %s\n\nEnter it on the voting page to verify your identity.", code)
	html := fmt.Sprintf(`
		<h2>Voting verification</h2>
		<p>Hi %s,</p>
		<p>Your one-time password is: <strong style="font-size: 24px;">%s</strong></p>
		<p>Enter it on the voting page to verify your identity.</p>
	`, toName, code)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) SendSignupDecision(toEmail, toName, kind string, approved bool) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	verdict := "approved"
	if !approved {
		verdict = "rejected"
	}
	subject := fmt.Sprintf("Your %s signup request was %s", kind, verdict)
	text := fmt.Sprintf("Hi %s,\n\nYour %s signup request has been %s by an election administrator.", toName, kind, verdict)
	html := fmt.Sprintf(`
		<h2>Signup decision</h2>
		<p>Hi %s,</p>
		<p>Your %s signup request has been <strong>%s</strong> by an election administrator.</p>
	`, toName, kind, verdict)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
