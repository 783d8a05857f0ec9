package mailer

import (
	"github.com/openballot/evoting/pkg/logger"
)

// DevMailer logs instead of sending. Default in development so the voting
// flow works without an SMTP server.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendVoteOTP(toEmail, toName, code string) error {
	logger.Info("[DEV MAIL] Voting OTP",
		"to", toEmail,
		"name", toName,
		"otp", code,
	)
	return nil
}

func (d *DevMailer) SendSignupDecision(toEmail, toName, kind string, approved bool) error {
	logger.Info("[DEV MAIL] Signup decision",
		"to", toEmail,
		"name", toName,
		"kind", kind,
		"approved", approved,
	)
	return nil
}
