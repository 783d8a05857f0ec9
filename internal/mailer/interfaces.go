package mailer

// Service delivers best-effort notifications to applicants and voters.
// Implementations return failures; callers log them and carry on. Mail
// never fails the enclosing operation.
type Service interface {
	SendVoteOTP(toEmail, toName, code string) error
	SendSignupDecision(toEmail, toName, kind string, approved bool) error
}
