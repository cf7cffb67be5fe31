package mailer

import (
	"github.com/UniPortal-2026/submission-service/internal/utils"
)

// consoleMailer logs messages instead of delivering them; the development
// and test backend.
type consoleMailer struct {
	logger utils.Logger
}

var _ Mailer = (*consoleMailer)(nil)

func NewConsoleMailer(logger utils.Logger) Mailer {
	return &consoleMailer{logger: logger}
}

func (m *consoleMailer) SendMessages(messages ...*EmailMessage) {
	for _, msg := range messages {
		recipients := make([]string, 0, len(msg.To))
		for _, to := range msg.To {
			recipients = append(recipients, to.Address)
		}
		m.logger.Info("email (console backend)",
			"to", recipients,
			"subject", msg.Subject,
			"body", msg.Body,
		)
	}
}
