package mailer

import (
	"net/mail"
)

// EmailMessage is one outbound mail. Plain text only; the portal sends
// short transactional notices.
type EmailMessage struct {
	To      []mail.Address
	Subject string
	Body    string
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.Body != "" }

// Mailer is any service that can send emails. Implementations deliver
// asynchronously and never propagate failures to the caller: a broken mail
// provider must not fail the request that triggered the message.
type Mailer interface {
	SendMessages(messages ...*EmailMessage)
}
