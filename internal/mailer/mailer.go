package mailer

// Mailer defines the interface for sending account emails.
type Mailer interface {
	SendWelcome(toEmail, toName string) error
}
