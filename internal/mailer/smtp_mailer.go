package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// SMTPMailerService implements the Mailer interface using net/smtp.
type SMTPMailerService struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	senderName string
	logger     *zap.Logger
}

// NewSMTPMailerService creates a new SMTPMailerService.
func NewSMTPMailerService(host string, port int, username, password, fromEmail, senderName string, logger *zap.Logger) *SMTPMailerService {
	return &SMTPMailerService{
		host:       host,
		port:       port,
		username:   username,
		password:   password,
		from:       fromEmail,
		senderName: senderName,
		logger:     logger.Named("SMTPMailerService"),
	}
}

// SendWelcome sends the post-registration welcome email over SMTP.
func (s *SMTPMailerService) SendWelcome(toEmailAddr, toName string) error {
	s.logger.Info("Sending welcome email via SMTP",
		zap.String("toEmail", toEmailAddr),
		zap.String("smtpHost", s.host))

	subject := "Welcome!"
	htmlBody, textBody := welcomeBodies(toName)

	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	headers := make(map[string]string)
	if s.senderName != "" {
		headers["From"] = fmt.Sprintf("%s <%s>", s.senderName, s.from)
	} else {
		headers["From"] = s.from
	}
	headers["To"] = toEmailAddr
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"

	boundary := "welcome-boundary-12345"
	headers["Content-Type"] = fmt.Sprintf("multipart/alternative; boundary=%s", boundary)

	var msgBuilder strings.Builder
	for k, v := range headers {
		msgBuilder.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msgBuilder.WriteString("\r\n")

	msgBuilder.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msgBuilder.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msgBuilder.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	msgBuilder.WriteString(textBody)
	msgBuilder.WriteString("\r\n\r\n")

	msgBuilder.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msgBuilder.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msgBuilder.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	msgBuilder.WriteString(htmlBody)
	msgBuilder.WriteString("\r\n\r\n")

	msgBuilder.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.from, []string{toEmailAddr}, []byte(msgBuilder.String())); err != nil {
		s.logger.Error("Failed to send welcome email via SMTP",
			zap.Error(err),
			zap.String("toEmail", toEmailAddr))
		return fmt.Errorf("smtp.SendMail failed: %w", err)
	}

	s.logger.Info("Welcome email sent via SMTP", zap.String("toEmail", toEmailAddr))
	return nil
}

func welcomeBodies(toName string) (html, text string) {
	html = fmt.Sprintf(`<p>Hello %s,</p>
                        <p>Your account has been created and is ready to use.</p>
                        <p>If you did not register, please contact the administrator.</p>`, toName)
	text = fmt.Sprintf(`Hello %s,
                      Your account has been created and is ready to use.
                      If you did not register, please contact the administrator.`, toName)
	return html, text
}
