package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *Mailer) SendResetLink(to, subject, link string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.From)
	msg.SetHeader("Subject", subject)

	body := fmt.Sprintf(
		"Hello,\n\n"+
			"You requested a password reset for your FinFlow account.\n"+
			"Click the link below to reset your password:\n\n"+
			"%s\n\n"+
			"This link will expire in 1 hour.\n\n"+
			"If you didn't request this, please ignore this email.\n\n"+
			"Best regards,\nFinFlow Team\n",
		link,
	)

	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	return dialer.DialAndSend(msg)
}
