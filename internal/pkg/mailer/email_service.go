package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendShareNotice(toEmail, noteTitle, ownerName string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	configured  bool
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		configured:  host != "",
	}
}

// SendShareNotice tells a recipient a note was shared with them. Delivery is
// best-effort; an unconfigured SMTP setup is a no-op, not an error.
func (s *emailService) SendShareNotice(toEmail, noteTitle, ownerName string) error {
	if !s.configured || toEmail == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("%s shared a note with you", ownerName))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>A note was shared with you</h2>
			<p><strong>%s</strong> gave you access to the note:</p>
			<h3>%s</h3>
			<p>Open the app to read it and follow live edits.</p>
		</div>
	`, ownerName, noteTitle)

	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}
