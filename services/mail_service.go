package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// MailService sends transactional notification mail through the configured
// SMTP relay.
type MailService struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

// NewMailService reads SMTP configuration from the environment.
func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")

	from := os.Getenv("FROM_EMAIL")
	if from == "" {
		from = user
	}

	port := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if portNum, err := strconv.Atoi(portStr); err == nil && portNum > 0 {
			port = portNum
		}
	}

	if host == "" || user == "" || pass == "" {
		log.Println("SMTP configuration is incomplete; notification mail disabled")
	}

	return &MailService{host: host, port: port, user: user, password: pass, from: from}
}

// Send delivers a plain-text mail.
func (s *MailService) Send(to, subject, body string) error {
	if s.host == "" || s.user == "" || s.password == "" || s.from == "" {
		return fmt.Errorf("SMTP configuration is incomplete: check SMTP_HOST, SMTP_USER, SMTP_PASS, and FROM_EMAIL")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.user, s.password)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send notification email: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendContactNotification forwards an accepted contact-form submission to
// the office inbox.
func (s *MailService) SendContactNotification(name, email, phone, subject, message string) error {
	to := os.Getenv("CONTACT_INBOX")
	if to == "" {
		to = s.from
	}

	body := fmt.Sprintf("Nová zpráva z kontaktního formuláře\n\nJméno: %s\nE-mail: %s\nTelefon: %s\n\n%s",
		name, email, phone, message)

	return s.Send(to, "Kontaktní formulář: "+subject, body)
}
