package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// Sender delivers transactional mail over SMTP.
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(host string, port int, username, password, from string) *Sender {
	dialer := gomail.NewDialer(host, port, username, password)
	return &Sender{
		dialer: dialer,
		from:   from,
	}
}

func (s *Sender) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	return s.dialer.DialAndSend(m)
}

func (s *Sender) SendVerificationOTP(to, code string) error {
	body, err := s.parseTemplate("verification_otp.html", map[string]string{
		"Code": code,
	})
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}
	return s.sendEmail(to, "Email Verification Code", body)
}

func (s *Sender) SendPasswordResetOTP(to, code string) error {
	body, err := s.parseTemplate("password_reset_otp.html", map[string]string{
		"Code": code,
	})
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}
	return s.sendEmail(to, "Password Reset Code", body)
}

func (s *Sender) parseTemplate(templateFileName string, data interface{}) (string, error) {
	t, err := template.ParseFS(templateFS, "templates/"+templateFileName)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", templateFileName, err)
	}
	buf := new(bytes.Buffer)
	if err = t.Execute(buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateFileName, err)
	}
	return buf.String(), nil
}
