// Package email sends the transactional templates through SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/yash-miyani/natours/internal/api/metrics"
	"github.com/yash-miyani/natours/internal/core/domain"
)

// Config captures the SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer renders and delivers the welcome and password-reset templates.
type SMTPMailer struct {
	cfg    Config
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<h1>Welcome to the Natours family, {{.FirstName}}!</h1>
<p>We're glad to have you on board. Visit <a href="{{.URL}}">your account page</a>
to upload a photo and explore our tours.</p>
`))

var passwordResetTmpl = template.Must(template.New("reset").Parse(`
<h1>Hi {{.FirstName}},</h1>
<p>Forgot your password? Submit a PATCH request with your new password to
<a href="{{.URL}}">{{.URL}}</a>. The link is valid for only 10 minutes.</p>
<p>If you didn't forget your password, please ignore this email.</p>
`))

func (m *SMTPMailer) SendWelcome(_ context.Context, user *domain.User, url string) error {
	if err := m.send(user, "Welcome to the Natours Family!", welcomeTmpl, url); err != nil {
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues("welcome").Inc()
	return nil
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, user *domain.User, resetURL string) error {
	if err := m.send(user, "Your password reset token (valid for only 10 minutes)", passwordResetTmpl, resetURL); err != nil {
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues("password_reset").Inc()
	return nil
}

func (m *SMTPMailer) send(user *domain.User, subject string, tmpl *template.Template, url string) error {
	var body bytes.Buffer
	data := struct {
		FirstName string
		URL       string
	}{FirstName: firstName(user.Name), URL: url}
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("email render: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", user.Email)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-ID", fmt.Sprintf("<%s@natours>", uuid.NewString()))
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	return nil
}

func firstName(name string) string {
	for i, r := range name {
		if r == ' ' {
			return name[:i]
		}
	}
	return name
}
