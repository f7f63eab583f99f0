package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"

	"itemvault/internal/config"
)

// Mailer sends transactional mail. A no-op implementation is used
// whenever SMTP is not configured, so callers never branch on config.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

func NewMailer(cfg config.SMTPConfig) Mailer {
	if !cfg.Enabled || cfg.Host == "" {
		return NoopMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

type NoopMailer struct{}

func (NoopMailer) Send(to, subject, htmlBody string) error {
	slog.Info("Email sending disabled, dropping message", "to", to, "subject", subject)
	return nil
}

type SMTPMailer struct {
	cfg config.SMTPConfig
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if err := smtp.SendMail(addr, auth, m.cfg.FromEmail, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

var resetPasswordTemplate = template.Must(template.New("reset").Parse(`
<p>Hello {{.Name}},</p>
<p>We received a request to reset the password for your account ({{.Email}}).</p>
<p><a href="{{.Link}}">Click here to reset your password</a></p>
<p>The link expires in {{.TTL}}. If you did not request this, ignore this message.</p>
`))

var newAccountTemplate = template.Must(template.New("welcome").Parse(`
<p>Hello {{.Name}},</p>
<p>An account was created for you: {{.Email}}</p>
<p>You can log in at <a href="{{.Link}}">{{.Link}}</a> with the password you were given.</p>
`))

type emailData struct {
	Name  string
	Email string
	Link  string
	TTL   string
}

// RenderResetPasswordEmail builds the HTML body for a password recovery mail.
func RenderResetPasswordEmail(name, email, frontendHost, token, ttl string) (string, error) {
	link := fmt.Sprintf("%s/reset-password?token=%s", frontendHost, token)
	return renderEmail(resetPasswordTemplate, emailData{Name: name, Email: email, Link: link, TTL: ttl})
}

// RenderNewAccountEmail builds the HTML body for a new account mail.
func RenderNewAccountEmail(name, email, frontendHost string) (string, error) {
	return renderEmail(newAccountTemplate, emailData{Name: name, Email: email, Link: frontendHost})
}

func renderEmail(tmpl *template.Template, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return buf.String(), nil
}
