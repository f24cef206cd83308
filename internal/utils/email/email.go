package email

import (
	"bytes"
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/library-service/internal/config"
)

// sendFunc delivers a message; tests swap it out to avoid a live SMTP server.
type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    config.SMTPConfig
	logger *logrus.Logger
	send   sendFunc
}

// NewSender creates a new email sender
func NewSender(cfg config.SMTPConfig, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendCatalogReport mails the catalog export as an XML attachment
func (s *Sender) SendCatalogReport(to string, catalog []byte, bookCount int, generatedAt time.Time) error {
	if s.cfg.Host == "" {
		return fmt.Errorf("SMTP_HOST is not configured")
	}

	day := generatedAt.UTC().Format("2006-01-02")
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Library catalog report %s", day)
	e.Text = []byte(fmt.Sprintf(
		"Hello,\n\nThe library catalog holds %d book(s) as of %s.\n"+
			"The full catalog is attached as XML.\n\nLibrary Service",
		bookCount, generatedAt.UTC().Format("2006-01-02 15:04:05 MST"),
	))
	if _, err := e.Attach(bytes.NewReader(catalog), "catalog-"+day+".xml", "application/xml"); err != nil {
		return fmt.Errorf("failed to attach catalog: %w", err)
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send catalog report to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
