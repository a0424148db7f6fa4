package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/finledger/ledger-service/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPaymentReminder notifies a user about an upcoming scheduled payment on
// one of their liabilities.
func (s *Sender) SendPaymentReminder(to, username, liabilityName string, paymentDate time.Time, amount float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Upcoming Liability Payment Reminder"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"This is a reminder that a payment of %.2f RUB on \"%s\" is due on %s.\n"+
			"Please ensure sufficient funds are available in your account.\n"+
			"\nBest regards,\nFinLedger",
		username, amount, liabilityName, paymentDate.Format("2006-01-02"),
	)
	e.Text = []byte(body)

	return s.send(e, to)
}

// SendPaymentRecorded confirms that a payment has been recorded against a
// liability and reports the remaining balance.
func (s *Sender) SendPaymentRecorded(to, username, liabilityName string, amount, remaining float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Payment Recorded"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"A payment of %.2f RUB has been recorded against \"%s\".\n"+
			"Recorded at: %s\n"+
			"Remaining principal: %.2f RUB\n"+
			"\nBest regards,\nFinLedger",
		username, amount, liabilityName, time.Now().Format("2006-01-02 15:04:05"), remaining,
	)
	e.Text = []byte(body)

	return s.send(e, to)
}

func (s *Sender) send(e *email.Email, to string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
