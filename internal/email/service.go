package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/blisstech/pharmacy-api/internal/model"
)

// Alerter sends operational notifications to pharmacy staff.
type Alerter interface {
	SendLowStockAlert(ctx context.Context, event model.StockLowEvent) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AdminTo  string
}

type service struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewService(cfg Config) Alerter {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		to:     cfg.AdminTo,
	}
}

func (s *service) SendLowStockAlert(_ context.Context, event model.StockLowEvent) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	m.SetHeader("Subject", fmt.Sprintf("Low stock: %s", event.MedicationName))
	m.SetBody("text/plain", fmt.Sprintf(
		"%s is down to %d units (reorder threshold %d).\nMedication ID: %s\n",
		event.MedicationName, event.Stock, event.Threshold, event.MedicationID,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send low-stock alert: %w", err)
	}
	return nil
}
