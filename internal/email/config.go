package email

import (
	"fmt"

	"knotty_backend/internal/config"
)

// NewProviderFromConfig picks the provider named in the configuration.
func NewProviderFromConfig(cfg *config.Config) (Provider, error) {
	switch cfg.Email.Provider {
	case "log":
		return NewLogProvider(), nil
	case "smtp":
		return NewSMTPProvider(&SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			UseTLS:    cfg.Email.UseTLS,
		}), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %q", cfg.Email.Provider)
	}
}
