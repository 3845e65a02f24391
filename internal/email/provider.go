package email

// Provider sends outbound email. Code delivery is synchronous: callers
// treat a send failure as a failure of the whole operation.
type Provider interface {
	// Send delivers a single email message.
	Send(email *Email) error

	// Validate checks the provider configuration.
	Validate() error

	// Close releases provider resources.
	Close() error
}
