package email

// Email is an outbound message.
type Email struct {
	From     string
	FromName string
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// SMTPConfig holds SMTP transport settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
}
