package email

// SMTPConfig holds SMTP server settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	// AppBaseURL is used to build verification / reset links.
	AppBaseURL string
}
