package email

// Provider sends outbound email.
type Provider interface {
	// Send sends a plain message.
	Send(email *Email) error

	// SendWithTemplate renders a named template into HTMLBody and sends.
	SendWithTemplate(templateName string, data TemplateData, email *Email) error

	// Close releases any provider resources.
	Close() error
}

// TemplateRenderer renders named templates.
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}
