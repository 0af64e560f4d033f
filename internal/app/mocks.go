package app

import "saaskit_backend/internal/email"

// NoopEmailProvider is used when SMTP is not configured; messages are
// dropped silently so local development works without a mail server.
type NoopEmailProvider struct{}

func (m *NoopEmailProvider) Send(email *email.Email) error { return nil }
func (m *NoopEmailProvider) SendWithTemplate(templateName string, data email.TemplateData, emailMsg *email.Email) error {
	return nil
}
func (m *NoopEmailProvider) Close() error { return nil }
