package email

// Email is a single outbound message.
type Email struct {
	From     string
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData feeds the email templates.
type TemplateData map[string]interface{}
