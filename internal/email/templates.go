package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// Template names used by the auth and organization flows.
const (
	TemplateVerification  = "verification"
	TemplatePasswordReset = "password_reset"
	TemplateOtp           = "otp"
	TemplateInvitation    = "invitation"
)

// TemplateManager implements TemplateRenderer.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager creates a manager preloaded with the built-in
// transactional templates.
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}
	for name, body := range builtinTemplates {
		// Built-ins are compile-time constants; a parse failure is a bug.
		if err := tm.AddTemplate(name, body); err != nil {
			panic(fmt.Sprintf("builtin email template %q: %v", name, err))
		}
	}
	return tm
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}

var builtinTemplates = map[string]string{
	TemplateVerification: `<html><body>
<h2>Verify your email</h2>
<p>Hi {{.Username}},</p>
<p>Confirm your email address to activate your account:</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>The link expires in {{.TTL}}.</p>
</body></html>`,

	TemplatePasswordReset: `<html><body>
<h2>Reset your password</h2>
<p>Hi {{.Username}},</p>
<p>We received a request to reset your password:</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>The link expires in {{.TTL}}. If you did not request this, ignore this email.</p>
</body></html>`,

	TemplateOtp: `<html><body>
<h2>Your sign-in code</h2>
<p>Hi {{.Username}},</p>
<p>Your one-time sign-in code is:</p>
<p><strong style="font-size:24px;letter-spacing:4px">{{.Code}}</strong></p>
<p>The code expires in {{.TTL}}.</p>
</body></html>`,

	TemplateInvitation: `<html><body>
<h2>You have been invited</h2>
<p>{{.InviterName}} invited you to join <strong>{{.OrganizationName}}</strong> as {{.Role}}.</p>
<p><a href="{{.Link}}">Accept invitation</a></p>
<p>The invitation expires in {{.TTL}}.</p>
</body></html>`,
}
