package services

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"saaskit_backend/internal/auth"
	"saaskit_backend/internal/config"
	"saaskit_backend/internal/email"
	"saaskit_backend/internal/models"
	"saaskit_backend/internal/repositories"
)

var (
	sharedDB *gorm.DB
	dbOnce   sync.Once
)

// testDB opens the database named by TEST_DATABASE_URL and hands the
// test a transaction that is rolled back on cleanup, so tests never
// see each other's rows.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set; skipping database tests")
	}

	dbOnce.Do(func() {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		require.NoError(t, err, "failed to connect to test database")

		require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error)
		require.NoError(t, db.AutoMigrate(
			&models.User{},
			&models.Session{},
			&models.EmailVerificationToken{},
			&models.PasswordResetToken{},
			&models.OtpCode{},
			&models.OAuthAccount{},
			&models.Organization{},
			&models.Membership{},
			&models.Invitation{},
			&models.Todo{},
			&models.Plan{},
			&models.Payment{},
			&models.Subscription{},
		))
		sharedDB = db
	})

	tx := sharedDB.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() { tx.Rollback() })
	return tx
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Auth.SessionTTLDays = 30
	cfg.Auth.RenewalThresholdDays = 15
	cfg.Auth.ResetTokenTTLMin = 15
	cfg.Auth.VerificationTTLHours = 24
	cfg.Auth.OtpTTLMin = 5
	cfg.Auth.InviteSecret = "test-invite-secret"
	cfg.Auth.InviteTTLDays = 7
	cfg.Email.AppBaseURL = "http://localhost:3000"
	cfg.Billing.MerchantLogin = "test-shop"
	cfg.Billing.Password1 = "pass-one"
	cfg.Billing.Password2 = "pass-two"
	cfg.Billing.BaseURL = "https://auth.robokassa.kz/Merchant/Index.aspx"
	cfg.Billing.Currency = "KZT"
	return cfg
}

// recordingProvider captures outbound mail so tests can pull the
// plaintext tokens and codes out of the template data.
type recordedEmail struct {
	Template string
	To       []string
	Data     email.TemplateData
}

type recordingProvider struct {
	sends []recordedEmail
}

func (p *recordingProvider) Send(e *email.Email) error { return nil }

func (p *recordingProvider) SendWithTemplate(templateName string, data email.TemplateData, e *email.Email) error {
	p.sends = append(p.sends, recordedEmail{Template: templateName, To: e.To, Data: data})
	return nil
}

func (p *recordingProvider) Close() error { return nil }

func (p *recordingProvider) last(t *testing.T) recordedEmail {
	t.Helper()
	require.NotEmpty(t, p.sends, "expected at least one email to be sent")
	return p.sends[len(p.sends)-1]
}

// tokenFromLink pulls the token query parameter out of a recorded link.
func tokenFromLink(t *testing.T, data email.TemplateData) string {
	t.Helper()
	link, ok := data["Link"].(string)
	require.True(t, ok, "email data has no Link")
	_, token, found := strings.Cut(link, "token=")
	require.True(t, found, "link %q has no token parameter", link)
	return token
}

func newTestContainer(provider email.Provider) *ServiceContainer {
	return NewServiceContainer(provider, testConfig())
}

// createVerifiedUser inserts a user directly, bypassing onboarding.
func createVerifiedUser(t *testing.T, db *gorm.DB, emailAddr, password string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Email:         emailAddr,
		Username:      strings.SplitN(emailAddr, "@", 2)[0],
		PasswordHash:  hash,
		Role:          models.UserRoleUser,
		EmailVerified: true,
	}
	require.NoError(t, repositories.NewUserRepository().Create(db, user))
	return user
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}
