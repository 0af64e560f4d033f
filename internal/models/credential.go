package models

import "time"

// Session is an active login. ID is the sha256 hash of the bearer token
// the client holds; the plaintext token is never persisted.
type Session struct {
	ID                   string    `gorm:"type:varchar(64);primaryKey"`
	UserID               string    `gorm:"type:uuid;not null;index"`
	ExpiresAt            time.Time `gorm:"not null;index"`
	ImpersonatorUserID   *string   `gorm:"type:uuid"`
	ActiveOrganizationID *string   `gorm:"type:uuid"`
	CreatedAt            time.Time `gorm:"default:now()"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// EmailVerificationToken is a one-time token, stored hashed, ~24h TTL.
type EmailVerificationToken struct {
	BaseModel
	UserID    string    `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
}

// PasswordResetToken is a one-time token, stored hashed, ~15min TTL.
// At most one live token per user; older rows are purged before issue.
type PasswordResetToken struct {
	BaseModel
	UserID    string    `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
}

// OtpCode is a hashed 6-digit sign-in code, ~5min TTL, one per user.
type OtpCode struct {
	BaseModel
	UserID    string    `gorm:"type:uuid;not null;index"`
	CodeHash  string    `gorm:"type:varchar(64);not null"`
	ExpiresAt time.Time `gorm:"not null"`
}

// OAuthAccount links an external identity to a user. Created once,
// never mutated.
type OAuthAccount struct {
	BaseModel
	Provider       string `gorm:"type:varchar(32);not null;uniqueIndex:idx_oauth_provider_user"`
	ProviderUserID string `gorm:"type:varchar(255);not null;uniqueIndex:idx_oauth_provider_user"`
	UserID         string `gorm:"type:uuid;not null;index"`
}
