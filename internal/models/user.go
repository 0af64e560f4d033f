package models

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	BaseModel
	Email             string   `gorm:"uniqueIndex;not null"`
	Username          string   `gorm:"not null"`
	PasswordHash      string   `gorm:"not null"`
	Role              UserRole `gorm:"type:varchar(20);not null;default:'user'"`
	EmailVerified     bool     `gorm:"default:false"`
	RecoveryCode      *string
	BillingCustomerID *string `gorm:"index"`

	// Relations
	Sessions      []Session      `gorm:"foreignKey:UserID"`
	Memberships   []Membership   `gorm:"foreignKey:UserID"`
	OAuthAccounts []OAuthAccount `gorm:"foreignKey:UserID"`
}
