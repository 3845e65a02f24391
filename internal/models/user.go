package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleCustomer UserRole = "customer"
)

// ValidRole reports whether the role is one of the closed set.
func ValidRole(r UserRole) bool {
	return r == RoleAdmin || r == RoleCustomer
}

type User struct {
	BaseModel
	Name         string   `gorm:"not null"`
	Email        string   `gorm:"uniqueIndex;not null"`
	PasswordHash string   `gorm:"not null"`
	Age          int      `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'customer'"`
	IsActive     bool     `gorm:"default:true"`

	ProfileImage       string
	PhoneNumber        string
	Newsletter         bool `gorm:"default:false"`
	EmailNotifications bool `gorm:"default:true"`

	// MFA state. MfaSecret is reserved for TOTP enrollment and is not
	// read by the code-based flows. The setup code pair is only
	// meaningful while enrollment is in flight; the login code pair only
	// between the two login steps.
	MfaSecret       string `json:"-"`
	MfaEnabled      bool   `gorm:"default:false"`
	MfaSetupCode    string
	MfaSetupCodeExp *time.Time
	MfaLoginCode    string
	MfaLoginCodeExp *time.Time

	ResetCode    string
	ResetCodeExp *time.Time

	// Relations
	ShippingAddresses []ShippingAddress `gorm:"foreignKey:UserID"`
	Wishlist          []Product         `gorm:"many2many:user_wishlist_products"`
	Orders            []Order           `gorm:"foreignKey:UserID"`
}

type ShippingAddress struct {
	BaseModel
	UserID     string `gorm:"not null;index"`
	Line1      string `gorm:"not null"`
	Line2      string
	City       string `gorm:"not null"`
	PostalCode string `gorm:"not null"`
	Country    string `gorm:"not null"`
	IsDefault  bool   `gorm:"default:false"`
}
