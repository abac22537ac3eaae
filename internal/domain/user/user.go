package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AuthProviderPassword  = "password"
	AuthProviderAnonymous = "anonymous"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password     string    `gorm:"column:password" json:"-"`
	Name         string    `gorm:"column:name" json:"name"`
	Handle       *string   `gorm:"uniqueIndex;column:handle" json:"handle,omitempty"`
	ShortBio     string    `gorm:"type:text;column:short_bio" json:"short_bio"`
	AuthProvider string    `gorm:"not null;column:auth_provider" json:"auth_provider"`
	AuthID       string    `gorm:"index;column:auth_id" json:"-"`
	IsCreator    bool      `gorm:"not null;default:false;column:is_creator" json:"is_creator"`

	StripeCustomerID string `gorm:"column:stripe_customer_id" json:"-"`
	StripeAccountID  string `gorm:"column:stripe_account_id" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserToken holds an opaque refresh token for a logged-in user.
type UserToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UserToken) TableName() string { return "user_token" }

func (t *UserToken) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
