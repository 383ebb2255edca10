package application

import "time"

type RegisterInput struct {
	Email    string `json:"email" validate:"required,max=254"`
	Username string `json:"username" validate:"omitempty,min=6,max=30"`
	Password string `json:"password" validate:"omitempty,pwd"`
}

type LoginInput struct {
	Email     string `json:"email" validate:"required,max=254"`
	Password  string `json:"password" validate:"required,max=72"`
	IP        string `json:"ip" validate:"omitempty,ip"`
	UserAgent string `json:"user_agent" validate:"max=512"`
}

type AssignRoleInput struct {
	UserID    string     `json:"user_id" validate:"required,uuid"`
	Role      string     `json:"role" validate:"required,min=3,max=50"`
	GrantedBy string     `json:"granted_by" validate:"omitempty,uuid"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type ProfileInput struct {
	FirstName   *string    `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string    `json:"last_name" validate:"omitempty,max=100"`
	DisplayName *string    `json:"display_name"`
	Bio         *string    `json:"bio" validate:"omitempty,max=500"`
	Gender      *string    `json:"gender"`
	BirthDate   *time.Time `json:"birth_date"`
	Locale      *string    `json:"locale"`
	Timezone    *string    `json:"timezone"`
}

type SubscribeInput struct {
	Tier          string `json:"tier" validate:"required"`
	Days          int    `json:"days" validate:"min=0,max=3650"`
	AutoRenew     bool   `json:"auto_renew"`
	PaymentMethod string `json:"payment_method" validate:"max=100"`
}

type renewInput struct {
	Days int `json:"days" validate:"days"`
}

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	UserID            string    `json:"user_id"`
	SessionID         string    `json:"session_id"`
	AccessToken       string    `json:"access_token"`
	AccessTokenExpiry time.Time `json:"access_token_expiry"`
	RefreshToken      string    `json:"refresh_token"`
	SessionExpiry     time.Time `json:"session_expiry"`
}
