package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

// UserAuthMethod is one way a user can sign in.
type UserAuthMethod struct {
	ID             uuid.UUID
	UserID         vo.UserID
	Type           vo.AuthType
	Provider       string
	ProviderUserID string
	IsPrimary      bool
	IsVerified     bool
	CreatedAt      time.Time
	LastUsedAt     *time.Time
}

// NewUserAuthMethod requires provider and provider user id for oidc and saml.
func NewUserAuthMethod(userID vo.UserID, t vo.AuthType, provider, providerUserID string, primary bool) (*UserAuthMethod, error) {
	provider = strings.TrimSpace(provider)
	providerUserID = strings.TrimSpace(providerUserID)
	if t.IsExternal() && (provider == "" || providerUserID == "") {
		return nil, vo.NewMissingError(vo.CategoryExternalID)
	}
	return &UserAuthMethod{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           t,
		Provider:       provider,
		ProviderUserID: providerUserID,
		IsPrimary:      primary,
		CreatedAt:      clock().UTC(),
	}, nil
}

func (m *UserAuthMethod) MarkAsUsed() {
	t := clock().UTC()
	m.LastUsedAt = &t
}

func (m *UserAuthMethod) IsExternal() bool { return m.Provider != "" }
