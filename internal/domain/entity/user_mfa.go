package entity

import (
	"time"

	"github.com/google/uuid"

	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

type MFAType string

const (
	MFATOTP     MFAType = "totp"
	MFASMS      MFAType = "sms"
	MFAEmail    MFAType = "email"
	MFAWebAuthn MFAType = "webauthn"
)

func ParseMFAType(raw string) (MFAType, error) {
	switch t := MFAType(raw); t {
	case MFATOTP, MFASMS, MFAEmail, MFAWebAuthn:
		return t, nil
	case "":
		return "", &vo.Error{Category: vo.CategoryMFA, Kind: vo.KindEmpty}
	default:
		return "", &vo.Error{Category: vo.CategoryMFA, Kind: vo.KindNotSupported}
	}
}

// UserMFA is a second factor enrolled by a user. Secrets arrive encrypted.
type UserMFA struct {
	ID                uuid.UUID
	UserID            vo.UserID
	Type              MFAType
	SecretEncrypted   string
	BackupCodes       []string
	RecoveryCodesUsed int
	IsEnabled         bool
	IsVerified        bool
	CreatedAt         time.Time
	LastUsedAt        *time.Time
}

func NewUserMFA(userID vo.UserID, t MFAType, secretEncrypted string, backupCodes []string) (*UserMFA, error) {
	if t == MFATOTP && secretEncrypted == "" {
		return nil, vo.NewMissingError(vo.CategoryMFA)
	}
	return &UserMFA{
		ID:              uuid.New(),
		UserID:          userID,
		Type:            t,
		SecretEncrypted: secretEncrypted,
		BackupCodes:     backupCodes,
		IsEnabled:       true,
		CreatedAt:       clock().UTC(),
	}, nil
}

func (m *UserMFA) Verify()  { m.IsVerified = true }
func (m *UserMFA) Disable() { m.IsEnabled = false }

// UseRecoveryCode fails once every backup code has been consumed.
func (m *UserMFA) UseRecoveryCode() error {
	if m.RecoveryCodesUsed >= len(m.BackupCodes) {
		return vo.NewInvalidValueError(vo.CategoryMFA, "no recovery codes left")
	}
	m.RecoveryCodesUsed++
	t := clock().UTC()
	m.LastUsedAt = &t
	return nil
}
