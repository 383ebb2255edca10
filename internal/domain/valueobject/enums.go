package valueobject

import "strings"

type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderOther          Gender = "other"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
)

var Genders = []Gender{GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay}

func ParseGender(raw string) (Gender, error) { return parseEnum(CategoryGender, raw, Genders) }

type AuthType string

const (
	AuthTypePassword AuthType = "password"
	AuthTypeOIDC     AuthType = "oidc"
	AuthTypeSAML     AuthType = "saml"
)

var AuthTypes = []AuthType{AuthTypePassword, AuthTypeOIDC, AuthTypeSAML}

func ParseAuthType(raw string) (AuthType, error) { return parseEnum(CategoryAuthType, raw, AuthTypes) }

// IsExternal reports whether the method is delegated to an identity provider.
func (a AuthType) IsExternal() bool { return a == AuthTypeOIDC || a == AuthTypeSAML }

type ConsentType string

const (
	ConsentTermsOfService  ConsentType = "terms_of_service"
	ConsentPrivacyPolicy   ConsentType = "privacy_policy"
	ConsentMarketingEmails ConsentType = "marketing_emails"
	ConsentDataRetention   ConsentType = "data_retention"
)

var ConsentTypes = []ConsentType{ConsentTermsOfService, ConsentPrivacyPolicy, ConsentMarketingEmails, ConsentDataRetention}

func ParseConsentType(raw string) (ConsentType, error) {
	return parseEnum(CategoryConsentType, raw, ConsentTypes)
}

type SubscriptionTier string

const (
	TierFree       SubscriptionTier = "free"
	TierBasic      SubscriptionTier = "basic"
	TierPremium    SubscriptionTier = "premium"
	TierEnterprise SubscriptionTier = "enterprise"
)

var SubscriptionTiers = []SubscriptionTier{TierFree, TierBasic, TierPremium, TierEnterprise}

func ParseSubscriptionTier(raw string) (SubscriptionTier, error) {
	return parseEnum(CategorySubscriptionTier, raw, SubscriptionTiers)
}

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

var SubscriptionStatuses = []SubscriptionStatus{
	SubscriptionActive, SubscriptionInactive, SubscriptionPending, SubscriptionCanceled, SubscriptionExpired,
}

func ParseSubscriptionStatus(raw string) (SubscriptionStatus, error) {
	return parseEnum(CategorySubscriptionStatus, raw, SubscriptionStatuses)
}

// parseEnum trims and lowercases raw and looks it up in the closed set values.
func parseEnum[T ~string](c Category, raw string, values []T) (T, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", newError(c, KindEmpty)
	}
	v = strings.ToLower(v)
	for _, candidate := range values {
		if string(candidate) == v {
			return candidate, nil
		}
	}
	return "", newError(c, KindNotSupported)
}
