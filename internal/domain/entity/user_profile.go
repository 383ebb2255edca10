package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
)

const (
	displayNameMinLen = 6
	displayNameMaxLen = 30
)

// UserProfile holds presentation data, 1:1 with User.
type UserProfile struct {
	ID          uuid.UUID
	UserID      vo.UserID
	FirstName   string
	LastName    string
	DisplayName string
	AvatarURL   string
	Bio         string
	BirthDate   *time.Time
	Gender      *vo.Gender
	Locale      vo.Locale
	Timezone    vo.Timezone
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewUserProfile creates an empty profile using the default locale and timezone.
func NewUserProfile(userID vo.UserID) *UserProfile {
	t := clock().UTC()
	return &UserProfile{
		ID:        uuid.New(),
		UserID:    userID,
		Locale:    vo.DefaultLocaleValue(),
		Timezone:  vo.DefaultTimezoneValue(),
		CreatedAt: t,
		UpdatedAt: t,
	}
}

func (p *UserProfile) UpdateName(first, last string) {
	p.FirstName = strings.TrimSpace(first)
	p.LastName = strings.TrimSpace(last)
	p.UpdatedAt = clock().UTC()
}

func (p *UserProfile) UpdateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &vo.Error{Category: vo.CategoryProfile, Kind: vo.KindEmpty}
	}
	n := utf8.RuneCountInString(name)
	if n < displayNameMinLen {
		return &vo.Error{Category: vo.CategoryProfile, Kind: vo.KindTooShort, Min: displayNameMinLen}
	}
	if n > displayNameMaxLen {
		return &vo.Error{Category: vo.CategoryProfile, Kind: vo.KindTooLong, Max: displayNameMaxLen}
	}
	p.DisplayName = name
	p.UpdatedAt = clock().UTC()
	return nil
}

func (p *UserProfile) UpdateAvatar(url string) {
	p.AvatarURL = url
	p.UpdatedAt = clock().UTC()
}

func (p *UserProfile) UpdateBio(bio string) {
	p.Bio = strings.TrimSpace(bio)
	p.UpdatedAt = clock().UTC()
}

func (p *UserProfile) UpdateGender(g vo.Gender) {
	p.Gender = &g
	p.UpdatedAt = clock().UTC()
}

// UpdateBirthDate rejects dates in the future.
func (p *UserProfile) UpdateBirthDate(d time.Time) error {
	if d.After(clock()) {
		return vo.NewInvalidValueError(vo.CategoryProfile, "birth date in the future")
	}
	d = d.UTC()
	p.BirthDate = &d
	p.UpdatedAt = clock().UTC()
	return nil
}

func (p *UserProfile) UpdateLocaleTimezone(l vo.Locale, tz vo.Timezone) {
	p.Locale = l
	p.Timezone = tz
	p.UpdatedAt = clock().UTC()
}
