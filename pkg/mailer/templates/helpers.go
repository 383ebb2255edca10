package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/go-ddd-user-context/config"
)

const humanLayout = "02 January 2006, 15:04 MST"

// Option pattern
type Option func(*EmailData)

func WithName(name string) Option { return func(d *EmailData) { d.Name = strings.TrimSpace(name) } }

// WithTime stamps the event time, rendered in loc (UTC when nil).
func WithTime(t time.Time, loc *time.Location) Option {
	return func(d *EmailData) {
		d.TimeAt = t.UTC()
		d.TimeAtText = inZone(t, loc)
	}
}

// WithExpiresAt stamps the code expiry, rendered in loc (UTC when nil).
func WithExpiresAt(t time.Time, loc *time.Location) Option {
	return func(d *EmailData) {
		d.ExpiresAt = t.UTC()
		d.ExpiresAtText = inZone(t, loc)
	}
}

func inZone(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(humanLayout)
}

// NewBaseEmailData fills the common fields from config, then applies opts
func NewBaseEmailData(cfg *config.Config, typ, email string, opts ...Option) EmailData {
	d := EmailData{
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:    cfg.LogoURL,
		SupportURL: cfg.SupportURL,
		VerifyURL:  cfg.VerifyEmailURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewVerifyEmailData(cfg *config.Config, email, code string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, VerifyEmail, email, opts...)
	d.Code = code
	return ToMap(d)
}

func NewAccountStatusData(cfg *config.Config, email, status string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, AccountStatus, email, opts...)
	d.Status = status
	return ToMap(d)
}

// NewEmailChangedData notifies the previous address of a change.
func NewEmailChangedData(cfg *config.Config, oldEmail, newEmail string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, EmailChanged, newEmail, opts...)
	d.OldEmail = oldEmail
	d.RecipientEmail = oldEmail
	return ToMap(d)
}
