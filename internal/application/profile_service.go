package application

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/pkg/validation"
)

// AvatarUploader stores an image and returns its public URL.
type AvatarUploader interface {
	Upload(ctx context.Context, userID vo.UserID, contentType string, r io.Reader) (string, error)
}

type ProfileService struct {
	store    userStore
	Profiles repository.ProfileRepository
	Avatars  AvatarUploader // optional
	Logger   logrus.FieldLogger
}

func NewProfileService(users repository.UserRepository, profiles repository.ProfileRepository, avatars AvatarUploader, logger logrus.FieldLogger) *ProfileService {
	return &ProfileService{
		store:    userStore{users: users, logger: logger},
		Profiles: profiles,
		Avatars:  avatars,
		Logger:   logger,
	}
}

// Get returns the user's profile, creating the default one if none exists.
func (s *ProfileService) Get(ctx context.Context, id string) (*entity.UserProfile, error) {
	u, err := s.store.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, u)
}

// Update applies every non-nil field of in.
func (s *ProfileService) Update(ctx context.Context, id string, in ProfileInput) (*entity.UserProfile, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.store.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsDeleted() {
		return nil, vo.NewInvalidStatusError(vo.CategoryProfile, u.Status())
	}
	p, err := s.profileOf(ctx, u)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil || in.LastName != nil {
		first, last := p.FirstName, p.LastName
		if in.FirstName != nil {
			first = *in.FirstName
		}
		if in.LastName != nil {
			last = *in.LastName
		}
		p.UpdateName(first, last)
	}
	if in.DisplayName != nil {
		if err := p.UpdateDisplayName(*in.DisplayName); err != nil {
			return nil, err
		}
	}
	if in.Bio != nil {
		p.UpdateBio(*in.Bio)
	}
	if in.Gender != nil {
		g, err := vo.ParseGender(*in.Gender)
		if err != nil {
			return nil, err
		}
		p.UpdateGender(g)
	}
	if in.BirthDate != nil {
		if err := p.UpdateBirthDate(*in.BirthDate); err != nil {
			return nil, err
		}
	}
	if in.Locale != nil || in.Timezone != nil {
		locale, tz := p.Locale, p.Timezone
		if in.Locale != nil {
			if locale, err = vo.NewLocale(*in.Locale); err != nil {
				return nil, err
			}
		}
		if in.Timezone != nil {
			if tz, err = vo.NewTimezone(*in.Timezone); err != nil {
				return nil, err
			}
		}
		p.UpdateLocaleTimezone(locale, tz)
	}
	if err := s.Profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UploadAvatar stores the image and points the profile at it.
func (s *ProfileService) UploadAvatar(ctx context.Context, id, contentType string, r io.Reader) (string, error) {
	if s.Avatars == nil {
		return "", ErrAvatarsDisabled
	}
	u, err := s.store.load(ctx, id)
	if err != nil {
		return "", err
	}
	if u.IsDeleted() {
		return "", vo.NewInvalidStatusError(vo.CategoryProfile, u.Status())
	}
	p, err := s.profileOf(ctx, u)
	if err != nil {
		return "", err
	}
	url, err := s.Avatars.Upload(ctx, u.ID(), contentType, r)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", id).Error("avatar upload failed")
		return "", err
	}
	p.UpdateAvatar(url)
	if err := s.Profiles.Save(ctx, p); err != nil {
		return "", err
	}
	return url, nil
}

func (s *ProfileService) profileOf(ctx context.Context, u *entity.User) (*entity.UserProfile, error) {
	p, err := s.Profiles.GetByUserID(ctx, u.ID())
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = entity.NewUserProfile(u.ID())
	}
	return p, nil
}
