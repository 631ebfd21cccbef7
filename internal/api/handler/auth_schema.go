package handler

import (
	"time"

	"github.com/sponsormatch/matchbot/internal/core/domain"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,max=100"`
	Role     string `json:"role" validate:"required"`
}

type updateProfileRequest struct {
	Name              *string                    `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Plan              *string                    `json:"plan,omitempty" validate:"omitempty,oneof=free starter growth pro business enterprise"`
	Avatar            *string                    `json:"avatar,omitempty" validate:"omitempty,max=2048"`
	Bio               *string                    `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Company           *string                    `json:"company,omitempty" validate:"omitempty,max=200"`
	Website           *string                    `json:"website,omitempty" validate:"omitempty,max=2048"`
	Location          *string                    `json:"location,omitempty" validate:"omitempty,max=200"`
	SocialConnections *[]socialConnectionRequest `json:"socialConnections,omitempty" validate:"omitempty,dive"`
}

type socialConnectionRequest struct {
	Platform  string                `json:"platform" validate:"required,oneof=youtube instagram tiktok twitter"`
	Username  string                `json:"username" validate:"required,max=100"`
	Followers int64                 `json:"followers" validate:"min=0"`
	Connected bool                  `json:"connected"`
	Verified  bool                  `json:"verified"`
	Metrics   *domain.SocialMetrics `json:"metrics,omitempty"`
}

// authResponse is returned by login and register.
type authResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      *domain.UserProfile `json:"user"`
}

type profileResponse struct {
	User *domain.UserProfile `json:"user"`
}

func (r updateProfileRequest) toDomain() domain.ProfileUpdate {
	u := domain.ProfileUpdate{
		Name:     r.Name,
		Avatar:   r.Avatar,
		Bio:      r.Bio,
		Company:  r.Company,
		Website:  r.Website,
		Location: r.Location,
	}
	if r.Plan != nil {
		p := domain.Plan(*r.Plan)
		u.Plan = &p
	}
	if r.SocialConnections != nil {
		conns := make([]domain.SocialConnection, 0, len(*r.SocialConnections))
		for _, c := range *r.SocialConnections {
			conns = append(conns, domain.SocialConnection{
				Platform:  domain.Platform(c.Platform),
				Username:  c.Username,
				Followers: c.Followers,
				Connected: c.Connected,
				Verified:  c.Verified,
				Metrics:   c.Metrics,
			})
		}
		u.SocialConnections = &conns
	}
	return u
}
