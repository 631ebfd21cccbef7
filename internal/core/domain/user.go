package domain

import (
	"maps"
	"slices"
	"time"
)

// Role determines UI branching and access-gate decisions. It never changes
// after registration.
type Role string

const (
	RoleCreator Role = "creator"
	RoleBrand   Role = "brand"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCreator, RoleBrand, RoleAdmin:
		return true
	}
	return false
}

// SelfService reports whether an account with this role may be created
// through registration. Admins are provisioned out of band.
func (r Role) SelfService() bool {
	return r == RoleCreator || r == RoleBrand
}

// Plan is the subscription tier. Informational only for the session core.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanStarter    Plan = "starter"
	PlanGrowth     Plan = "growth"
	PlanPro        Plan = "pro"
	PlanBusiness   Plan = "business"
	PlanEnterprise Plan = "enterprise"
)

// Valid reports whether p is one of the known plans.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanStarter, PlanGrowth, PlanPro, PlanBusiness, PlanEnterprise:
		return true
	}
	return false
}

// Platform identifies a social network a creator can link.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter"
)

// GenderSplit is an audience breakdown in percent.
type GenderSplit struct {
	Male   float64 `json:"male" bson:"male"`
	Female float64 `json:"female" bson:"female"`
	Other  float64 `json:"other" bson:"other"`
}

// AudienceDemographics describes who follows a linked account.
type AudienceDemographics struct {
	AgeGroups    map[string]float64 `json:"ageGroups,omitempty" bson:"age_groups,omitempty"`
	GenderSplit  *GenderSplit       `json:"genderSplit,omitempty" bson:"gender_split,omitempty"`
	TopLocations map[string]float64 `json:"topLocations,omitempty" bson:"top_locations,omitempty"`
	Interests    []string           `json:"interests,omitempty" bson:"interests,omitempty"`
}

// SocialMetrics are engagement figures for a linked account.
type SocialMetrics struct {
	EngagementRate float64               `json:"engagementRate" bson:"engagement_rate"`
	AvgLikes       float64               `json:"avgLikes" bson:"avg_likes"`
	AvgComments    float64               `json:"avgComments" bson:"avg_comments"`
	AvgViews       *float64              `json:"avgViews,omitempty" bson:"avg_views,omitempty"`
	Audience       *AudienceDemographics `json:"audience,omitempty" bson:"audience,omitempty"`
}

// SocialConnection is a platform-linked account owned by a profile.
type SocialConnection struct {
	Platform  Platform       `json:"platform" bson:"platform"`
	Username  string         `json:"username" bson:"username"`
	Followers int64          `json:"followers" bson:"followers"`
	Connected bool           `json:"connected" bson:"connected"`
	Verified  bool           `json:"verified" bson:"verified"`
	Metrics   *SocialMetrics `json:"metrics,omitempty" bson:"metrics,omitempty"`
}

// UserProfile is an authenticated identity with the password stripped.
type UserProfile struct {
	ID                string             `json:"id" bson:"profile_id"`
	Email             string             `json:"email" bson:"email"`
	Name              string             `json:"name" bson:"name"`
	Role              Role               `json:"role" bson:"role"`
	Plan              Plan               `json:"plan" bson:"plan"`
	Avatar            string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Bio               string             `json:"bio,omitempty" bson:"bio,omitempty"`
	Company           string             `json:"company,omitempty" bson:"company,omitempty"`
	Website           string             `json:"website,omitempty" bson:"website,omitempty"`
	Location          string             `json:"location,omitempty" bson:"location,omitempty"`
	SocialConnections []SocialConnection `json:"socialConnections" bson:"social_connections"`
	CreatedAt         time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Clone returns a deep copy so callers can never mutate the original through
// shared slices, maps or pointers.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	out := *u
	out.SocialConnections = cloneConnections(u.SocialConnections)
	return &out
}

func cloneConnections(in []SocialConnection) []SocialConnection {
	if in == nil {
		return nil
	}
	out := make([]SocialConnection, len(in))
	for i, c := range in {
		out[i] = c
		if c.Metrics != nil {
			out[i].Metrics = cloneMetrics(c.Metrics)
		}
	}
	return out
}

func cloneMetrics(m *SocialMetrics) *SocialMetrics {
	out := *m
	if m.AvgViews != nil {
		v := *m.AvgViews
		out.AvgViews = &v
	}
	if m.Audience != nil {
		a := *m.Audience
		a.AgeGroups = maps.Clone(m.Audience.AgeGroups)
		a.TopLocations = maps.Clone(m.Audience.TopLocations)
		a.Interests = slices.Clone(m.Audience.Interests)
		if m.Audience.GenderSplit != nil {
			g := *m.Audience.GenderSplit
			a.GenderSplit = &g
		}
		out.Audience = &a
	}
	return &out
}

// Credential is a directory entry: a profile plus its password hash.
type Credential struct {
	Profile      UserProfile `json:"profile"`
	PasswordHash string      `json:"-"`
}

// ProfileUpdate is a partial profile change. Nil fields are left untouched;
// a non-nil field replaces the stored value entirely. Identity fields (id,
// email, role, createdAt) cannot be changed.
type ProfileUpdate struct {
	Name              *string             `json:"name,omitempty"`
	Plan              *Plan               `json:"plan,omitempty"`
	Avatar            *string             `json:"avatar,omitempty"`
	Bio               *string             `json:"bio,omitempty"`
	Company           *string             `json:"company,omitempty"`
	Website           *string             `json:"website,omitempty"`
	Location          *string             `json:"location,omitempty"`
	SocialConnections *[]SocialConnection `json:"socialConnections,omitempty"`
}

// Empty reports whether the update carries no fields.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Plan == nil && p.Avatar == nil && p.Bio == nil &&
		p.Company == nil && p.Website == nil && p.Location == nil && p.SocialConnections == nil
}

// ApplyTo returns a copy of u with the update merged in. UpdatedAt is left
// for the caller to set.
func (p ProfileUpdate) ApplyTo(u *UserProfile) *UserProfile {
	out := u.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Plan != nil {
		out.Plan = *p.Plan
	}
	if p.Avatar != nil {
		out.Avatar = *p.Avatar
	}
	if p.Bio != nil {
		out.Bio = *p.Bio
	}
	if p.Company != nil {
		out.Company = *p.Company
	}
	if p.Website != nil {
		out.Website = *p.Website
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.SocialConnections != nil {
		out.SocialConnections = cloneConnections(*p.SocialConnections)
		if out.SocialConnections == nil {
			out.SocialConnections = []SocialConnection{}
		}
	}
	return out
}
