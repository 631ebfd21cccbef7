package memory

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sponsormatch/matchbot/internal/core/domain"
)

// SeedPassword is the password of every seeded demo account.
const SeedPassword = "password123"

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

// SeedProfiles returns the demo accounts the directory starts with.
func SeedProfiles() []domain.UserProfile {
	return []domain.UserProfile{
		{
			ID:       "creator-123",
			Email:    "creator@example.com",
			Name:     "Alex Creator",
			Role:     domain.RoleCreator,
			Plan:     domain.PlanGrowth,
			Avatar:   "https://api.dicebear.com/7.x/avataaars/svg?seed=Alex",
			Bio:      "Lifestyle content creator passionate about travel and food",
			Website:  "https://alexcreator.com",
			Location: "New York, USA",
			SocialConnections: []domain.SocialConnection{
				{
					Platform:  domain.PlatformInstagram,
					Username:  "alex_creates",
					Followers: 25000,
					Connected: true,
					Verified:  true,
					Metrics: &domain.SocialMetrics{
						EngagementRate: 3.2,
						AvgLikes:       1200,
						AvgComments:    45,
						Audience: &domain.AudienceDemographics{
							AgeGroups:    map[string]float64{"18-24": 35, "25-34": 45, "35-44": 15, "45+": 5},
							GenderSplit:  &domain.GenderSplit{Male: 35, Female: 60, Other: 5},
							TopLocations: map[string]float64{"United States": 65, "Canada": 15, "UK": 10},
							Interests:    []string{"Travel", "Food", "Lifestyle", "Photography"},
						},
					},
				},
				{
					Platform:  domain.PlatformYouTube,
					Username:  "AlexCreates",
					Followers: 15000,
					Connected: true,
					Verified:  true,
					Metrics: &domain.SocialMetrics{
						EngagementRate: 4.5,
						AvgLikes:       850,
						AvgComments:    120,
						AvgViews:       ptr(5000.0),
					},
				},
			},
			CreatedAt: mustTime("2023-01-15T10:00:00Z"),
			UpdatedAt: mustTime("2023-05-20T14:30:00Z"),
		},
		{
			ID:                "brand-456",
			Email:             "brand@example.com",
			Name:              "TechGear",
			Role:              domain.RoleBrand,
			Plan:              domain.PlanBusiness,
			Avatar:            "https://api.dicebear.com/7.x/avataaars/svg?seed=TechGear",
			Bio:               "Innovative tech accessories for modern lifestyles",
			Company:           "TechGear Inc.",
			Website:           "https://techgear.com",
			Location:          "San Francisco, USA",
			SocialConnections: []domain.SocialConnection{},
			CreatedAt:         mustTime("2022-11-05T09:15:00Z"),
			UpdatedAt:         mustTime("2023-06-10T11:45:00Z"),
		},
	}
}

// SeedCredentials hashes SeedPassword for every seed profile.
func SeedCredentials(cost int) ([]domain.Credential, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	profiles := SeedProfiles()
	out := make([]domain.Credential, len(profiles))
	for i, p := range profiles {
		out[i] = domain.Credential{Profile: p, PasswordHash: string(hash)}
	}
	return out, nil
}

// NewSeededDirectory returns a Directory holding the demo accounts.
func NewSeededDirectory(cost int) (*Directory, error) {
	creds, err := SeedCredentials(cost)
	if err != nil {
		return nil, err
	}
	return NewDirectory(creds...), nil
}
