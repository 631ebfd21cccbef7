package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sponsormatch/matchbot/internal/core/domain"
	"github.com/sponsormatch/matchbot/internal/core/ports"
)

const directoryCollection = "directory_users"

// DirectoryRepository stores credential records in MongoDB, one document
// per account, with a unique index on email.
type DirectoryRepository struct {
	coll *mongo.Collection
}

var _ ports.Directory = (*DirectoryRepository)(nil)

func NewDirectoryRepository(db *mongo.Database) *DirectoryRepository {
	return &DirectoryRepository{coll: db.Collection(directoryCollection)}
}

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (r *DirectoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

type mongoCredential struct {
	ID                primitive.ObjectID        `bson:"_id,omitempty"`
	ProfileID         string                    `bson:"profile_id"`
	Email             string                    `bson:"email"`
	PasswordHash      string                    `bson:"password_hash"`
	Name              string                    `bson:"name"`
	Role              string                    `bson:"role"`
	Plan              string                    `bson:"plan"`
	Avatar            string                    `bson:"avatar,omitempty"`
	Bio               string                    `bson:"bio,omitempty"`
	Company           string                    `bson:"company,omitempty"`
	Website           string                    `bson:"website,omitempty"`
	Location          string                    `bson:"location,omitempty"`
	SocialConnections []domain.SocialConnection `bson:"social_connections"`
	CreatedAt         int64                     `bson:"created_at"`
	UpdatedAt         int64                     `bson:"updated_at"`
}

func (r *DirectoryRepository) FindByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	var doc mongoCredential
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toCredential(doc), nil
}

func (r *DirectoryRepository) Create(ctx context.Context, cred *domain.Credential) error {
	doc := toDocument(&cred.Profile)
	doc.PasswordHash = cred.PasswordHash

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) Update(ctx context.Context, profile *domain.UserProfile) error {
	doc := toDocument(profile)
	set := bson.M{
		"name":               doc.Name,
		"plan":               doc.Plan,
		"avatar":             doc.Avatar,
		"bio":                doc.Bio,
		"company":            doc.Company,
		"website":            doc.Website,
		"location":           doc.Location,
		"social_connections": doc.SocialConnections,
		"updated_at":         doc.UpdatedAt,
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"email": profile.Email}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *DirectoryRepository) Delete(ctx context.Context, profile *domain.UserProfile) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"email": profile.Email, "profile_id": profile.ID}); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func toDocument(p *domain.UserProfile) mongoCredential {
	conns := p.SocialConnections
	if conns == nil {
		conns = []domain.SocialConnection{}
	}
	return mongoCredential{
		ProfileID:         p.ID,
		Email:             p.Email,
		Name:              p.Name,
		Role:              string(p.Role),
		Plan:              string(p.Plan),
		Avatar:            p.Avatar,
		Bio:               p.Bio,
		Company:           p.Company,
		Website:           p.Website,
		Location:          p.Location,
		SocialConnections: conns,
		CreatedAt:         p.CreatedAt.UnixMilli(),
		UpdatedAt:         p.UpdatedAt.UnixMilli(),
	}
}

func toCredential(doc mongoCredential) *domain.Credential {
	conns := doc.SocialConnections
	if conns == nil {
		conns = []domain.SocialConnection{}
	}
	return &domain.Credential{
		PasswordHash: doc.PasswordHash,
		Profile: domain.UserProfile{
			ID:                doc.ProfileID,
			Email:             doc.Email,
			Name:              doc.Name,
			Role:              domain.Role(doc.Role),
			Plan:              domain.Plan(doc.Plan),
			Avatar:            doc.Avatar,
			Bio:               doc.Bio,
			Company:           doc.Company,
			Website:           doc.Website,
			Location:          doc.Location,
			SocialConnections: conns,
			CreatedAt:         millisToTime(doc.CreatedAt),
			UpdatedAt:         millisToTime(doc.UpdatedAt),
		},
	}
}

func millisToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
