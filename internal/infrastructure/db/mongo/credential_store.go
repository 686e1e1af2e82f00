package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/identification/identity-service/internal/core/domain"
	"github.com/identification/identity-service/internal/infrastructure/crypto"
)

const accountsCollection = "accounts"

type CredentialStore struct {
	coll   *mongo.Collection
	roles  *mongo.Collection
	hasher *crypto.Hasher
}

func NewCredentialStore(db *mongo.Database, hasher *crypto.Hasher) *CredentialStore {
	return &CredentialStore{
		coll:   db.Collection(accountsCollection),
		roles:  db.Collection(rolesCollection),
		hasher: hasher,
	}
}

type mongoAccount struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Username           string             `bson:"username"`
	NormalizedUsername string             `bson:"normalized_username"`
	PasswordHash       string             `bson:"password_hash"`
	Roles              []string           `bson:"roles"`
	CreatedAt          int64              `bson:"created_at"`
}

func (r *CredentialStore) Create(ctx context.Context, account *domain.Account, password string) error {
	if err := r.hasher.CheckPolicy(password); err != nil {
		return domain.NewStoreRejection(err)
	}
	hash, err := r.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	doc := mongoAccount{
		Username:           account.Username,
		NormalizedUsername: account.NormalizedUsername,
		PasswordHash:       hash,
		Roles:              []string{},
		CreatedAt:          account.CreatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.NewStoreRejection(domain.ErrAccountExists, "username '"+account.Username+"' is already taken")
		}
		return fmt.Errorf("insert account: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		account.ID = oid.Hex()
	}
	return nil
}

func (r *CredentialStore) FindByUsername(ctx context.Context, normalizedUsername string) (*domain.Account, error) {
	ma, err := r.find(ctx, normalizedUsername)
	if err != nil {
		return nil, err
	}
	return &domain.Account{
		ID:                 ma.ID.Hex(),
		Username:           ma.Username,
		NormalizedUsername: ma.NormalizedUsername,
		CreatedAt:          unixToTime(ma.CreatedAt),
	}, nil
}

func (r *CredentialStore) VerifyPassword(ctx context.Context, account *domain.Account, password string) (bool, error) {
	ma, err := r.find(ctx, account.NormalizedUsername)
	if err != nil {
		return false, err
	}
	return r.hasher.Compare(ma.PasswordHash, password)
}

// RolesOf resolves the stored canonical role names to display names.
func (r *CredentialStore) RolesOf(ctx context.Context, account *domain.Account) ([]string, error) {
	ma, err := r.find(ctx, account.NormalizedUsername)
	if err != nil {
		return nil, err
	}
	if len(ma.Roles) == 0 {
		return []string{}, nil
	}

	cur, err := r.roles.Find(ctx, bson.M{"normalized_name": bson.M{"$in": ma.Roles}})
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	var docs []mongoRole
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	return names, nil
}

// AttachRoles checks every role exists, then adds them with a single
// $addToSet so the update is all-or-nothing.
func (r *CredentialStore) AttachRoles(ctx context.Context, account *domain.Account, roles []string) error {
	normalized := distinctNormalized(roles)

	cur, err := r.roles.Find(ctx, bson.M{"normalized_name": bson.M{"$in": normalized}})
	if err != nil {
		return fmt.Errorf("find roles: %w", err)
	}
	var found []mongoRole
	if err := cur.All(ctx, &found); err != nil {
		return fmt.Errorf("decode roles: %w", err)
	}
	if missing := missingRoles(roles, found); len(missing) > 0 {
		return domain.NewStoreRejection(domain.ErrRoleNotFound, missing...)
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"normalized_username": account.NormalizedUsername},
		bson.M{"$addToSet": bson.M{"roles": bson.M{"$each": normalized}}},
	)
	if err != nil {
		return fmt.Errorf("attach roles: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *CredentialStore) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func (r *CredentialStore) find(ctx context.Context, normalizedUsername string) (*mongoAccount, error) {
	var ma mongoAccount
	if err := r.coll.FindOne(ctx, bson.M{"normalized_username": normalizedUsername}).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &ma, nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

// distinctNormalized returns the canonical form of each role once, in order.
func distinctNormalized(roles []string) []string {
	out := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		n := domain.Normalize(role)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// missingRoles describes every requested role absent from found.
func missingRoles(requested []string, found []mongoRole) []string {
	present := make(map[string]struct{}, len(found))
	for _, f := range found {
		present[f.NormalizedName] = struct{}{}
	}
	var missing []string
	for _, role := range requested {
		if _, ok := present[domain.Normalize(role)]; !ok {
			missing = append(missing, "role '"+role+"' does not exist")
		}
	}
	return missing
}
