package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/identification/identity-service/internal/core/domain"
)

const rolesCollection = "roles"

type RoleStore struct {
	coll *mongo.Collection
}

func NewRoleStore(db *mongo.Database) *RoleStore {
	return &RoleStore{coll: db.Collection(rolesCollection)}
}

type mongoRole struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	NormalizedName string             `bson:"normalized_name"`
}

func (r *RoleStore) Exists(ctx context.Context, roleName string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"normalized_name": domain.Normalize(roleName)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count roles: %w", err)
	}
	return n > 0, nil
}

func (r *RoleStore) Create(ctx context.Context, role *domain.Role) error {
	res, err := r.coll.InsertOne(ctx, mongoRole{Name: role.Name, NormalizedName: role.NormalizedName})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.NewStoreRejection(domain.ErrRoleExists, "role '"+role.Name+"' already exists")
		}
		return fmt.Errorf("insert role: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		role.ID = oid.Hex()
	}
	return nil
}

func (r *RoleStore) List(ctx context.Context) ([]*domain.Role, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "normalized_name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	var docs []mongoRole
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	out := make([]*domain.Role, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Role{ID: d.ID.Hex(), Name: d.Name, NormalizedName: d.NormalizedName})
	}
	return out, nil
}
