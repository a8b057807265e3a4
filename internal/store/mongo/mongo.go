// Package mongo implements the user and item stores on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/lostfound/found-api/internal/models"
	"github.com/lostfound/found-api/internal/store"
)

const (
	usersCollection = "users"
	itemsCollection = "items"
)

// Connect opens a client, verifies the primary is reachable and ensures the
// unique email index exists.
func Connect(ctx context.Context, uri, database string, logger *logrus.Logger) (*mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	_, err = db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create email index: %w", err)
	}
	_, err = db.Collection(itemsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "posted_by", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create posted_by index: %w", err)
	}

	logger.WithField("database", database).Info("MongoDB client initialized")
	return db, nil
}

// normalizeID canonicalizes ObjectID hex strings.
func normalizeID(raw string) (string, error) {
	oid, err := bson.ObjectIDFromHex(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return "", fmt.Errorf("%w: %q", store.ErrInvalidID, raw)
	}
	return oid.Hex(), nil
}

func parseID(raw string) (bson.ObjectID, bool) {
	id, err := normalizeID(raw)
	if err != nil {
		return bson.ObjectID{}, false
	}
	oid, _ := bson.ObjectIDFromHex(id)
	return oid, true
}

type userDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password_hash"`
	Name         string        `bson:"name"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type itemDocument struct {
	ID           bson.ObjectID     `bson:"_id,omitempty"`
	Title        string            `bson:"title"`
	Description  string            `bson:"description"`
	Category     string            `bson:"category"`
	Location     string            `bson:"location"`
	DateFound    string            `bson:"date_found"`
	ContactInfo  string            `bson:"contact_info"`
	ImageURL     string            `bson:"image_url,omitempty"`
	PostedBy     string            `bson:"posted_by"`
	PostedByName string            `bson:"posted_by_name"`
	CreatedAt    time.Time         `bson:"created_at"`
	UpdatedAt    *time.Time        `bson:"updated_at,omitempty"`
	Status       models.ItemStatus `bson:"status"`
}

func itemFromModel(item *models.FoundItem) *itemDocument {
	return &itemDocument{
		Title:        item.Title,
		Description:  item.Description,
		Category:     item.Category,
		Location:     item.Location,
		DateFound:    item.DateFound,
		ContactInfo:  item.ContactInfo,
		ImageURL:     item.ImageURL,
		PostedBy:     item.PostedBy,
		PostedByName: item.PostedByName,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
		Status:       item.Status,
	}
}

func (d *itemDocument) toModel() *models.FoundItem {
	return &models.FoundItem{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Description:  d.Description,
		Category:     d.Category,
		Location:     d.Location,
		DateFound:    d.DateFound,
		ContactInfo:  d.ContactInfo,
		ImageURL:     d.ImageURL,
		PostedBy:     d.PostedBy,
		PostedByName: d.PostedByName,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		Status:       d.Status,
	}
}

// UserStore persists users in the users collection.
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore creates a user store on db.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

func (s *UserStore) NormalizeID(raw string) (string, error) { return normalizeID(raw) }

func (s *UserStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	doc := &userDocument{
		ID:           bson.NewObjectID(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user failed: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find user failed: %w", err)
	}
	return doc.toModel(), nil
}

func (s *UserStore) UpdateName(ctx context.Context, id, name string) error {
	oid, ok := parseID(id)
	if !ok {
		return store.ErrNotFound
	}

	filter, update := nameUpdate(oid, name, time.Now().UTC())
	result, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update user failed: %w", err)
	}
	return matchedOne(result)
}

func nameUpdate(oid bson.ObjectID, name string, now time.Time) (bson.M, bson.M) {
	return bson.M{"_id": oid}, bson.M{"$set": bson.M{"name": name, "updated_at": now}}
}

// matchedOne maps an update that touched no document to store.ErrNotFound.
func matchedOne(result *mongo.UpdateResult) error {
	if result == nil || result.MatchedCount != 1 {
		return store.ErrNotFound
	}
	return nil
}

// ItemStore persists found items in the items collection.
type ItemStore struct {
	coll *mongo.Collection
}

// NewItemStore creates an item store on db.
func NewItemStore(db *mongo.Database) *ItemStore {
	return &ItemStore{coll: db.Collection(itemsCollection)}
}

func (s *ItemStore) NormalizeID(raw string) (string, error) { return normalizeID(raw) }

func (s *ItemStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func (s *ItemStore) Create(ctx context.Context, item *models.FoundItem) error {
	doc := itemFromModel(item)
	doc.ID = bson.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert item failed: %w", err)
	}
	item.ID = doc.ID.Hex()
	return nil
}

func (s *ItemStore) GetByID(ctx context.Context, id string) (*models.FoundItem, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, store.ErrNotFound
	}

	var doc itemDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find item failed: %w", err)
	}
	return doc.toModel(), nil
}

func (s *ItemStore) List(ctx context.Context) ([]*models.FoundItem, error) {
	return s.find(ctx, bson.M{})
}

func (s *ItemStore) ListByOwner(ctx context.Context, ownerID string) ([]*models.FoundItem, error) {
	return s.find(ctx, bson.M{"posted_by": ownerID})
}

func (s *ItemStore) find(ctx context.Context, filter bson.M) ([]*models.FoundItem, error) {
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find items failed: %w", err)
	}

	var docs []itemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode items failed: %w", err)
	}

	items := make([]*models.FoundItem, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].toModel())
	}
	return items, nil
}

func (s *ItemStore) UpdateStatus(ctx context.Context, id string, status models.ItemStatus) (*models.FoundItem, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, store.ErrNotFound
	}

	var doc itemDocument
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("update item failed: %w", err)
	}
	return doc.toModel(), nil
}

func (s *ItemStore) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return store.ErrNotFound
	}

	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete item failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ItemStore) UpdatePosterName(ctx context.Context, ownerID, name string) (int, error) {
	filter, update := posterNameUpdate(ownerID, name)
	result, err := s.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("update items failed: %w", err)
	}
	return int(result.MatchedCount), nil
}

// posterNameUpdate rewrites the denormalized name on every item of one owner
// in a single UpdateMany.
func posterNameUpdate(ownerID, name string) (bson.M, bson.M) {
	return bson.M{"posted_by": ownerID}, bson.M{"$set": bson.M{"posted_by_name": name}}
}
