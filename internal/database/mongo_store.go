package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"fridgechef/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoDatabase = "fridgechef"
	fridgeCollection     = "fridgeitems"
)

// fridgeDocument is the stored shape of an IngredientRecord
type fridgeDocument struct {
	ObjectID  primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Quantity  quantityDocument   `bson:"quantity"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type quantityDocument struct {
	Value float64 `bson:"value"`
	Unit  string  `bson:"unit"`
}

func (d fridgeDocument) record() models.IngredientRecord {
	return models.IngredientRecord{
		ID:        d.ObjectID.Hex(),
		Name:      d.Name,
		Quantity:  models.Quantity{Value: d.Quantity.Value, Unit: models.InventoryUnit(d.Quantity.Unit)},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoStore keeps fridge items in a MongoDB collection
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// OpenMongo connects, pings and makes sure the unique name index exists
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	if dbName == "" {
		dbName = defaultMongoDatabase
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := NewMongoStore(client.Database(dbName).Collection(fridgeCollection))
	store.client = client
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return store, nil
}

// NewMongoStore wraps an existing collection
func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

// EnsureIndexes creates the unique index on name that backs the conflict check
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_name"),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique name index: %w", err)
	}
	return nil
}

// Insert adds a document; a duplicate key error becomes models.ErrConflict
func (s *MongoStore) Insert(ctx context.Context, rec *models.IngredientRecord) error {
	doc := fridgeDocument{
		Name:      rec.Name,
		Quantity:  quantityDocument{Value: rec.Quantity.Value, Unit: string(rec.Quantity.Unit)},
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}

	res, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", models.ErrConflict, rec.Name)
		}
		return fmt.Errorf("failed to insert fridge item: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ObjectID = id
	}
	*rec = doc.record()
	return nil
}

// List returns documents newest first, optionally restricted to names containing filter
func (s *MongoStore) List(ctx context.Context, filter string) ([]models.IngredientRecord, error) {
	query := bson.M{}
	if filter != "" {
		query["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter), Options: "i"}
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list fridge items: %w", err)
	}
	defer cur.Close(ctx)

	var docs []fridgeDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode fridge items: %w", err)
	}

	items := make([]models.IngredientRecord, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.record())
	}
	return items, nil
}

// DeleteByName removes the document with the given normalized name
func (s *MongoStore) DeleteByName(ctx context.Context, name string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("failed to delete fridge item: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", models.ErrNotFound, name)
	}
	return nil
}

// Ping checks that the deployment is reachable
func (s *MongoStore) Ping(ctx context.Context) error {
	if s.client == nil {
		return s.collection.Database().Client().Ping(ctx, nil)
	}
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client when the store owns it
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
