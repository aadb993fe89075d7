package agronomy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding stored agronomy advice
const CollectionName = "fertilizer_pesticide_recommendations"

// Repository stores fertilizer and pesticide recommendations
type Repository interface {
	Find(ctx context.Context, criteria Criteria) ([]Record, error)
	Create(ctx context.Context, record *Record) error
}

// =====================================================
// Mongo
// =====================================================

// MongoRepository implements Repository on a Mongo collection
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a repository over the advice collection of db
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the lookup indexes used by the advice chain
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "crop_id", Value: 1}, {Key: "growth_stage", Value: 1}}},
		{
			Keys:    bson.D{{Key: "crop_name", Value: 1}, {Key: "location_id", Value: 1}, {Key: "growth_stage", Value: 1}},
			Options: options.Index().SetCollation(&options.Collation{Locale: "en", Strength: 2}),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create agronomy indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Find(ctx context.Context, criteria Criteria) ([]Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetCollation(&options.Collation{Locale: "en", Strength: 2})
	if criteria.Limit > 0 {
		opts.SetLimit(int64(criteria.Limit))
	}

	cursor, err := r.coll.Find(ctx, mongoFilter(criteria), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query agronomy records: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]Record, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode agronomy records: %w", err)
	}
	return records, nil
}

func (r *MongoRepository) Create(ctx context.Context, record *Record) error {
	stamp(record)
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert agronomy record: %w", err)
	}
	return nil
}

// mongoFilter translates criteria into a query document
func mongoFilter(c Criteria) bson.M {
	filter := bson.M{}
	if c.CropID != "" {
		filter["crop_id"] = c.CropID
	}
	if c.CropName != "" {
		filter["crop_name"] = strings.TrimSpace(c.CropName)
	}
	if len(c.CropNames) > 0 {
		filter["crop_name"] = bson.M{"$in": c.CropNames}
	}
	if c.LocationID != "" {
		filter["location_id"] = c.LocationID
	}
	switch len(c.Stages) {
	case 0:
	case 1:
		filter["growth_stage"] = c.Stages[0]
	default:
		filter["growth_stage"] = bson.M{"$in": c.Stages}
	}
	return filter
}

// =====================================================
// Memory
// =====================================================

// MemoryRepository keeps records in insertion order behind a RWMutex
type MemoryRepository struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryRepository creates a repository pre-loaded with records
func NewMemoryRepository(records ...Record) *MemoryRepository {
	r := &MemoryRepository{}
	for _, rec := range records {
		stamp(&rec)
		r.records = append(r.records, rec)
	}
	return r
}

func (r *MemoryRepository) Find(ctx context.Context, criteria Criteria) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Record, 0)
	for i := range r.records {
		if !criteria.Matches(&r.records[i]) {
			continue
		}
		out = append(out, r.records[i])
		if criteria.Limit > 0 && len(out) == criteria.Limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRepository) Create(ctx context.Context, record *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stamp(record)
	r.mu.Lock()
	r.records = append(r.records, *record)
	r.mu.Unlock()
	return nil
}

func stamp(record *Record) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
}
