package crops

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding crop documents
const CollectionName = "crops"

// caseInsensitive collation used for the unique name index and name lookups
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// MongoRepository implements Repository on a Mongo collection
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a repository over the crops collection of db
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the case-insensitive unique index on name
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
		},
		{Keys: bson.D{{Key: "categories", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create crop indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindAll(ctx context.Context, category string) ([]CropRecord, error) {
	filter := bson.M{}
	if category != "" {
		filter["categories"] = category
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query crops: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]CropRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode crops: %w", err)
	}
	return records, nil
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter) ([]CropRecord, int64, error) {
	filter.Normalize()
	query := mongoFilter(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count crops: %w", err)
	}

	field, desc := filter.SortField()
	dir := 1
	if desc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}).
		SetSkip(int64(filter.Offset())).
		SetLimit(int64(filter.Limit)).
		SetCollation(caseInsensitive)

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list crops: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]CropRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to decode crops: %w", err)
	}
	return records, total, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*CropRecord, error) {
	var record CropRecord
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crop: %w", err)
	}
	return &record, nil
}

func (r *MongoRepository) GetByName(ctx context.Context, name string) (*CropRecord, error) {
	var record CropRecord
	opts := options.FindOne().SetCollation(caseInsensitive)
	err := r.coll.FindOne(ctx, bson.M{"name": strings.TrimSpace(name)}, opts).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crop by name: %w", err)
	}
	return &record, nil
}

func (r *MongoRepository) Create(ctx context.Context, record *CropRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to insert crop: %w", err)
	}
	return nil
}

func (r *MongoRepository) Update(ctx context.Context, record *CropRecord) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": record.ID}, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to update crop: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete crop: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Upsert(ctx context.Context, records []CropRecord) (int, error) {
	now := time.Now().UTC()
	written := 0
	for i, rec := range records {
		existing, err := r.GetByName(ctx, rec.Name)
		switch {
		case err == nil:
			rec.ID = existing.ID
			rec.CreatedAt = existing.CreatedAt
		case errors.Is(err, ErrNotFound):
			if rec.ID == "" {
				rec.ID = uuid.New().String()
			}
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = seedTimestamp(now, i)
			}
		default:
			return written, err
		}
		rec.UpdatedAt = now

		opts := options.Replace().SetUpsert(true)
		if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, opts); err != nil {
			return written, fmt.Errorf("failed to upsert crop %s: %w", rec.Name, err)
		}
		written++
	}
	return written, nil
}

// DeleteAll removes every crop document
func (r *MongoRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to clear crops: %w", err)
	}
	return res.DeletedCount, nil
}

// mongoFilter translates a ListFilter into a Mongo query document
func mongoFilter(f ListFilter) bson.M {
	query := bson.M{}
	if f.Category != "" {
		query["categories"] = f.Category
	}
	if f.ClimateZone != "" {
		query["climate_zones.zone_name"] = bson.M{"$regex": regexp.QuoteMeta(f.ClimateZone), "$options": "i"}
	}
	if f.SoilType != "" {
		query["soil_requirements.soil_types"] = exactInsensitive(f.SoilType)
	}
	if f.DroughtTolerance != "" {
		query["water_requirements.drought_tolerance"] = exactInsensitive(f.DroughtTolerance)
	}
	if f.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"scientific_name": pattern},
			bson.M{"description": pattern},
		}
	}
	if f.SowMonth >= 1 && f.SowMonth <= 12 {
		query["$expr"] = sowMonthExpr(f.SowMonth)
	}
	return query
}

func exactInsensitive(v string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(strings.TrimSpace(v)) + "$", "$options": "i"}
}

// sowMonthExpr matches documents with a climate zone whose sowing window contains
// month, treating windows with start > end as wrapping the year
func sowMonthExpr(month int) bson.M {
	start := "$$z.sowing_window.start_month"
	end := "$$z.sowing_window.end_month"
	return bson.M{"$anyElementTrue": bson.A{bson.M{"$map": bson.M{
		"input": bson.M{"$ifNull": bson.A{"$climate_zones", bson.A{}}},
		"as":    "z",
		"in": bson.M{"$and": bson.A{
			bson.M{"$gt": bson.A{start, 0}},
			bson.M{"$gt": bson.A{end, 0}},
			bson.M{"$cond": bson.A{
				bson.M{"$lte": bson.A{start, end}},
				bson.M{"$and": bson.A{bson.M{"$lte": bson.A{start, month}}, bson.M{"$gte": bson.A{end, month}}}},
				bson.M{"$or": bson.A{bson.M{"$lte": bson.A{start, month}}, bson.M{"$gte": bson.A{end, month}}}},
			}},
		}},
	}}}}
}
