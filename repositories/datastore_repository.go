package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"clinicacrm/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// retryDelay sits between the two attempts made for transient store errors.
const retryDelay = 500 * time.Millisecond

// undefinedSentinel marks fields some clients send instead of omitting
// them; they are stripped before every write.
const undefinedSentinel = "undefined"

// DatastoreRepository is the adapter over the remote document store. All
// records cross this boundary as storage-shape Records: `_id` is exposed as
// the hex string `id` and native datetimes come back as RFC 3339 strings.
type DatastoreRepository interface {
	List(ctx context.Context, collection string) ([]models.Record, error)
	GetByID(ctx context.Context, collection, id string) (models.Record, error)
	Create(ctx context.Context, collection string, data models.Record) (models.Record, error)
	Update(ctx context.Context, collection, id string, data models.Record) (models.Record, error)
	Delete(ctx context.Context, collection, id string) error
}

type datastoreRepository struct {
	db *mongo.Database
}

func NewDatastoreRepository(db *mongo.Database) DatastoreRepository {
	return &datastoreRepository{db: db}
}

// orderFor returns the default listing order of a collection. Leads list by
// their own registration timestamp, newest first; everything else by the
// generic creation timestamp.
func orderFor(collection string) (field string, desc bool) {
	if collection == models.CollectionLeads {
		return "dataRegistroContato", true
	}
	return "createdAt", false
}

func (r *datastoreRepository) List(ctx context.Context, collection string) ([]models.Record, error) {
	field, desc := orderFor(collection)

	docs, err := r.findAll(ctx, collection, field, desc)
	if err != nil && isSortRejection(err) {
		// The store refused the server-side sort; rerun unsorted and
		// re-sort here so the caller sees the same contract.
		docs, err = r.findAll(ctx, collection, "", false)
		if err != nil {
			return nil, err
		}
		recs := denormalizeAll(docs)
		SortRecords(recs, field, desc)
		return recs, nil
	}
	if err != nil {
		return nil, err
	}
	return denormalizeAll(docs), nil
}

func (r *datastoreRepository) findAll(ctx context.Context, collection, sortField string, desc bool) ([]bson.M, error) {
	opts := options.Find()
	if sortField != "" {
		dir := 1
		if desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: sortField, Value: dir}})
	}

	var docs []bson.M
	err := r.withRetry(func() error {
		cursor, err := r.db.Collection(collection).Find(ctx, bson.M{}, opts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)

		var found []bson.M
		if err := cursor.All(ctx, &found); err != nil {
			return err
		}
		docs = found
		return nil
	})
	return docs, err
}

func (r *datastoreRepository) GetByID(ctx context.Context, collection, id string) (models.Record, error) {
	var doc bson.M
	err := r.withRetry(func() error {
		var found bson.M
		if err := r.db.Collection(collection).FindOne(ctx, idFilter(id)).Decode(&found); err != nil {
			return err
		}
		doc = found
		return nil
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return denormalize(doc), nil
}

func (r *datastoreRepository) Create(ctx context.Context, collection string, data models.Record) (models.Record, error) {
	doc := sanitize(data)

	var insertedID interface{}
	err := r.withRetry(func() error {
		res, err := r.db.Collection(collection).InsertOne(ctx, doc)
		if err != nil {
			return err
		}
		insertedID = res.InsertedID
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Read the record back instead of trusting the write echo.
	var created bson.M
	err = r.withRetry(func() error {
		var found bson.M
		if err := r.db.Collection(collection).FindOne(ctx, bson.M{"_id": insertedID}).Decode(&found); err != nil {
			return err
		}
		created = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return denormalize(created), nil
}

// Update reads the current document, merges the caller's partial update
// onto it so unrelated fields survive, replaces the document and reads it
// back.
func (r *datastoreRepository) Update(ctx context.Context, collection, id string, data models.Record) (models.Record, error) {
	coll := r.db.Collection(collection)

	var current bson.M
	err := r.withRetry(func() error {
		var found bson.M
		if err := coll.FindOne(ctx, idFilter(id)).Decode(&found); err != nil {
			return err
		}
		current = found
		return nil
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("record %s not found in %s", id, collection)
	}
	if err != nil {
		return nil, err
	}

	for k, v := range sanitize(data) {
		current[k] = v
	}

	err = r.withRetry(func() error {
		_, rerr := coll.ReplaceOne(ctx, idFilter(id), current)
		return rerr
	})
	if err != nil {
		return nil, err
	}

	var updated bson.M
	err = r.withRetry(func() error {
		var found bson.M
		if err := coll.FindOne(ctx, idFilter(id)).Decode(&found); err != nil {
			return err
		}
		updated = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return denormalize(updated), nil
}

func (r *datastoreRepository) Delete(ctx context.Context, collection, id string) error {
	return r.withRetry(func() error {
		res, err := r.db.Collection(collection).DeleteOne(ctx, idFilter(id))
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return fmt.Errorf("record %s not found in %s", id, collection)
		}
		return nil
	})
}

// withRetry runs op and repeats it exactly once, after a short delay, when
// the failure looks transient. Everything else propagates immediately.
func (r *datastoreRepository) withRetry(op func() error) error {
	err := op()
	if err != nil && isTransient(err) {
		time.Sleep(retryDelay)
		err = op()
	}
	return err
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 13, 91, 189, 11600, 11602:
			// Unauthorized, ShutdownInProgress, PrimarySteppedDown,
			// InterruptedAtShutdown, InterruptedDueToReplStateChange
			return true
		}
	}
	return false
}

// isSortRejection reports whether a listing failed because the store could
// not honor the requested server-side ordering.
func isSortRejection(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 292 {
		return true
	}
	return strings.Contains(err.Error(), "Sort exceeded memory limit")
}

func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": id}
}

// sanitize copies a record for writing: the id never goes into the document
// body and sentinel "undefined" values are dropped.
func sanitize(data models.Record) bson.M {
	out := bson.M{}
	for k, v := range data {
		if k == "id" || k == "_id" {
			continue
		}
		if s, ok := v.(string); ok && s == undefinedSentinel {
			continue
		}
		out[k] = v
	}
	return out
}

func denormalizeAll(docs []bson.M) []models.Record {
	recs := make([]models.Record, 0, len(docs))
	for _, doc := range docs {
		recs = append(recs, denormalize(doc))
	}
	return recs
}

// denormalize converts a raw document into the shape the rest of the layer
// works with: `_id` becomes the string `id`, native datetimes become
// RFC 3339 strings and driver container types become plain maps and slices.
func denormalize(doc bson.M) models.Record {
	rec := models.Record{}
	for k, v := range doc {
		if k == "_id" {
			rec["id"] = idString(v)
			continue
		}
		rec[k] = denormalizeValue(v)
	}
	return rec
}

func idString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprintf("%v", id)
	}
}

func denormalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case primitive.ObjectID:
		return t.Hex()
	case bson.M:
		out := models.Record{}
		for k, e := range t {
			out[k] = denormalizeValue(e)
		}
		return out
	case map[string]interface{}:
		out := models.Record{}
		for k, e := range t {
			out[k] = denormalizeValue(e)
		}
		return out
	case bson.D:
		out := models.Record{}
		for _, e := range t {
			out[e.Key] = denormalizeValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = denormalizeValue(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = denormalizeValue(e)
		}
		return out
	default:
		return v
	}
}

// SortRecords orders records by a field client-side, mirroring the store's
// own ordering contract. RFC 3339 timestamps compare correctly as strings.
func SortRecords(recs []models.Record, field string, desc bool) {
	sort.SliceStable(recs, func(i, j int) bool {
		c := compareValues(recs[i][field], recs[j][field])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(a, b interface{}) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(valueString(a), valueString(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func valueString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
