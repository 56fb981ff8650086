// Package cache holds the local fallback store used when the remote
// document store is unreachable. It mirrors the adapter's CRUD contract on
// redis hashes, one hash per collection, so callers cannot tell which
// backend served them.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinicacrm/models"
	"clinicacrm/repositories"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fallback:"

// Audit fields the fallback refuses to let an update clobber.
var preservedOnUpdate = []string{
	"criadoPorId",
	"criadoPorNome",
	"criadoPorEmail",
	"dataRegistroContato",
	"createdAt",
}

var ErrUnavailable = errors.New("fallback store unavailable")

type FallbackStore struct {
	client *redis.Client
}

// NewFallbackStore creates a store from an existing redis client. A nil
// client yields a store whose operations all fail with ErrUnavailable.
func NewFallbackStore(client *redis.Client) *FallbackStore {
	return &FallbackStore{client: client}
}

// NewFallbackStoreFromURL connects to redis and verifies the connection.
func NewFallbackStoreFromURL(redisURL string) (*FallbackStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &FallbackStore{client: client}, nil
}

func (s *FallbackStore) key(collection string) string {
	return keyPrefix + collection
}

func (s *FallbackStore) List(ctx context.Context, collection string) ([]models.Record, error) {
	if s.client == nil {
		return nil, ErrUnavailable
	}
	raw, err := s.client.HGetAll(ctx, s.key(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s from fallback: %w", collection, err)
	}

	recs := make([]models.Record, 0, len(raw))
	for _, data := range raw {
		var rec models.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			continue
		}
		recs = append(recs, rec)
	}

	if collection == models.CollectionLeads {
		repositories.SortRecords(recs, "dataRegistroContato", true)
	} else {
		repositories.SortRecords(recs, "createdAt", false)
	}
	return recs, nil
}

func (s *FallbackStore) GetByID(ctx context.Context, collection, id string) (models.Record, error) {
	if s.client == nil {
		return nil, ErrUnavailable
	}
	data, err := s.client.HGet(ctx, s.key(collection), id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s from fallback: %w", collection, id, err)
	}
	var rec models.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode %s/%s from fallback: %w", collection, id, err)
	}
	return rec, nil
}

func (s *FallbackStore) Create(ctx context.Context, collection string, data models.Record) (models.Record, error) {
	if s.client == nil {
		return nil, ErrUnavailable
	}
	rec := copyRecord(data)

	id, _ := rec["id"].(string)
	if id == "" {
		id = fmt.Sprintf("local-%d", time.Now().UnixNano())
	}
	rec["id"] = id
	if _, ok := rec["createdAt"]; !ok {
		rec["createdAt"] = time.Now().UTC().Format(time.RFC3339)
	}

	if err := s.put(ctx, collection, id, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *FallbackStore) Update(ctx context.Context, collection, id string, data models.Record) (models.Record, error) {
	if s.client == nil {
		return nil, ErrUnavailable
	}
	current, err := s.GetByID(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("record %s not found in fallback %s", id, collection)
	}

	merged := copyRecord(current)
	for k, v := range data {
		if k == "id" {
			continue
		}
		merged[k] = v
	}
	// Creator audit fields always win from the stored copy, even when the
	// caller's payload contradicts them.
	for _, k := range preservedOnUpdate {
		if v, ok := current[k]; ok {
			merged[k] = v
		}
	}

	if err := s.put(ctx, collection, id, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *FallbackStore) Delete(ctx context.Context, collection, id string) error {
	if s.client == nil {
		return ErrUnavailable
	}
	removed, err := s.client.HDel(ctx, s.key(collection), id).Result()
	if err != nil {
		return fmt.Errorf("delete %s/%s from fallback: %w", collection, id, err)
	}
	if removed == 0 {
		return fmt.Errorf("record %s not found in fallback %s", id, collection)
	}
	return nil
}

func (s *FallbackStore) Ping(ctx context.Context) error {
	if s.client == nil {
		return ErrUnavailable
	}
	return s.client.Ping(ctx).Err()
}

func (s *FallbackStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *FallbackStore) put(ctx context.Context, collection, id string, rec models.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s/%s for fallback: %w", collection, id, err)
	}
	if err := s.client.HSet(ctx, s.key(collection), id, data).Err(); err != nil {
		return fmt.Errorf("save %s/%s to fallback: %w", collection, id, err)
	}
	return nil
}

func copyRecord(rec models.Record) models.Record {
	out := make(models.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
