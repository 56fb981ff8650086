package services

import (
	"context"
	"log"
	"time"

	"clinicacrm/mappers"
	"clinicacrm/models"
	"clinicacrm/monitoring"
	"clinicacrm/repositories"
	"clinicacrm/utils"
)

// Source reports which backend served an operation.
type Source string

const (
	SourceRemote Source = "remote"
	SourceCache  Source = "cache"
)

// FallbackStore is the local store the service degrades to when the remote
// adapter fails. cache.FallbackStore implements it.
type FallbackStore interface {
	List(ctx context.Context, collection string) ([]models.Record, error)
	GetByID(ctx context.Context, collection, id string) (models.Record, error)
	Create(ctx context.Context, collection string, data models.Record) (models.Record, error)
	Update(ctx context.Context, collection, id string, data models.Record) (models.Record, error)
	Delete(ctx context.Context, collection, id string) error
}

// DataService is the single façade every handler talks to. Records go in
// and out in external shape; the service applies the field mapper, stamps
// audit metadata from the explicit actor and silently degrades to the local
// fallback when the remote store fails.
type DataService interface {
	GetAll(ctx context.Context, collection string) ([]models.Record, Source, error)
	GetByID(ctx context.Context, collection, id string) (models.Record, Source, error)
	Create(ctx context.Context, collection string, actor Actor, data models.Record) (models.Record, Source, error)
	Update(ctx context.Context, collection, id string, actor Actor, data models.Record) (models.Record, Source, error)
	Delete(ctx context.Context, collection, id string) (Source, error)
	DeleteTagWithCascade(ctx context.Context, id string, actor Actor) (leadsUpdated int, src Source, err error)
}

type dataService struct {
	repo     repositories.DatastoreRepository
	fallback FallbackStore
}

func NewDataService(repo repositories.DatastoreRepository, fallback FallbackStore) DataService {
	return &dataService{repo: repo, fallback: fallback}
}

func (s *dataService) GetAll(ctx context.Context, collection string) ([]models.Record, Source, error) {
	m := mappers.ForCollection(collection)

	recs, err := s.repo.List(ctx, collection)
	if err == nil {
		return mapAll(m, recs), SourceRemote, nil
	}
	s.degrade(collection, "list", err)

	recs, ferr := s.fallback.List(ctx, collection)
	if ferr != nil {
		return nil, SourceCache, ferr
	}
	return mapAll(m, recs), SourceCache, nil
}

func (s *dataService) GetByID(ctx context.Context, collection, id string) (models.Record, Source, error) {
	m := mappers.ForCollection(collection)

	rec, err := s.repo.GetByID(ctx, collection, id)
	if err == nil {
		if rec == nil {
			return nil, SourceRemote, nil
		}
		return m.FromStorage(rec), SourceRemote, nil
	}
	s.degrade(collection, "get", err)

	rec, ferr := s.fallback.GetByID(ctx, collection, id)
	if ferr != nil {
		return nil, SourceCache, ferr
	}
	if rec == nil {
		return nil, SourceCache, nil
	}
	return m.FromStorage(rec), SourceCache, nil
}

func (s *dataService) Create(ctx context.Context, collection string, actor Actor, data models.Record) (models.Record, Source, error) {
	m := mappers.ForCollection(collection)
	storage := m.ToStorage(data)
	stampCreate(collection, storage, actor)

	rec, err := s.repo.Create(ctx, collection, storage)
	if err == nil {
		return m.FromStorage(rec), SourceRemote, nil
	}
	s.degrade(collection, "create", err)

	rec, ferr := s.fallback.Create(ctx, collection, storage)
	if ferr != nil {
		return nil, SourceCache, ferr
	}
	return m.FromStorage(rec), SourceCache, nil
}

func (s *dataService) Update(ctx context.Context, collection, id string, actor Actor, data models.Record) (models.Record, Source, error) {
	m := mappers.ForCollection(collection)
	storage := m.ToStorage(data)
	stampUpdate(storage, actor)

	rec, err := s.repo.Update(ctx, collection, id, storage)
	if err == nil {
		return m.FromStorage(rec), SourceRemote, nil
	}
	s.degrade(collection, "update", err)

	rec, ferr := s.fallback.Update(ctx, collection, id, storage)
	if ferr != nil {
		return nil, SourceCache, ferr
	}
	return m.FromStorage(rec), SourceCache, nil
}

func (s *dataService) Delete(ctx context.Context, collection, id string) (Source, error) {
	err := s.repo.Delete(ctx, collection, id)
	if err == nil {
		return SourceRemote, nil
	}
	s.degrade(collection, "delete", err)

	if ferr := s.fallback.Delete(ctx, collection, id); ferr != nil {
		return SourceCache, ferr
	}
	return SourceCache, nil
}

// DeleteTagWithCascade removes the tag and sweeps its id out of every
// lead's tags array. Individual lead failures do not abort the sweep.
func (s *dataService) DeleteTagWithCascade(ctx context.Context, id string, actor Actor) (int, Source, error) {
	src, err := s.Delete(ctx, models.CollectionTags, id)
	if err != nil {
		return 0, src, err
	}

	leads, lerr := s.listStorage(ctx, src)
	if lerr != nil {
		return 0, src, lerr
	}

	updated := 0
	for _, lead := range leads {
		tags, changed := removeTag(lead["tags"], id)
		if !changed {
			continue
		}
		leadID, _ := lead["id"].(string)
		patch := models.Record{"tags": tags}
		stampUpdate(patch, actor)

		if uerr := s.updateStorage(ctx, src, leadID, patch); uerr != nil {
			log.Printf("tag cascade: lead %s not updated: %v", leadID, uerr)
			continue
		}
		updated++
	}
	return updated, src, nil
}

// listStorage and updateStorage keep a cascade on the backend that served
// the initial delete, so the sweep sees the same data set it mutates.
func (s *dataService) listStorage(ctx context.Context, src Source) ([]models.Record, error) {
	if src == SourceCache {
		return s.fallback.List(ctx, models.CollectionLeads)
	}
	recs, err := s.repo.List(ctx, models.CollectionLeads)
	if err != nil {
		s.degrade(models.CollectionLeads, "list", err)
		return s.fallback.List(ctx, models.CollectionLeads)
	}
	return recs, nil
}

func (s *dataService) updateStorage(ctx context.Context, src Source, id string, data models.Record) error {
	if src == SourceCache {
		_, err := s.fallback.Update(ctx, models.CollectionLeads, id, data)
		return err
	}
	_, err := s.repo.Update(ctx, models.CollectionLeads, id, data)
	return err
}

func removeTag(v interface{}, id string) ([]string, bool) {
	out := []string{}
	changed := false
	switch tags := v.(type) {
	case []string:
		for _, t := range tags {
			if t == id {
				changed = true
				continue
			}
			out = append(out, t)
		}
	case []interface{}:
		for _, e := range tags {
			t, ok := e.(string)
			if !ok {
				continue
			}
			if t == id {
				changed = true
				continue
			}
			out = append(out, t)
		}
	}
	return out, changed
}

// degrade records a remote failure before the call falls back locally. The
// caller still succeeds; the error is only logged, captured and counted.
func (s *dataService) degrade(collection, operation string, err error) {
	log.Printf("datastore %s on %s failed, using fallback: %v", operation, collection, err)
	utils.CaptureError(err, map[string]interface{}{
		"collection": collection,
		"operation":  operation,
	})
	monitoring.FallbackTotal.WithLabelValues(collection, operation).Inc()
}

func mapAll(m mappers.Mapper, recs []models.Record) []models.Record {
	out := make([]models.Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, m.FromStorage(rec))
	}
	return out
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// stampCreate fixes the creator identity and registration timestamp at
// creation; stampUpdate refreshes the modifier fields and strips the
// creator fields so later writes can never overwrite them.
func stampCreate(collection string, storage models.Record, actor Actor) {
	if actor.IsZero() {
		actor = SistemaActor()
	}
	now := nowStamp()

	storage["criadoPorId"] = actor.ID
	storage["criadoPorNome"] = actor.Nome
	storage["criadoPorEmail"] = actor.Email
	storage["alteradoPorId"] = actor.ID
	storage["alteradoPorNome"] = actor.Nome
	storage["alteradoPorEmail"] = actor.Email
	storage["createdAt"] = now
	storage["dataUltimaAlteracao"] = now

	if collection == models.CollectionLeads {
		if v, ok := storage["dataRegistroContato"].(string); !ok || v == "" {
			storage["dataRegistroContato"] = now
		}
	}
}

func stampUpdate(storage models.Record, actor Actor) {
	if actor.IsZero() {
		actor = SistemaActor()
	}
	delete(storage, "criadoPorId")
	delete(storage, "criadoPorNome")
	delete(storage, "criadoPorEmail")
	delete(storage, "dataRegistroContato")
	delete(storage, "createdAt")

	storage["alteradoPorId"] = actor.ID
	storage["alteradoPorNome"] = actor.Nome
	storage["alteradoPorEmail"] = actor.Email
	storage["dataUltimaAlteracao"] = nowStamp()
}
