package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"clinicacrm/models"
	"clinicacrm/repositories"
)

// fakeRepo is an in-memory stand-in for the datastore adapter. It honors the
// adapter's contracts: records come back with a string id, listings follow
// the per-collection default ordering and updates merge onto the stored copy.
type fakeRepo struct {
	data       map[string]map[string]models.Record
	seq        int
	failUpdate map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		data:       map[string]map[string]models.Record{},
		failUpdate: map[string]error{},
	}
}

func (f *fakeRepo) collection(name string) map[string]models.Record {
	if f.data[name] == nil {
		f.data[name] = map[string]models.Record{}
	}
	return f.data[name]
}

func (f *fakeRepo) seed(collection string, rec models.Record) {
	id, _ := rec["id"].(string)
	f.collection(collection)[id] = cloneRecord(rec)
}

func (f *fakeRepo) List(ctx context.Context, collection string) ([]models.Record, error) {
	recs := make([]models.Record, 0, len(f.collection(collection)))
	for _, rec := range f.collection(collection) {
		recs = append(recs, cloneRecord(rec))
	}
	if collection == models.CollectionLeads {
		repositories.SortRecords(recs, "dataRegistroContato", true)
	} else {
		repositories.SortRecords(recs, "createdAt", false)
	}
	return recs, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, collection, id string) (models.Record, error) {
	rec, ok := f.collection(collection)[id]
	if !ok {
		return nil, nil
	}
	return cloneRecord(rec), nil
}

func (f *fakeRepo) Create(ctx context.Context, collection string, data models.Record) (models.Record, error) {
	f.seq++
	id := fmt.Sprintf("rec-%03d", f.seq)
	rec := cloneRecord(data)
	rec["id"] = id
	f.collection(collection)[id] = rec
	return cloneRecord(rec), nil
}

func (f *fakeRepo) Update(ctx context.Context, collection, id string, data models.Record) (models.Record, error) {
	if err, ok := f.failUpdate[id]; ok {
		return nil, err
	}
	current, ok := f.collection(collection)[id]
	if !ok {
		return nil, fmt.Errorf("record %s not found in %s", id, collection)
	}
	for k, v := range data {
		if k == "id" {
			continue
		}
		current[k] = v
	}
	return cloneRecord(current), nil
}

func (f *fakeRepo) Delete(ctx context.Context, collection, id string) error {
	if _, ok := f.collection(collection)[id]; !ok {
		return fmt.Errorf("record %s not found in %s", id, collection)
	}
	delete(f.collection(collection), id)
	return nil
}

// failingRepo simulates a remote store that is down for every operation.
type failingRepo struct{}

var errRemoteDown = errors.New("connection refused")

func (failingRepo) List(ctx context.Context, collection string) ([]models.Record, error) {
	return nil, errRemoteDown
}
func (failingRepo) GetByID(ctx context.Context, collection, id string) (models.Record, error) {
	return nil, errRemoteDown
}
func (failingRepo) Create(ctx context.Context, collection string, data models.Record) (models.Record, error) {
	return nil, errRemoteDown
}
func (failingRepo) Update(ctx context.Context, collection, id string, data models.Record) (models.Record, error) {
	return nil, errRemoteDown
}
func (failingRepo) Delete(ctx context.Context, collection, id string) error {
	return errRemoteDown
}

// fakeFallback mirrors the local store's semantics in memory, including the
// creator-audit preservation on updates.
type fakeFallback struct {
	data        map[string]map[string]models.Record
	seq         int
	unavailable bool
}

func newFakeFallback() *fakeFallback {
	return &fakeFallback{data: map[string]map[string]models.Record{}}
}

func (f *fakeFallback) collection(name string) map[string]models.Record {
	if f.data[name] == nil {
		f.data[name] = map[string]models.Record{}
	}
	return f.data[name]
}

func (f *fakeFallback) List(ctx context.Context, collection string) ([]models.Record, error) {
	if f.unavailable {
		return nil, errors.New("fallback store unavailable")
	}
	recs := make([]models.Record, 0, len(f.collection(collection)))
	for _, rec := range f.collection(collection) {
		recs = append(recs, cloneRecord(rec))
	}
	if collection == models.CollectionLeads {
		repositories.SortRecords(recs, "dataRegistroContato", true)
	} else {
		repositories.SortRecords(recs, "createdAt", false)
	}
	return recs, nil
}

func (f *fakeFallback) GetByID(ctx context.Context, collection, id string) (models.Record, error) {
	if f.unavailable {
		return nil, errors.New("fallback store unavailable")
	}
	rec, ok := f.collection(collection)[id]
	if !ok {
		return nil, nil
	}
	return cloneRecord(rec), nil
}

func (f *fakeFallback) Create(ctx context.Context, collection string, data models.Record) (models.Record, error) {
	if f.unavailable {
		return nil, errors.New("fallback store unavailable")
	}
	f.seq++
	rec := cloneRecord(data)
	id, _ := rec["id"].(string)
	if id == "" {
		id = fmt.Sprintf("local-%03d", f.seq)
	}
	rec["id"] = id
	f.collection(collection)[id] = rec
	return cloneRecord(rec), nil
}

func (f *fakeFallback) Update(ctx context.Context, collection, id string, data models.Record) (models.Record, error) {
	if f.unavailable {
		return nil, errors.New("fallback store unavailable")
	}
	current, ok := f.collection(collection)[id]
	if !ok {
		return nil, fmt.Errorf("record %s not found in fallback %s", id, collection)
	}
	for k, v := range data {
		if k == "id" {
			continue
		}
		current[k] = v
	}
	return cloneRecord(current), nil
}

func (f *fakeFallback) Delete(ctx context.Context, collection, id string) error {
	if f.unavailable {
		return errors.New("fallback store unavailable")
	}
	if _, ok := f.collection(collection)[id]; !ok {
		return fmt.Errorf("record %s not found in fallback %s", id, collection)
	}
	delete(f.collection(collection), id)
	return nil
}

func cloneRecord(rec models.Record) models.Record {
	out := make(models.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func TestCreateStampsCreatorAudit(t *testing.T) {
	svc := NewDataService(newFakeRepo(), newFakeFallback())
	ctx := context.Background()
	actor := Actor{ID: "u1", Nome: "Ana", Email: "ana@example.com"}

	rec, src, err := svc.Create(ctx, models.CollectionLeads, actor, models.Record{
		"nome_paciente": "Maria",
		"telefone":      "11 99999-0000",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if src != SourceRemote {
		t.Errorf("source = %v, want remote", src)
	}

	if rec["criado_por_id"] != "u1" || rec["criado_por_nome"] != "Ana" || rec["criado_por_email"] != "ana@example.com" {
		t.Errorf("creator audit = %v / %v / %v", rec["criado_por_id"], rec["criado_por_nome"], rec["criado_por_email"])
	}
	if rec["alterado_por_id"] != "u1" {
		t.Errorf("alterado_por_id = %v, want creator on first write", rec["alterado_por_id"])
	}
	if rec["data_registro_contato"] == "" {
		t.Error("data_registro_contato not defaulted on lead creation")
	}
	if rec["data_ultima_alteracao"] == "" {
		t.Error("data_ultima_alteracao not stamped")
	}
}

func TestCreateWithoutActorStampsSistema(t *testing.T) {
	svc := NewDataService(newFakeRepo(), newFakeFallback())

	rec, _, err := svc.Create(context.Background(), models.CollectionLeads, Actor{}, models.Record{
		"nome_paciente": "Maria",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec["criado_por_nome"] != "Sistema" {
		t.Errorf("criado_por_nome = %v, want Sistema", rec["criado_por_nome"])
	}
}

func TestUpdateRefreshesModifierAndKeepsCreator(t *testing.T) {
	svc := NewDataService(newFakeRepo(), newFakeFallback())
	ctx := context.Background()

	created, _, err := svc.Create(ctx, models.CollectionLeads, Actor{ID: "u1", Nome: "Ana", Email: "ana@example.com"}, models.Record{
		"nome_paciente": "Maria",
		"telefone":      "11 99999-0000",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created["id"].(string)

	updated, _, err := svc.Update(ctx, models.CollectionLeads, id, Actor{ID: "u2", Nome: "Bia", Email: "bia@example.com"}, models.Record{
		"nome_paciente": "Maria",
		"telefone":      "11 99999-0000",
		"status":        models.StatusEmConversa,
		// a hostile payload may carry creator fields; they must not stick
		"criado_por_id": "intruder",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated["status"] != models.StatusEmConversa {
		t.Errorf("status = %v, want updated value", updated["status"])
	}
	if updated["criado_por_id"] != "u1" || updated["criado_por_nome"] != "Ana" {
		t.Errorf("creator audit changed on update: %v / %v", updated["criado_por_id"], updated["criado_por_nome"])
	}
	if updated["alterado_por_id"] != "u2" || updated["alterado_por_nome"] != "Bia" {
		t.Errorf("modifier audit = %v / %v, want the updating actor", updated["alterado_por_id"], updated["alterado_por_nome"])
	}
	if updated["data_registro_contato"] != created["data_registro_contato"] {
		t.Errorf("data_registro_contato changed on update: %v -> %v",
			created["data_registro_contato"], updated["data_registro_contato"])
	}
}

func TestGetAllLeadsNewestFirst(t *testing.T) {
	svc := NewDataService(newFakeRepo(), newFakeFallback())
	ctx := context.Background()
	actor := SistemaActor()

	for _, rec := range []models.Record{
		{"nome_paciente": "a", "data_registro_contato": "2026-01-01T10:00:00Z"},
		{"nome_paciente": "c", "data_registro_contato": "2026-03-01T10:00:00Z"},
		{"nome_paciente": "b", "data_registro_contato": "2026-02-01T10:00:00Z"},
	} {
		if _, _, err := svc.Create(ctx, models.CollectionLeads, actor, rec); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	recs, src, err := svc.GetAll(ctx, models.CollectionLeads)
	if err != nil {
		t.Fatalf("getall: %v", err)
	}
	if src != SourceRemote {
		t.Errorf("source = %v, want remote", src)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	if recs[0]["nome_paciente"] != "c" || recs[1]["nome_paciente"] != "b" || recs[2]["nome_paciente"] != "a" {
		t.Errorf("order = %v, %v, %v, want c, b, a",
			recs[0]["nome_paciente"], recs[1]["nome_paciente"], recs[2]["nome_paciente"])
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	svc := NewDataService(newFakeRepo(), newFakeFallback())

	rec, src, err := svc.GetByID(context.Background(), models.CollectionLeads, "nope")
	if err != nil {
		t.Fatalf("getbyid: %v", err)
	}
	if rec != nil {
		t.Errorf("rec = %#v, want nil for missing record", rec)
	}
	if src != SourceRemote {
		t.Errorf("source = %v, want remote", src)
	}
}

func TestRemoteFailureDegradesToFallbackTransparently(t *testing.T) {
	svc := NewDataService(failingRepo{}, newFakeFallback())
	ctx := context.Background()
	actor := Actor{ID: "u1", Nome: "Ana", Email: "ana@example.com"}

	created, src, err := svc.Create(ctx, models.CollectionLeads, actor, models.Record{
		"nome_paciente": "Maria",
		"telefone":      "11 99999-0000",
	})
	if err != nil {
		t.Fatalf("create should succeed via fallback: %v", err)
	}
	if src != SourceCache {
		t.Errorf("create source = %v, want cache", src)
	}
	if created["criado_por_id"] != "u1" {
		t.Errorf("fallback-created record missing audit stamp: %v", created["criado_por_id"])
	}
	id := created["id"].(string)

	recs, src, err := svc.GetAll(ctx, models.CollectionLeads)
	if err != nil {
		t.Fatalf("getall via fallback: %v", err)
	}
	if src != SourceCache || len(recs) != 1 {
		t.Errorf("getall = %d records from %v, want 1 from cache", len(recs), src)
	}

	got, src, err := svc.GetByID(ctx, models.CollectionLeads, id)
	if err != nil || got == nil {
		t.Fatalf("getbyid via fallback: rec=%v err=%v", got, err)
	}
	if src != SourceCache {
		t.Errorf("getbyid source = %v, want cache", src)
	}

	updated, src, err := svc.Update(ctx, models.CollectionLeads, id, actor, models.Record{
		"nome_paciente": "Maria",
		"status":        models.StatusConvertido,
	})
	if err != nil {
		t.Fatalf("update via fallback: %v", err)
	}
	if src != SourceCache || updated["status"] != models.StatusConvertido {
		t.Errorf("update = %v from %v", updated["status"], src)
	}

	src, err = svc.Delete(ctx, models.CollectionLeads, id)
	if err != nil {
		t.Fatalf("delete via fallback: %v", err)
	}
	if src != SourceCache {
		t.Errorf("delete source = %v, want cache", src)
	}
}

func TestBothBackendsDownSurfacesError(t *testing.T) {
	fallback := newFakeFallback()
	fallback.unavailable = true
	svc := NewDataService(failingRepo{}, fallback)

	_, _, err := svc.GetAll(context.Background(), models.CollectionLeads)
	if err == nil {
		t.Fatal("expected an error when both backends fail")
	}
}

func TestDeleteTagWithCascade(t *testing.T) {
	svc := NewDataService(newFakeRepo(), newFakeFallback())
	ctx := context.Background()
	actor := Actor{ID: "u1", Nome: "Ana", Email: "ana@example.com"}

	tag, _, err := svc.Create(ctx, models.CollectionTags, actor, models.Record{"nome": "vip"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	tagID := tag["id"].(string)

	lead1, _, err := svc.Create(ctx, models.CollectionLeads, actor, models.Record{
		"nome_paciente": "Maria",
		"tags":          []string{tagID, "other"},
	})
	if err != nil {
		t.Fatalf("create lead1: %v", err)
	}
	lead2, _, err := svc.Create(ctx, models.CollectionLeads, actor, models.Record{
		"nome_paciente": "Joana",
		"tags":          []string{tagID},
	})
	if err != nil {
		t.Fatalf("create lead2: %v", err)
	}
	untouched, _, err := svc.Create(ctx, models.CollectionLeads, actor, models.Record{
		"nome_paciente": "Clara",
		"tags":          []string{"other"},
	})
	if err != nil {
		t.Fatalf("create lead3: %v", err)
	}

	updated, src, err := svc.DeleteTagWithCascade(ctx, tagID, Actor{ID: "u2", Nome: "Bia"})
	if err != nil {
		t.Fatalf("cascade: %v", err)
	}
	if src != SourceRemote {
		t.Errorf("source = %v, want remote", src)
	}
	if updated != 2 {
		t.Errorf("leadsUpdated = %d, want 2", updated)
	}

	if rec, _, _ := svc.GetByID(ctx, models.CollectionTags, tagID); rec != nil {
		t.Error("tag still present after cascade delete")
	}

	rec, _, _ := svc.GetByID(ctx, models.CollectionLeads, lead1["id"].(string))
	if tags, _ := rec["tags"].([]string); len(tags) != 1 || tags[0] != "other" {
		t.Errorf("lead1 tags = %v, want [other]", rec["tags"])
	}
	if rec["alterado_por_id"] != "u2" {
		t.Errorf("cascaded lead not restamped: alterado_por_id = %v", rec["alterado_por_id"])
	}

	rec, _, _ = svc.GetByID(ctx, models.CollectionLeads, lead2["id"].(string))
	if tags, _ := rec["tags"].([]string); len(tags) != 0 {
		t.Errorf("lead2 tags = %v, want empty", rec["tags"])
	}

	rec, _, _ = svc.GetByID(ctx, models.CollectionLeads, untouched["id"].(string))
	if rec["alterado_por_id"] != "u1" {
		t.Errorf("untouched lead was restamped: alterado_por_id = %v", rec["alterado_por_id"])
	}
}

func TestDeleteTagMissingDoesNotCascade(t *testing.T) {
	svc := NewDataService(newFakeRepo(), newFakeFallback())

	updated, _, err := svc.DeleteTagWithCascade(context.Background(), "nope", SistemaActor())
	if err == nil {
		t.Fatal("expected error deleting a missing tag")
	}
	if updated != 0 {
		t.Errorf("leadsUpdated = %d, want 0", updated)
	}
}
