package cache

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clinicacrm/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *FallbackStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewFallbackStore(client)
}

func TestCreateAssignsLocalID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Create(ctx, models.CollectionLeads, models.Record{
		"nomePaciente": "Maria",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	id, _ := rec["id"].(string)
	if !strings.HasPrefix(id, "local-") {
		t.Errorf("id = %q, want local- prefix", id)
	}
	if rec["createdAt"] == nil || rec["createdAt"] == "" {
		t.Error("createdAt not set on create")
	}

	got, err := store.GetByID(ctx, models.CollectionLeads, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got["nomePaciente"] != "Maria" {
		t.Errorf("stored record = %#v", got)
	}
}

func TestCreateKeepsExistingID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Create(ctx, models.CollectionMedicos, models.Record{
		"id":   "med-1",
		"nome": "Dr. Silva",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec["id"] != "med-1" {
		t.Errorf("id = %v, want med-1", rec["id"])
	}
}

func TestUpdatePreservesCreatorAudit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, models.CollectionLeads, models.Record{
		"nomePaciente":        "Maria",
		"status":              models.StatusSemInteracao,
		"criadoPorId":         "u1",
		"criadoPorNome":       "Ana",
		"criadoPorEmail":      "ana@example.com",
		"dataRegistroContato": "2026-01-05T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created["id"].(string)

	updated, err := store.Update(ctx, models.CollectionLeads, id, models.Record{
		"status":              models.StatusEmConversa,
		"criadoPorId":         "intruder",
		"criadoPorNome":       "Intruso",
		"dataRegistroContato": "2030-01-01T00:00:00Z",
		"alteradoPorId":       "u2",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated["status"] != models.StatusEmConversa {
		t.Errorf("status = %v, want updated value", updated["status"])
	}
	if updated["criadoPorId"] != "u1" || updated["criadoPorNome"] != "Ana" {
		t.Errorf("creator audit clobbered: %v / %v", updated["criadoPorId"], updated["criadoPorNome"])
	}
	if updated["dataRegistroContato"] != "2026-01-05T10:00:00Z" {
		t.Errorf("dataRegistroContato = %v, want original", updated["dataRegistroContato"])
	}
	if updated["alteradoPorId"] != "u2" {
		t.Errorf("alteradoPorId = %v, want caller value", updated["alteradoPorId"])
	}
	if updated["nomePaciente"] != "Maria" {
		t.Errorf("unrelated field lost on merge: %v", updated["nomePaciente"])
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update(context.Background(), models.CollectionLeads, "nope", models.Record{"status": "x"})
	if err == nil {
		t.Fatal("expected error updating a missing record")
	}
}

func TestListSortsLeadsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, rec := range []models.Record{
		{"id": "a", "dataRegistroContato": "2026-01-01T10:00:00Z"},
		{"id": "c", "dataRegistroContato": "2026-03-01T10:00:00Z"},
		{"id": "b", "dataRegistroContato": "2026-02-01T10:00:00Z"},
	} {
		if _, err := store.Create(ctx, models.CollectionLeads, rec); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	recs, err := store.List(ctx, models.CollectionLeads)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	if recs[0]["id"] != "c" || recs[1]["id"] != "b" || recs[2]["id"] != "a" {
		t.Errorf("order = %v, %v, %v, want c, b, a", recs[0]["id"], recs[1]["id"], recs[2]["id"])
	}
}

func TestListSortsReferencesByCreation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, rec := range []models.Record{
		{"id": "late", "createdAt": "2026-02-01T10:00:00Z"},
		{"id": "early", "createdAt": "2026-01-01T10:00:00Z"},
	} {
		if _, err := store.Create(ctx, models.CollectionMedicos, rec); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	recs, err := store.List(ctx, models.CollectionMedicos)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if recs[0]["id"] != "early" || recs[1]["id"] != "late" {
		t.Errorf("order = %v, %v, want early, late", recs[0]["id"], recs[1]["id"])
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, models.CollectionTags, models.Record{"nome": "vip"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created["id"].(string)

	if err := store.Delete(ctx, models.CollectionTags, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := store.GetByID(ctx, models.CollectionTags, id)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Errorf("record still present after delete: %#v", got)
	}

	if err := store.Delete(ctx, models.CollectionTags, id); err == nil {
		t.Error("expected error deleting a missing record")
	}
}

func TestNilClientIsUnavailable(t *testing.T) {
	store := NewFallbackStore(nil)
	ctx := context.Background()

	if _, err := store.List(ctx, models.CollectionLeads); !errors.Is(err, ErrUnavailable) {
		t.Errorf("List err = %v, want ErrUnavailable", err)
	}
	if _, err := store.GetByID(ctx, models.CollectionLeads, "x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("GetByID err = %v, want ErrUnavailable", err)
	}
	if _, err := store.Create(ctx, models.CollectionLeads, models.Record{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Create err = %v, want ErrUnavailable", err)
	}
	if _, err := store.Update(ctx, models.CollectionLeads, "x", models.Record{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Update err = %v, want ErrUnavailable", err)
	}
	if err := store.Delete(ctx, models.CollectionLeads, "x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Delete err = %v, want ErrUnavailable", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Ping err = %v, want ErrUnavailable", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close err = %v, want nil", err)
	}
}
