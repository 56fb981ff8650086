package services

import (
	"context"
	"fmt"

	"clinicacrm/mappers"
	"clinicacrm/models"
	"clinicacrm/monitoring"
	"clinicacrm/repositories"
)

// MigrationStats counts what a sweep did.
type MigrationStats struct {
	Total    int `json:"total"`
	Migrated int `json:"migrated"`
	Errors   int `json:"errors"`
}

type MigrationError struct {
	RecordID string `json:"record_id"`
	Error    string `json:"error"`
}

type MigrationSummary struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Stats   MigrationStats   `json:"stats"`
	Errors  []MigrationError `json:"errors"`
}

// MigrationService backfills missing fields on stored leads. Every routine
// scans the raw storage-shape records (no external mapping), decides per
// record whether the target fields are absent or structurally incomplete,
// and writes a merged record that carries every existing field forward.
// Running a routine twice migrates nothing the second time: each predicate
// checks exactly what the routine writes.
type MigrationService interface {
	MigrateLeadsForUserTracking(ctx context.Context, actor Actor) MigrationSummary
	MigrateLeadsForTags(ctx context.Context) MigrationSummary
	MigrateOutrosProfissionaisFields(ctx context.Context) MigrationSummary
	MigrateLeadsFields(ctx context.Context) MigrationSummary
}

type migrationService struct {
	repo repositories.DatastoreRepository
}

func NewMigrationService(repo repositories.DatastoreRepository) MigrationService {
	return &migrationService{repo: repo}
}

var userTrackingFields = [][2]string{
	{"criadoPorId", "criado_por_id"},
	{"criadoPorNome", "criado_por_nome"},
	{"criadoPorEmail", "criado_por_email"},
	{"alteradoPorId", "alterado_por_id"},
	{"alteradoPorNome", "alterado_por_nome"},
	{"alteradoPorEmail", "alterado_por_email"},
	{"dataRegistroContato", "data_registro_contato"},
	{"dataUltimaAlteracao", "data_ultima_alteracao"},
}

func (s *migrationService) MigrateLeadsForUserTracking(ctx context.Context, actor Actor) MigrationSummary {
	if actor.IsZero() {
		actor = SistemaActor()
	}
	defaults := map[string]interface{}{
		"criadoPorId":         actor.ID,
		"criadoPorNome":       actor.Nome,
		"criadoPorEmail":      actor.Email,
		"alteradoPorId":       actor.ID,
		"alteradoPorNome":     actor.Nome,
		"alteradoPorEmail":    actor.Email,
		"dataRegistroContato": nowStamp(),
		"dataUltimaAlteracao": nowStamp(),
	}

	needs := func(rec models.Record) bool {
		for _, f := range userTrackingFields {
			if _, ok := rec[f[0]]; !ok {
				return true
			}
		}
		return false
	}
	build := func(rec models.Record) models.Record {
		merged := forwardCopy(rec)
		for _, f := range userTrackingFields {
			ensureFrom(merged, f[0], f[1], defaults[f[0]])
		}
		return merged
	}
	return s.sweep(ctx, "user tracking", needs, build)
}

func (s *migrationService) MigrateLeadsForTags(ctx context.Context) MigrationSummary {
	needs := func(rec models.Record) bool {
		_, ok := rec["tags"]
		return !ok
	}
	build := func(rec models.Record) models.Record {
		merged := forwardCopy(rec)
		merged["tags"] = []string{}
		return merged
	}
	return s.sweep(ctx, "tags", needs, build)
}

var slotFields = []string{
	"medicoId",
	"especialidadeId",
	"procedimentoId",
	"dataAgendamento",
	"valorAgendamento",
	"localAgendamento",
	"ativo",
}

func (s *migrationService) MigrateOutrosProfissionaisFields(ctx context.Context) MigrationSummary {
	needs := func(rec models.Record) bool {
		return !slotsComplete(rec["outrosProfissionais"])
	}
	build := func(rec models.Record) models.Record {
		merged := forwardCopy(rec)
		merged["outrosProfissionais"] = mappers.StorageSlots(rec)
		return merged
	}
	return s.sweep(ctx, "outros profissionais", needs, build)
}

var leadFieldDefaults = []struct {
	camel string
	snake string
	def   interface{}
}{
	{"nomePaciente", "nome_paciente", ""},
	{"telefone", "telefone", ""},
	{"email", "email", ""},
	{"dataNascimento", "data_nascimento", ""},
	{"canalContato", "canal_contato", ""},
	{"medicoAgendadoId", "medico_agendado_id", ""},
	{"especialidadeId", "especialidade_id", ""},
	{"procedimentoAgendadoId", "procedimento_agendado_id", ""},
	{"agendado", "agendado", false},
	{"valorOrcado", "valor_orcado", float64(0)},
	{"orcamentoFechado", "orcamento_fechado", models.OrcamentoNao},
	{"valorFechadoParcial", "valor_fechado_parcial", float64(0)},
	{"observacoes", "observacoes", ""},
	{"status", "status", models.StatusSemInteracao},
}

func (s *migrationService) MigrateLeadsFields(ctx context.Context) MigrationSummary {
	needs := func(rec models.Record) bool {
		for _, f := range leadFieldDefaults {
			if _, ok := rec[f.camel]; !ok {
				return true
			}
		}
		return !followUpsComplete(rec["followUps"])
	}
	build := func(rec models.Record) models.Record {
		merged := forwardCopy(rec)
		for _, f := range leadFieldDefaults {
			ensureFrom(merged, f.camel, f.snake, f.def)
		}
		merged["followUps"] = mappers.StorageFollowUps(rec)
		return merged
	}
	return s.sweep(ctx, "lead fields", needs, build)
}

// sweep runs one migration over every lead, accumulating per-record
// failures instead of aborting on them.
func (s *migrationService) sweep(ctx context.Context, name string, needs func(models.Record) bool, build func(models.Record) models.Record) MigrationSummary {
	summary := MigrationSummary{Errors: []MigrationError{}}

	if s.repo == nil {
		summary.Message = "datastore not configured"
		return summary
	}

	recs, err := s.repo.List(ctx, models.CollectionLeads)
	if err != nil {
		summary.Message = fmt.Sprintf("could not list leads: %v", err)
		return summary
	}

	summary.Success = true
	summary.Stats.Total = len(recs)
	for _, rec := range recs {
		if !needs(rec) {
			continue
		}
		id, _ := rec["id"].(string)
		if _, err := s.repo.Update(ctx, models.CollectionLeads, id, build(rec)); err != nil {
			summary.Stats.Errors++
			summary.Errors = append(summary.Errors, MigrationError{RecordID: id, Error: err.Error()})
			continue
		}
		summary.Stats.Migrated++
		monitoring.MigratedRecords.WithLabelValues(name).Inc()
	}

	summary.Message = fmt.Sprintf("%s migration: %d of %d leads migrated, %d errors",
		name, summary.Stats.Migrated, summary.Stats.Total, summary.Stats.Errors)
	return summary
}

// forwardCopy clones a record minus its id, which lives in the document
// key, not the body.
func forwardCopy(rec models.Record) models.Record {
	out := make(models.Record, len(rec))
	for k, v := range rec {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

// ensureFrom fills a camelCase key that is absent, preferring the legacy
// snake_case value over the default when both shapes were seen in the wild.
func ensureFrom(rec models.Record, camel, snake string, def interface{}) {
	if _, ok := rec[camel]; ok {
		return
	}
	if v, ok := rec[snake]; ok {
		rec[camel] = v
		return
	}
	rec[camel] = def
}

func slotsComplete(v interface{}) bool {
	list, ok := v.([]interface{})
	if !ok || len(list) != models.MaxOutrosProfissionais {
		return false
	}
	for _, e := range list {
		slot, ok := e.(map[string]interface{})
		if !ok {
			return false
		}
		for _, f := range slotFields {
			if _, ok := slot[f]; !ok {
				return false
			}
		}
	}
	return true
}

func followUpsComplete(v interface{}) bool {
	list, ok := v.([]interface{})
	if !ok || len(list) != models.MaxFollowUps {
		return false
	}
	for _, e := range list {
		entry, ok := e.(map[string]interface{})
		if !ok {
			return false
		}
		if _, ok := entry["realizado"]; !ok {
			return false
		}
		if _, ok := entry["data"]; !ok {
			return false
		}
	}
	return true
}
