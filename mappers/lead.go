package mappers

import "clinicacrm/models"

// leadMapper renames every lead field between the snake_case external shape
// and the camelCase storage shape, and normalizes the auxiliary professional
// list to exactly five slots and the follow-up list to exactly three.
type leadMapper struct{}

func (leadMapper) ToStorage(rec models.Record) models.Record {
	out := models.Record{
		"nomePaciente":           stringAt(rec, "", "nome_paciente", "nomePaciente"),
		"telefone":               stringAt(rec, "", "telefone"),
		"email":                  stringAt(rec, "", "email"),
		"dataNascimento":         stringAt(rec, "", "data_nascimento", "dataNascimento"),
		"canalContato":           stringAt(rec, "", "canal_contato", "canalContato"),
		"medicoAgendadoId":       stringAt(rec, "", "medico_agendado_id", "medicoAgendadoId"),
		"especialidadeId":        stringAt(rec, "", "especialidade_id", "especialidadeId"),
		"procedimentoAgendadoId": stringAt(rec, "", "procedimento_agendado_id", "procedimentoAgendadoId"),
		"agendado":               boolAt(rec, false, "agendado"),
		"outrosProfissionais":    StorageSlots(rec),
		"valorOrcado":            numberAt(rec, 0, "valor_orcado", "valorOrcado"),
		"orcamentoFechado":       stringAt(rec, models.OrcamentoNao, "orcamento_fechado", "orcamentoFechado"),
		"valorFechadoParcial":    numberAt(rec, 0, "valor_fechado_parcial", "valorFechadoParcial"),
		"followUps":              StorageFollowUps(rec),
		"observacoes":            stringAt(rec, "", "observacoes"),
		"status":                 stringAt(rec, models.StatusSemInteracao, "status"),
		"tags":                   stringListAt(rec, "tags"),
		"criadoPorId":            stringAt(rec, "", "criado_por_id", "criadoPorId"),
		"criadoPorNome":          stringAt(rec, "", "criado_por_nome", "criadoPorNome"),
		"criadoPorEmail":         stringAt(rec, "", "criado_por_email", "criadoPorEmail"),
		"alteradoPorId":          stringAt(rec, "", "alterado_por_id", "alteradoPorId"),
		"alteradoPorNome":        stringAt(rec, "", "alterado_por_nome", "alteradoPorNome"),
		"alteradoPorEmail":       stringAt(rec, "", "alterado_por_email", "alteradoPorEmail"),
		"dataRegistroContato":    stringAt(rec, "", "data_registro_contato", "dataRegistroContato"),
		"dataUltimaAlteracao":    stringAt(rec, "", "data_ultima_alteracao", "dataUltimaAlteracao"),
	}
	if id := stringAt(rec, "", "id"); id != "" {
		out["id"] = id
	}
	return out
}

func (leadMapper) FromStorage(rec models.Record) models.Record {
	return models.Record{
		"id":                       stringAt(rec, "", "id"),
		"nome_paciente":            stringAt(rec, "", "nomePaciente", "nome_paciente"),
		"telefone":                 stringAt(rec, "", "telefone"),
		"email":                    stringAt(rec, "", "email"),
		"data_nascimento":          stringAt(rec, "", "dataNascimento", "data_nascimento"),
		"canal_contato":            stringAt(rec, "", "canalContato", "canal_contato"),
		"medico_agendado_id":       stringAt(rec, "", "medicoAgendadoId", "medico_agendado_id"),
		"especialidade_id":         stringAt(rec, "", "especialidadeId", "especialidade_id"),
		"procedimento_agendado_id": stringAt(rec, "", "procedimentoAgendadoId", "procedimento_agendado_id"),
		"agendado":                 boolAt(rec, false, "agendado"),
		"outros_profissionais":     externalSlots(rec),
		"valor_orcado":             numberAt(rec, 0, "valorOrcado", "valor_orcado"),
		"orcamento_fechado":        stringAt(rec, models.OrcamentoNao, "orcamentoFechado", "orcamento_fechado"),
		"valor_fechado_parcial":    numberAt(rec, 0, "valorFechadoParcial", "valor_fechado_parcial"),
		"follow_ups":               externalFollowUps(rec),
		"observacoes":              stringAt(rec, "", "observacoes"),
		"status":                   stringAt(rec, models.StatusSemInteracao, "status"),
		"tags":                     stringListAt(rec, "tags"),
		"criado_por_id":            stringAt(rec, "", "criadoPorId", "criado_por_id"),
		"criado_por_nome":          stringAt(rec, "", "criadoPorNome", "criado_por_nome"),
		"criado_por_email":         stringAt(rec, "", "criadoPorEmail", "criado_por_email"),
		"alterado_por_id":          stringAt(rec, "", "alteradoPorId", "alterado_por_id"),
		"alterado_por_nome":        stringAt(rec, "", "alteradoPorNome", "alterado_por_nome"),
		"alterado_por_email":       stringAt(rec, "", "alteradoPorEmail", "alterado_por_email"),
		"data_registro_contato":    stringAt(rec, "", "dataRegistroContato", "data_registro_contato"),
		"data_ultima_alteracao":    stringAt(rec, "", "dataUltimaAlteracao", "data_ultima_alteracao"),
	}
}

// StorageSlots normalizes the auxiliary professional list of a record (in
// either shape) to exactly MaxOutrosProfissionais storage-shape slots.
// Existing entries keep their position; missing ones come out empty with
// ativo false. Exported because the migration sweeps rebuild slots with the
// exact shape the mapper emits.
func StorageSlots(rec models.Record) []interface{} {
	raw := listAt(rec, "outros_profissionais", "outrosProfissionais")
	slots := make([]interface{}, 0, models.MaxOutrosProfissionais)
	for i := 0; i < models.MaxOutrosProfissionais; i++ {
		var src models.Record
		if i < len(raw) {
			src, _ = raw[i].(map[string]interface{})
		}
		slots = append(slots, storageSlot(src))
	}
	return slots
}

func storageSlot(src models.Record) models.Record {
	if src == nil {
		src = models.Record{}
	}
	medico := stringAt(src, "", "medico_id", "medicoId")
	especialidade := stringAt(src, "", "especialidade_id", "especialidadeId")
	procedimento := stringAt(src, "", "procedimento_id", "procedimentoId")
	data := stringAt(src, "", "data_agendamento", "dataAgendamento")
	return models.Record{
		"medicoId":        medico,
		"especialidadeId": especialidade,
		"procedimentoId":  procedimento,
		"dataAgendamento": data,
		// the legacy per-slot "valor" field is accepted as an alias of
		// valorAgendamento; only the canonical name is ever written back
		"valorAgendamento": numberAt(src, 0, "valor_agendamento", "valorAgendamento", "valor"),
		"localAgendamento": stringAt(src, "", "local_agendamento", "localAgendamento"),
		"ativo":            slotAtivo(src, medico, especialidade, procedimento, data),
	}
}

func externalSlots(rec models.Record) []interface{} {
	raw := listAt(rec, "outrosProfissionais", "outros_profissionais")
	slots := make([]interface{}, 0, models.MaxOutrosProfissionais)
	for i := 0; i < models.MaxOutrosProfissionais; i++ {
		var src models.Record
		if i < len(raw) {
			src, _ = raw[i].(map[string]interface{})
		}
		slots = append(slots, externalSlot(src))
	}
	return slots
}

func externalSlot(src models.Record) models.Record {
	if src == nil {
		src = models.Record{}
	}
	medico := stringAt(src, "", "medicoId", "medico_id")
	especialidade := stringAt(src, "", "especialidadeId", "especialidade_id")
	procedimento := stringAt(src, "", "procedimentoId", "procedimento_id")
	data := stringAt(src, "", "dataAgendamento", "data_agendamento")
	return models.Record{
		"medico_id":         medico,
		"especialidade_id":  especialidade,
		"procedimento_id":   procedimento,
		"data_agendamento":  data,
		"valor_agendamento": numberAt(src, 0, "valorAgendamento", "valor", "valor_agendamento"),
		"local_agendamento": stringAt(src, "", "localAgendamento", "local_agendamento"),
		"ativo":             slotAtivo(src, medico, especialidade, procedimento, data),
	}
}

// A slot is active when any of its identifying fields is filled, or when it
// was explicitly flagged active.
func slotAtivo(src models.Record, identifying ...string) bool {
	if boolAt(src, false, "ativo") {
		return true
	}
	for _, v := range identifying {
		if v != "" {
			return true
		}
	}
	return false
}

// StorageFollowUps normalizes the follow-up list to exactly MaxFollowUps
// entries. Field names are identical in both shapes.
func StorageFollowUps(rec models.Record) []interface{} {
	raw := listAt(rec, "follow_ups", "followUps")
	out := make([]interface{}, 0, models.MaxFollowUps)
	for i := 0; i < models.MaxFollowUps; i++ {
		var src models.Record
		if i < len(raw) {
			src, _ = raw[i].(map[string]interface{})
		}
		if src == nil {
			src = models.Record{}
		}
		out = append(out, models.Record{
			"realizado": boolAt(src, false, "realizado"),
			"data":      stringAt(src, "", "data"),
		})
	}
	return out
}

func externalFollowUps(rec models.Record) []interface{} {
	raw := listAt(rec, "followUps", "follow_ups")
	out := make([]interface{}, 0, models.MaxFollowUps)
	for i := 0; i < models.MaxFollowUps; i++ {
		var src models.Record
		if i < len(raw) {
			src, _ = raw[i].(map[string]interface{})
		}
		if src == nil {
			src = models.Record{}
		}
		out = append(out, models.Record{
			"realizado": boolAt(src, false, "realizado"),
			"data":      stringAt(src, "", "data"),
		})
	}
	return out
}
