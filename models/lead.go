package models

// Lead status values.
const (
	StatusSemInteracao = "Sem Interação"
	StatusEmConversa   = "Em Conversa"
	StatusConvertido   = "Convertido"
	StatusPerdido      = "Perdido"
	StatusNaoAgendou   = "Não Agendou"
)

// Orçamento fechado values.
const (
	OrcamentoTotal   = "Total"
	OrcamentoParcial = "Parcial"
	OrcamentoNao     = "Não"
)

// MaxOutrosProfissionais is the fixed number of auxiliary professional
// slots every lead carries. MaxFollowUps is the fixed number of follow-up
// entries.
const (
	MaxOutrosProfissionais = 5
	MaxFollowUps           = 3
)

// Lead documents the external (snake_case) shape served to clients. The
// data layer itself moves Records, not this struct; it exists for the API
// contract and for request validation.
type Lead struct {
	ID                     string               `json:"id,omitempty"`
	NomePaciente           string               `json:"nome_paciente"`
	Telefone               string               `json:"telefone"`
	Email                  string               `json:"email"`
	DataNascimento         string               `json:"data_nascimento"`
	CanalContato           string               `json:"canal_contato"`
	MedicoAgendadoID       string               `json:"medico_agendado_id"`
	EspecialidadeID        string               `json:"especialidade_id"`
	ProcedimentoAgendadoID string               `json:"procedimento_agendado_id"`
	Agendado               bool                 `json:"agendado"`
	OutrosProfissionais    []OutroProfissional  `json:"outros_profissionais"`
	ValorOrcado            float64              `json:"valor_orcado"`
	OrcamentoFechado       string               `json:"orcamento_fechado"`
	ValorFechadoParcial    float64              `json:"valor_fechado_parcial"`
	FollowUps              []FollowUp           `json:"follow_ups"`
	Observacoes            string               `json:"observacoes"`
	Status                 string               `json:"status"`
	Tags                   []string             `json:"tags"`
	CriadoPorID            string               `json:"criado_por_id"`
	CriadoPorNome          string               `json:"criado_por_nome"`
	CriadoPorEmail         string               `json:"criado_por_email"`
	AlteradoPorID          string               `json:"alterado_por_id"`
	AlteradoPorNome        string               `json:"alterado_por_nome"`
	AlteradoPorEmail       string               `json:"alterado_por_email"`
	DataRegistroContato    string               `json:"data_registro_contato"`
	DataUltimaAlteracao    string               `json:"data_ultima_alteracao"`
}

// OutroProfissional is one auxiliary professional appointment slot.
type OutroProfissional struct {
	MedicoID         string  `json:"medico_id"`
	EspecialidadeID  string  `json:"especialidade_id"`
	ProcedimentoID   string  `json:"procedimento_id"`
	DataAgendamento  string  `json:"data_agendamento"`
	ValorAgendamento float64 `json:"valor_agendamento"`
	LocalAgendamento string  `json:"local_agendamento"`
	Ativo            bool    `json:"ativo"`
}

// FollowUp is one follow-up entry on a lead.
type FollowUp struct {
	Realizado bool   `json:"realizado"`
	Data      string `json:"data"`
}

// LeadInput carries the fields validated on lead creation and update; the
// full payload travels as a Record alongside it.
type LeadInput struct {
	NomePaciente string `json:"nome_paciente" validate:"required"`
	Telefone     string `json:"telefone" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
}
