package models

// Reference entities pointed at by leads. These document the external
// shape; the data layer moves them as Records.

type Medico struct {
	ID              string `json:"id,omitempty"`
	Nome            string `json:"nome"`
	CRM             string `json:"crm"`
	Telefone        string `json:"telefone"`
	Email           string `json:"email"`
	EspecialidadeID string `json:"especialidade_id"`
	Ativo           bool   `json:"ativo"`
}

type Especialidade struct {
	ID        string `json:"id,omitempty"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
	Ativo     bool   `json:"ativo"`
}

type Procedimento struct {
	ID             string  `json:"id,omitempty"`
	Nome           string  `json:"nome"`
	Descricao      string  `json:"descricao"`
	DuracaoMinutos int     `json:"duracao_minutos"`
	Valor          float64 `json:"valor"`
	Ativo          bool    `json:"ativo"`
}

type Tag struct {
	ID        string `json:"id,omitempty"`
	Nome      string `json:"nome"`
	Cor       string `json:"cor"`
	Categoria string `json:"categoria"`
	Ativo     bool   `json:"ativo"`
}

// ReferenceInput carries the fields validated when creating or updating a
// reference entity.
type ReferenceInput struct {
	Nome string `json:"nome" validate:"required"`
}
