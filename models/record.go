package models

// Record is a schemaless document as it moves through the data layer.
// Storage-shape records use camelCase keys, external-shape records use
// snake_case keys; the mappers package translates between the two.
type Record = map[string]interface{}

// Collection names in the document store.
const (
	CollectionLeads          = "leads"
	CollectionMedicos        = "medicos"
	CollectionEspecialidades = "especialidades"
	CollectionProcedimentos  = "procedimentos"
	CollectionTags           = "tags"
	CollectionUsuarios       = "usuarios"
)
