package mappers

import "clinicacrm/models"

// Mapper translates a record between external shape (snake_case, served to
// clients) and storage shape (camelCase, persisted). Implementations are
// pure: no I/O, and every output field gets a defined value even when the
// input omits it.
type Mapper interface {
	ToStorage(rec models.Record) models.Record
	FromStorage(rec models.Record) models.Record
}

type identityMapper struct{}

func (identityMapper) ToStorage(rec models.Record) models.Record   { return rec }
func (identityMapper) FromStorage(rec models.Record) models.Record { return rec }

// registry binds collections to mappers at compile time. Collections
// without an entry keep the same field names on both sides.
var registry = map[string]Mapper{
	models.CollectionLeads: leadMapper{},
}

// ForCollection returns the mapper registered for a collection, or the
// identity mapper when there is none.
func ForCollection(name string) Mapper {
	if m, ok := registry[name]; ok {
		return m
	}
	return identityMapper{}
}

// Chain getters. Each walks the given keys in order and returns the first
// value of the expected type, so callers can prefer one naming convention
// and fall back to the other before defaulting.

func stringAt(rec models.Record, def string, keys ...string) string {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return def
}

func boolAt(rec models.Record, def bool, keys ...string) bool {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return def
}

func numberAt(rec models.Record, def float64, keys ...string) float64 {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int:
			return float64(n)
		case int32:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return def
}

func listAt(rec models.Record, keys ...string) []interface{} {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok {
			continue
		}
		switch l := v.(type) {
		case []interface{}:
			return l
		case []string:
			out := make([]interface{}, len(l))
			for i, s := range l {
				out[i] = s
			}
			return out
		case []models.Record:
			out := make([]interface{}, len(l))
			for i, r := range l {
				out[i] = r
			}
			return out
		}
	}
	return nil
}

func stringListAt(rec models.Record, keys ...string) []string {
	out := []string{}
	for _, v := range listAt(rec, keys...) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
