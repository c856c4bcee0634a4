package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// TemplateClauses maps clause categories to standard clause text.
type TemplateClauses map[ClauseCategory]string

// Value implements driver.Valuer for JSONB
func (t TemplateClauses) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB
func (t *TemplateClauses) Scan(value interface{}) error {
	if value == nil {
		*t = make(TemplateClauses)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*t = make(TemplateClauses)
		return nil
	}

	if len(bytes) == 0 {
		*t = make(TemplateClauses)
		return nil
	}

	return json.Unmarshal(bytes, t)
}

// StandardTemplate is a reference set of standard clause texts per category,
// used for similarity comparison. Read-only to the analysis engine.
type StandardTemplate struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Clauses   TemplateClauses `json:"clauses"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
